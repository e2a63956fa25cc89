// ABOUTME: Login, logout, and session-info handlers for the admin console
// ABOUTME: Delegates credential checks upstream and mints or clears the session cookies

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/typing-console/internal/envelope"
	"github.com/2389/typing-console/internal/session"
	"github.com/2389/typing-console/internal/upstream"
)

// Authenticator verifies credentials against the upstream API.
type Authenticator interface {
	Configured() bool
	Login(ctx context.Context, email, password string) (*upstream.LoginResult, error)
}

// Handlers serves the /api/auth endpoints.
type Handlers struct {
	upstream Authenticator
	policy   Policy
	cookies  session.Options
	logger   *slog.Logger
}

// NewHandlers creates the auth handlers. A nil policy means AdminOnly.
func NewHandlers(up Authenticator, policy Policy, cookies session.Options, logger *slog.Logger) *Handlers {
	if policy == nil {
		policy = AdminOnly
	}
	return &Handlers{
		upstream: up,
		policy:   policy,
		cookies:  cookies,
		logger:   logger.With("component", "auth"),
	}
}

// RegisterRoutes mounts the auth endpoints on mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", h.cookies.Handle(h.Login))
	mux.HandleFunc("POST /api/auth/logout", h.cookies.Handle(h.Logout))
	mux.HandleFunc("GET /api/auth/logout", h.cookies.Handle(h.Logout))
	mux.HandleFunc("GET /api/auth/session", h.cookies.Handle(h.Session))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserSummary is the only part of the upstream identity returned to the browser.
type UserSummary struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login handles POST /api/auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request, jar *session.Jar) {
	if !h.upstream.Configured() {
		envelope.Error(w, http.StatusInternalServerError, "API not configured")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		envelope.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		envelope.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	res, err := h.upstream.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			envelope.Error(w, http.StatusInternalServerError, "API not configured")
			return
		}
		h.logger.Error("upstream login failed", "error", err)
		envelope.Error(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if !res.OK() {
		msg := res.Message()
		if msg == "" {
			msg = "Login failed"
		}
		h.logger.Warn("login rejected upstream", "email", req.Email, "status", res.Status)
		envelope.Error(w, res.Status, msg)
		return
	}

	if !h.policy.Admit(res.User) {
		role := ""
		if res.User != nil {
			role = res.User.Role
		}
		h.logger.Warn("login denied by policy", "email", req.Email, "role", role)
		envelope.Error(w, http.StatusForbidden, "Access denied. Admin role required.")
		return
	}

	if res.Tokens.AccessToken == "" {
		h.logger.Warn("upstream login returned no access token", "email", req.Email)
		envelope.Error(w, http.StatusUnauthorized, "Authentication failed")
		return
	}

	user := res.User
	if user == nil {
		user = &upstream.User{}
	}

	jar.Issue(session.Tokens{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})

	attrs := []any{"email", user.Email}
	if claims, ok := session.Peek(res.Tokens.AccessToken); ok && !claims.ExpiresAt.IsZero() {
		attrs = append(attrs, "token_expires", claims.ExpiresAt.Format(time.RFC3339))
	}
	h.logger.Info("admin login successful", attrs...)

	envelope.OK(w, http.StatusOK, UserSummary{Email: user.Email, Role: user.Role})
}

// Logout handles POST and GET /api/auth/logout. It always succeeds.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request, jar *session.Jar) {
	hadSession := jar.HasSession()
	jar.Clear()
	if hadSession {
		h.logger.Info("admin logged out")
	}
	envelope.JSON(w, http.StatusOK, envelope.Envelope{Success: true, Message: "Logged out successfully"})
}

// SessionInfo describes the current session without exposing the token.
type SessionInfo struct {
	Email     string     `json:"email,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

// Session handles GET /api/auth/session. Claims are read unverified, so the
// result is informational; the upstream still decides validity.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request, jar *session.Jar) {
	token := jar.AccessToken()
	if token == "" {
		envelope.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	info := SessionInfo{}
	if claims, ok := session.Peek(token); ok {
		info.Email = claims.Email
		info.Subject = claims.Subject
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt.UTC()
			info.ExpiresAt = &exp
			info.Expired = claims.Expired(time.Now())
		}
	}
	envelope.OK(w, http.StatusOK, info)
}
