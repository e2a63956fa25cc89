// ABOUTME: HTTP handlers that proxy text CRUD calls to the upstream API
// ABOUTME: Injects the session's bearer token and serves the open CORS listing

package proxy

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/2389/typing-console/internal/envelope"
	"github.com/2389/typing-console/internal/session"
	"github.com/2389/typing-console/internal/upstream"
)

// maxCreateBytes bounds the create payload. Texts are limited to 10,000
// characters, so this leaves ample room for multi-byte scripts.
const maxCreateBytes = 256 << 10

// TextService is the subset of the upstream client the proxy needs.
type TextService interface {
	Configured() bool
	ListTexts(ctx context.Context, token string, q upstream.TextQuery) (*upstream.Response, error)
	CreateText(ctx context.Context, token string, body []byte) (*upstream.Response, error)
	DeleteText(ctx context.Context, token, id string) (*upstream.Response, error)
	ListGameTexts(ctx context.Context, q upstream.TextQuery) (*upstream.Response, error)
}

// Handlers serves /api/texts and /api/public/texts.
type Handlers struct {
	upstream TextService
	cookies  session.Options
	logger   *slog.Logger
}

// NewHandlers creates the proxy handlers.
func NewHandlers(up TextService, cookies session.Options, logger *slog.Logger) *Handlers {
	return &Handlers{
		upstream: up,
		cookies:  cookies,
		logger:   logger.With("component", "proxy"),
	}
}

// RegisterRoutes mounts the text endpoints on mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/texts", h.cookies.Handle(h.ListTexts))
	mux.HandleFunc("POST /api/texts", h.cookies.Handle(h.CreateText))
	mux.HandleFunc("DELETE /api/texts/{id}", h.cookies.Handle(h.DeleteText))
	mux.HandleFunc("GET /api/public/texts", h.PublicTexts)
	mux.HandleFunc("OPTIONS /api/public/texts", h.PublicPreflight)
}

// authorize runs the checks shared by every protected operation and returns
// the bearer token, or "" after writing an error.
func (h *Handlers) authorize(w http.ResponseWriter, jar *session.Jar) string {
	if !h.upstream.Configured() {
		envelope.Error(w, http.StatusInternalServerError, "API not configured")
		return ""
	}
	token := jar.AccessToken()
	if token == "" {
		envelope.Error(w, http.StatusUnauthorized, "Not authenticated")
		return ""
	}
	return token
}

// ListTexts handles GET /api/texts.
func (h *Handlers) ListTexts(w http.ResponseWriter, r *http.Request, jar *session.Jar) {
	token := h.authorize(w, jar)
	if token == "" {
		return
	}

	params := r.URL.Query()
	q, err := upstream.ParseTextQuery(params.Get("page"), params.Get("limit"), params.Get("language"), 0)
	if err != nil {
		envelope.Error(w, http.StatusBadRequest, "Invalid language")
		return
	}

	resp, err := h.upstream.ListTexts(r.Context(), token, q)
	relay(w, h.logger.With("op", "list"), resp, err, outcome{okStatus: http.StatusOK, failure: "Failed to fetch texts"})
}

type createRequest struct {
	Language string `json:"language"`
	Content  string `json:"content"`
}

// CreateText handles POST /api/texts. The request body is forwarded as
// received once it has passed a presence check.
func (h *Handlers) CreateText(w http.ResponseWriter, r *http.Request, jar *session.Jar) {
	token := h.authorize(w, jar)
	if token == "" {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCreateBytes))
	if err != nil {
		envelope.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var req createRequest
	if err := json.Unmarshal(body, &req); err != nil {
		envelope.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Language) == "" || strings.TrimSpace(req.Content) == "" {
		envelope.Error(w, http.StatusBadRequest, "Language and content are required")
		return
	}

	resp, err := h.upstream.CreateText(r.Context(), token, body)
	if err == nil && resp.OK() {
		h.logger.Info("text created", "language", req.Language, "chars", len([]rune(req.Content)))
	}
	relay(w, h.logger.With("op", "create"), resp, err, outcome{okStatus: http.StatusCreated, failure: "Failed to create text"})
}

// DeleteText handles DELETE /api/texts/{id}.
func (h *Handlers) DeleteText(w http.ResponseWriter, r *http.Request, jar *session.Jar) {
	token := h.authorize(w, jar)
	if token == "" {
		return
	}

	id := r.PathValue("id")
	resp, err := h.upstream.DeleteText(r.Context(), token, id)
	if err == nil && resp.OK() {
		h.logger.Info("text deleted", "id", id)
	}
	relay(w, h.logger.With("op", "delete", "id", id), resp, err, outcome{okStatus: http.StatusOK, failure: "Failed to delete text"})
}

// PublicTexts handles GET /api/public/texts for third-party clients. It
// needs no session and answers with permissive CORS headers.
func (h *Handlers) PublicTexts(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET")

	if !h.upstream.Configured() {
		envelope.Error(w, http.StatusInternalServerError, "API not configured")
		return
	}

	params := r.URL.Query()
	q, err := upstream.ParseTextQuery(params.Get("page"), params.Get("limit"), params.Get("language"), upstream.PublicLimitCap)
	if err != nil {
		envelope.Error(w, http.StatusBadRequest, "Invalid language")
		return
	}

	resp, err := h.upstream.ListGameTexts(r.Context(), q)
	relay(w, h.logger.With("op", "public_list"), resp, err, outcome{okStatus: http.StatusOK, failure: "Failed to fetch texts"})
}

// PublicPreflight answers CORS preflight for the public listing.
func (h *Handlers) PublicPreflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET, OPTIONS")
	w.WriteHeader(http.StatusNoContent)
}

func setCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
