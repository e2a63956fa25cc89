// ABOUTME: HTTP client for the upstream typing-platform API
// ABOUTME: Issues uncached JSON calls with bearer credentials and returns raw envelopes

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultGameModeID is the game mode whose texts the public listing serves.
const DefaultGameModeID = "6799eda6dfe2b8ae9bb5e1d3"

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 8 << 20

var (
	// ErrNotConfigured means no upstream base URL was provided. It is a
	// deployment error and never worth retrying.
	ErrNotConfigured = errors.New("upstream API not configured")

	// ErrMalformedResponse means the upstream answered with a body that is not JSON.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// Config configures a Client.
type Config struct {
	// BaseURL is the upstream origin, e.g. "https://api.example.com".
	// Empty disables every call with ErrNotConfigured.
	BaseURL string

	// GameModeID selects the texts served by ListGameTexts.
	GameModeID string

	// Timeout bounds each call. Zero leaves the transport defaults in charge.
	Timeout time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the upstream API. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	baseURL    string
	gameModeID string
	timeout    time.Duration
	http       *http.Client
	logger     *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gameModeID := cfg.GameModeID
	if gameModeID == "" {
		gameModeID = DefaultGameModeID
	}
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/"),
		gameModeID: gameModeID,
		timeout:    cfg.Timeout,
		http:       httpClient,
		logger:     logger.With("component", "upstream"),
	}
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// BaseURL returns the configured upstream origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is an upstream reply: its status and the JSON body exactly as
// received. Body is nil when the upstream sent no content.
type Response struct {
	Status int
	Body   json.RawMessage
}

// OK reports whether the upstream signalled success via its status code.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Message extracts the "message" field of the body, if any.
func (r *Response) Message() string {
	if len(r.Body) == 0 {
		return ""
	}
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &env); err != nil {
		return ""
	}
	return env.Message
}

// User is the identity projection the upstream returns on login.
type User struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Tokens are the credentials minted by the upstream on login.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is the decoded upstream login reply.
type LoginResult struct {
	*Response
	User   *User
	Tokens Tokens
}

type loginBody struct {
	Data *struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         *User  `json:"user"`
	} `json:"data"`
}

// Login forwards credentials to POST /api/auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("marshaling login request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, "", payload)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{Response: resp}
	if !resp.OK() || len(resp.Body) == 0 {
		return result, nil
	}

	var body loginBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: login: %v", ErrMalformedResponse, err)
	}
	if body.Data != nil {
		result.User = body.Data.User
		result.Tokens = Tokens{
			AccessToken:  body.Data.AccessToken,
			RefreshToken: body.Data.RefreshToken,
		}
	}
	return result, nil
}

// ListTexts calls GET /api/text with the caller's bearer token.
func (c *Client) ListTexts(ctx context.Context, token string, q TextQuery) (*Response, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Language != "" {
		params.Set("language", string(q.Language))
	}
	return c.do(ctx, http.MethodGet, "/api/text", params, token, nil)
}

// CreateText calls POST /api/text, forwarding body unchanged.
func (c *Client) CreateText(ctx context.Context, token string, body []byte) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/api/text", nil, token, body)
}

// DeleteText calls DELETE /api/text/{id}.
func (c *Client) DeleteText(ctx context.Context, token, id string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/api/text/"+url.PathEscape(id), nil, token, nil)
}

// ListGameTexts calls the unauthenticated GET /api/text/for-game for the
// configured game mode. The language defaults to UZBEK.
func (c *Client) ListGameTexts(ctx context.Context, q TextQuery) (*Response, error) {
	lang := q.Language
	if lang == "" {
		lang = LanguageUzbek
	}
	params := url.Values{}
	params.Set("gameModeId", c.gameModeID)
	params.Set("language", string(lang))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	return c.do(ctx, http.MethodGet, "/api/text/for-game", params, "", nil)
}

// do performs one uncached upstream call.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, token string, body []byte) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.With("request_id", requestID, "method", method, "path", path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	logger.Debug("upstream call finished", "status", resp.StatusCode, "duration", time.Since(start))

	out := &Response{Status: resp.StatusCode}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: status %d", ErrMalformedResponse, resp.StatusCode)
		}
		out.Body = json.RawMessage(trimmed)
	}
	return out, nil
}
