// ABOUTME: End-to-end tests for the assembled console handler
// ABOUTME: Runs the full gate -> handler pipeline against a fake upstream API

package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/typing-console/internal/config"
	"github.com/2389/typing-console/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePlatform mimics the upstream typing-platform API.
type fakePlatform struct {
	token     string
	role      string
	textCalls atomic.Int32
}

func (f *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		var creds struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"accessToken":  f.token,
				"refreshToken": "refresh-1",
				"user":         map[string]string{"email": creds.Email, "role": f.role},
			},
		})
	case r.URL.Path == "/api/text" || strings.HasPrefix(r.URL.Path, "/api/text/"):
		f.textCalls.Add(1)
		if r.URL.Path != "/api/text/for-game" && r.Header.Get("Authorization") != "Bearer "+f.token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[],"meta":{"total":0,"page":1,"limit":20,"totalPages":0}}`))
	default:
		http.NotFound(w, r)
	}
}

func mintToken(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "admin-1",
		"email": "admin@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte("platform-secret"))
	require.NoError(t, err)
	return s
}

func newConsole(t *testing.T, platform http.Handler, mutate func(*config.Config)) (*Gateway, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{Server: config.ServerConfig{HTTPAddr: "127.0.0.1:0"}}
	if platform != nil {
		up := httptest.NewServer(platform)
		t.Cleanup(up.Close)
		cfg.Upstream.BaseURL = up.URL
	}
	if mutate != nil {
		mutate(cfg)
	}

	gw, err := New(cfg, testLogger(), Options{})
	require.NoError(t, err)

	srv := httptest.NewServer(gw.httpServer.Handler)
	t.Cleanup(srv.Close)
	return gw, srv
}

func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestConsole_FullSessionFlow(t *testing.T) {
	platform := &fakePlatform{token: mintToken(t), role: "ADMIN"}
	_, srv := newConsole(t, platform, nil)
	c := browser(t)

	// Without a session the dashboard redirects and the API rejects.
	resp, err := c.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, err = c.Get(srv.URL + "/api/texts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(0), platform.textCalls.Load())

	// Log in.
	resp, err = c.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"admin@example.com","password":"correct"}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.NotContains(t, string(body), platform.token)

	// Now pages and the API work.
	resp, err = c.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.Get(srv.URL + "/api/texts?limit=50")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), platform.textCalls.Load())

	// /login bounces back to the dashboard while logged in.
	resp, err = c.Get(srv.URL + "/login")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// Log out and the session is gone.
	resp, err = c.Post(srv.URL+"/api/auth/logout", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.Get(srv.URL + "/api/texts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConsole_NonAdminGetsNoSession(t *testing.T) {
	platform := &fakePlatform{token: mintToken(t), role: "USER"}
	_, srv := newConsole(t, platform, nil)
	c := browser(t)

	resp, err := c.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"player@example.com","password":"correct"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Cookies())

	resp, err = c.Get(srv.URL + "/api/texts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConsole_StaleTokenRelaysUpstream401(t *testing.T) {
	platform := &fakePlatform{token: mintToken(t), role: "ADMIN"}
	_, srv := newConsole(t, platform, nil)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/texts", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: "stale"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"message":"Token expired"}`, string(body))
}

func TestConsole_PublicEndpointIsOpen(t *testing.T) {
	platform := &fakePlatform{token: mintToken(t), role: "ADMIN"}
	_, srv := newConsole(t, platform, nil)

	resp, err := http.Get(srv.URL + "/api/public/texts?limit=500")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestConsole_HealthAndStaticBypassGate(t *testing.T) {
	_, srv := newConsole(t, &fakePlatform{role: "ADMIN"}, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/static/app.js")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestConsole_NotConfigured(t *testing.T) {
	_, srv := newConsole(t, nil, nil)

	resp, err := http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"a@b.c","password":"pw"}`))
	require.NoError(t, err)
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "API not configured", env.Message)
}

func TestConsole_SecureCookiesInProduction(t *testing.T) {
	platform := &fakePlatform{token: mintToken(t), role: "ADMIN"}
	_, srv := newConsole(t, platform, func(cfg *config.Config) {
		cfg.Session.Environment = "production"
	})

	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"admin@example.com","password":"correct"}`))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Cookies())
	for _, c := range resp.Cookies() {
		assert.True(t, c.Secure, c.Name)
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil, testLogger(), Options{})
	assert.Error(t, err)
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	gw, _ := newConsole(t, nil, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestResolveTailscaleAuthKey(t *testing.T) {
	t.Setenv("TS_AUTHKEY", "")
	_, err := resolveTailscaleAuthKey("")
	assert.Error(t, err)

	key, err := resolveTailscaleAuthKey("tskey-config")
	require.NoError(t, err)
	assert.Equal(t, "tskey-config", key)

	t.Setenv("TS_AUTHKEY", "tskey-env")
	key, err = resolveTailscaleAuthKey("")
	require.NoError(t, err)
	assert.Equal(t, "tskey-env", key)
}

func TestResolveTailscaleStateDir(t *testing.T) {
	dir, err := resolveTailscaleStateDir("/var/lib/console/ts")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/console/ts", dir)

	dir, err = resolveTailscaleStateDir("")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(dir, "typing-console/tailscale"))
}
