// ABOUTME: Tests for the upstream API client
// ABOUTME: Uses an httptest server to check paths, headers, and error mapping

package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Logger: discardLogger()})
}

func TestClient_NotConfigured(t *testing.T) {
	c := New(Config{Logger: discardLogger()})

	assert.False(t, c.Configured())

	_, err := c.ListTexts(context.Background(), "tok", TextQuery{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.Login(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_ListTexts_SendsQueryAndHeaders(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[],"meta":{"total":0,"page":3,"limit":50,"totalPages":0}}`))
	})

	resp, err := c.ListTexts(context.Background(), "access-123", TextQuery{Page: 3, Limit: 50, Language: LanguageRussian})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, resp.OK())
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/text", got.URL.Path)
	assert.Equal(t, "3", got.URL.Query().Get("page"))
	assert.Equal(t, "50", got.URL.Query().Get("limit"))
	assert.Equal(t, "RUSSIAN", got.URL.Query().Get("language"))
	assert.Equal(t, "Bearer access-123", got.Header.Get("Authorization"))
	assert.Equal(t, "no-store", got.Header.Get("Cache-Control"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}

func TestClient_ListTexts_OmitsEmptyLanguage(t *testing.T) {
	var query map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := c.ListTexts(context.Background(), "tok", TextQuery{Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.NotContains(t, query, "language")
}

func TestClient_CreateText_ForwardsBodyVerbatim(t *testing.T) {
	payload := []byte(`{"language":"ENGLISH","content":"the quick brown fox","extra":{"k":1}}`)
	var gotBody []byte
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"t1"}}`))
	})

	resp, err := c.CreateText(context.Background(), "tok", payload)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/text", gotPath)
	assert.Equal(t, payload, gotBody)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestClient_DeleteText_EscapesID(t *testing.T) {
	var rawPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := c.DeleteText(context.Background(), "tok", "a/b")
	require.NoError(t, err)

	assert.Equal(t, "/api/text/a%2Fb", rawPath)
}

func TestClient_ListGameTexts_DefaultsLanguage(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})

	_, err := c.ListGameTexts(context.Background(), TextQuery{Page: 1, Limit: 100})
	require.NoError(t, err)

	assert.Equal(t, "/api/text/for-game", got.URL.Path)
	assert.Equal(t, DefaultGameModeID, got.URL.Query().Get("gameModeId"))
	assert.Equal(t, "UZBEK", got.URL.Query().Get("language"))
	assert.Equal(t, "100", got.URL.Query().Get("limit"))
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestClient_RelaysFailureStatusAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
	})

	resp, err := c.DeleteText(context.Background(), "tok", "missing")
	require.NoError(t, err)

	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.JSONEq(t, `{"success":false,"message":"not found"}`, string(resp.Body))
	assert.Equal(t, "not found", resp.Message())
}

func TestClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := c.ListTexts(context.Background(), "tok", TextQuery{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	resp, err := c.DeleteText(context.Background(), "tok", "x")
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Nil(t, resp.Body)
	assert.Empty(t, resp.Message())
}

func TestClient_Login_DecodesTokensAndUser(t *testing.T) {
	var sent map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		_, _ = w.Write([]byte(`{"success":true,"data":{"accessToken":"acc","refreshToken":"ref","user":{"email":"admin@example.com","role":"ADMIN"}}}`))
	})

	res, err := c.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"email": "admin@example.com", "password": "secret"}, sent)
	require.NotNil(t, res.User)
	assert.Equal(t, "ADMIN", res.User.Role)
	assert.Equal(t, "acc", res.Tokens.AccessToken)
	assert.Equal(t, "ref", res.Tokens.RefreshToken)
}

func TestClient_Login_FailureKeepsMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
	})

	res, err := c.Login(context.Background(), "a@b.c", "wrong")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "Invalid credentials", res.Message())
	assert.Nil(t, res.User)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := New(Config{BaseURL: srv.URL, Logger: discardLogger()})

	_, err := c.CreateText(context.Background(), "tok", []byte(`{}`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Logger: discardLogger()})

	_, err := c.ListGameTexts(context.Background(), TextQuery{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
