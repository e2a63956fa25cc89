// ABOUTME: Maps upstream replies and transport failures onto console responses
// ABOUTME: Relays upstream failure bodies unchanged and hides transport errors

package proxy

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/2389/typing-console/internal/envelope"
	"github.com/2389/typing-console/internal/upstream"
)

// outcome describes how to answer one proxied call.
type outcome struct {
	// okStatus replaces the upstream status when the call succeeded.
	okStatus int
	// failure is the generic message used when the cause must stay private
	// or the upstream gave no body.
	failure string
}

// relay writes the response for an upstream call. Upstream failures keep
// their status and body. Successes use o.okStatus. Transport and decode
// errors become a generic 500 with the cause logged.
func relay(w http.ResponseWriter, logger *slog.Logger, resp *upstream.Response, err error, o outcome) {
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			envelope.Error(w, http.StatusInternalServerError, "API not configured")
			return
		}
		logger.Error("upstream call failed", "error", err)
		envelope.Error(w, http.StatusInternalServerError, o.failure)
		return
	}

	if !resp.OK() {
		if len(resp.Body) == 0 {
			envelope.Error(w, resp.Status, o.failure)
			return
		}
		envelope.Raw(w, resp.Status, resp.Body)
		return
	}

	if len(resp.Body) == 0 {
		envelope.JSON(w, o.okStatus, envelope.Envelope{Success: true})
		return
	}
	envelope.Raw(w, o.okStatus, resp.Body)
}
