// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package middleware

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
)

// RateLimitExceeded answers requests rejected by httprate. It is passed to
// httprate.WithLimitHandler.
func RateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(routePattern(r)).Inc()

	logging.Ctx(r.Context()).Warn().
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Msg("Rate limit exceeded")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	body, _ := json.Marshal(map[string]interface{}{
		"status":  "error",
		"message": "rate limit exceeded",
		"error": map[string]string{
			"code":    "RATE_LIMITED",
			"message": "too many requests, retry later",
		},
	})
	_, _ = w.Write(body)
}
