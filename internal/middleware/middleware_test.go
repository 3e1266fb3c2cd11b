// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"propagated from upstream", "edge-7f3a", true},
		{"replaced when too long", strings.Repeat("a", maxRequestIDLength+1), false},
		{"replaced when it has spaces", "two words", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seenID, seenCorrelation string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenID = logging.RequestIDFromContext(r.Context())
				seenCorrelation = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got == "" || got != seenID {
				t.Fatalf("header %q, context %q", got, seenID)
			}
			if tt.keep != (got == tt.incoming) {
				t.Errorf("request ID = %q, incoming %q, keep %v", got, tt.incoming, tt.keep)
			}
			if seenCorrelation == "" {
				t.Error("correlation ID not set")
			}
		})
	}
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/v1/sessions/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/implicit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	pattern := "/api/v1/sessions/{name}"
	before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, pattern, "404"))
	for _, name := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+name, nil))
	}
	after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, pattern, "404"))
	if after-before != 3 {
		t.Errorf("requests for pattern delta = %v, want 3", after-before)
	}

	before = testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/implicit", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/implicit", nil))
	after = testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/implicit", "200"))
	if after-before != 1 {
		t.Errorf("implicit 200 delta = %v, want 1", after-before)
	}

	if active := testutil.ToFloat64(metrics.APIActiveRequests); active != 0 {
		t.Errorf("active requests = %v after completion", active)
	}
}

func TestRoutePattern_Unmatched(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := routePattern(req); got != "unmatched" {
		t.Errorf("routePattern() = %q, want unmatched", got)
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logging.SetLogger(logging.NewTestLogger(&buf))
	defer func() {
		logging.SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	}()

	fast := AccessLog(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	fast.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if !strings.Contains(buf.String(), "Request completed") || !strings.Contains(buf.String(), `"status":201`) {
		t.Errorf("fast request log = %s", buf.String())
	}

	buf.Reset()
	slow := AccessLog(time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
	}))
	slow.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
	if !strings.Contains(buf.String(), "Slow request detected") || !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("slow request log = %s", buf.String())
	}
}

func TestRateLimitExceeded(t *testing.T) {
	before := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("unmatched"))

	rec := httptest.NewRecorder()
	RateLimitExceeded(rec, httptest.NewRequest(http.MethodPost, "/api/v1/readings/batch", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	var body struct {
		Status string `json:"status"`
		Error  struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "error" || body.Error.Code != "RATE_LIMITED" {
		t.Errorf("body = %s", rec.Body.String())
	}
	if after := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("unmatched")); after-before != 1 {
		t.Errorf("rate limit hits delta = %v, want 1", after-before)
	}
}
