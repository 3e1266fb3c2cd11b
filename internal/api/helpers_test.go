// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/database"
	"github.com/tomtom215/kinetrace/internal/idempotency"
	"github.com/tomtom215/kinetrace/internal/ingest"
	"github.com/tomtom215/kinetrace/internal/models"
	"github.com/tomtom215/kinetrace/internal/session"
	"github.com/tomtom215/kinetrace/internal/testinfra"
	"github.com/tomtom215/kinetrace/internal/window"
)

// testServer is the full handler stack over an in-memory database and
// idempotency store.
type testServer struct {
	db      *database.DB
	idem    *idempotency.Store
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testinfra.NewDuckDB(t)
	idem, err := idempotency.Open(config.IdempotencyConfig{Enabled: true})
	if err != nil {
		t.Fatalf("idempotency.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = idem.Close() })

	sessions := session.NewManager(db, nil)
	h := NewHandler(Dependencies{
		Sessions:    sessions,
		Windows:     window.NewEngine(sessions, db),
		Ingester:    ingest.NewPipeline(db, nil),
		Store:       db,
		Idempotency: idem,
		Version:     "test",
	})

	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitDisabled = true

	return &testServer{
		db:      db,
		idem:    idem,
		handler: NewRouter(h, NewChiMiddleware(mw)).Setup(),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, s.handler, method, path, body, headers...)
}

func (s *testServer) countReadings(t *testing.T) int {
	t.Helper()
	var n int
	if err := s.db.Conn().QueryRow("SELECT COUNT(*) FROM readings").Scan(&n); err != nil {
		t.Fatalf("count readings: %v", err)
	}
	return n
}

// serve sends a request through h. headers are key, value pairs.
func serve(t *testing.T, h http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the response body, with Data left raw for a second pass.
type envelope struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, want, rec.Body.String())
	}
}

func entry(ts string, samples ...[]float64) map[string]interface{} {
	return map[string]interface{}{"timestamp": ts, "samples": samples}
}

func batch(device string, entries ...interface{}) map[string]interface{} {
	return map[string]interface{}{"device": device, "entries": entries}
}

var identity = []float64{1, 0, 0, 0}
