// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package api

import (
	"context"
	"time"

	"github.com/tomtom215/kinetrace/internal/idempotency"
	"github.com/tomtom215/kinetrace/internal/models"
)

// SessionService is the session lifecycle used by the session endpoints.
type SessionService interface {
	Start(ctx context.Context, name string, notes *string) (*models.Session, error)
	End(ctx context.Context, name string) (*models.Session, error)
	Get(ctx context.Context, name string) (*models.Session, error)
	List(ctx context.Context) ([]models.Session, error)
}

// WindowQuerier resolves the readings owned by a session.
type WindowQuerier interface {
	Query(ctx context.Context, name string, mode models.QueryMode) (*models.WindowResult, error)
}

// Ingester stores device batches.
type Ingester interface {
	Ingest(ctx context.Context, req *models.IngestRequest) (*models.BatchResult, error)
}

// StoreHealth reports the state of the backing store.
type StoreHealth interface {
	Ping(ctx context.Context) error
	BreakerState() string
}

// ResponseCache remembers batch responses by idempotency key.
type ResponseCache interface {
	Get(key string) (*idempotency.Response, bool, error)
	Put(key string, resp idempotency.Response) error
}

// Dependencies are the services behind the handlers. Idempotency may be nil
// to disable Idempotency-Key handling.
type Dependencies struct {
	Sessions    SessionService
	Windows     WindowQuerier
	Ingester    Ingester
	Store       StoreHealth
	Idempotency ResponseCache
	Version     string
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_sessions.go: session lifecycle and window queries
//   - handlers_readings.go: batch ingestion and idempotent replay
//   - handlers_health.go: health probes
type Handler struct {
	sessions    SessionService
	windows     WindowQuerier
	ingester    Ingester
	store       StoreHealth
	idempotency ResponseCache
	version     string
	startTime   time.Time
}

// NewHandler creates a handler over deps.
func NewHandler(deps Dependencies) *Handler {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		sessions:    deps.Sessions,
		windows:     deps.Windows,
		ingester:    deps.Ingester,
		store:       deps.Store,
		idempotency: deps.Idempotency,
		version:     version,
		startTime:   time.Now(),
	}
}
