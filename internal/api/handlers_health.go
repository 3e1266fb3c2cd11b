// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/kinetrace/internal/models"
)

// Health handles GET /api/v1/health. The status is "degraded" when the
// database does not answer a ping or the store breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil
	breaker := "disabled"
	if h.store != nil {
		breaker = h.store.BreakerState()
	}

	status := "healthy"
	if !dbConnected || breaker == "open" {
		status = "degraded"
	}

	respondSuccess(w, http.StatusOK, "", models.HealthStatus{
		Status:        status,
		Version:       h.version,
		DatabaseOK:    dbConnected,
		StoreBreaker:  breaker,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, "", map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the database answers a ping
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ready := h.store != nil && h.store.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": ready,
			"ready_to_serve":     ready,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: metadataSince(start),
	})
}
