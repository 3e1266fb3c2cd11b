// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/kinetrace/internal/middleware"
	"github.com/tomtom215/kinetrace/internal/models"
)

// defaultSlowRequest is the AccessLog threshold above which a request is
// logged at WARN.
const defaultSlowRequest = 2 * time.Second

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	slowRequest   time.Duration
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		slowRequest:   defaultSlowRequest,
	}
}

// Setup builds the HTTP handler for all routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.AccessLog(router.slowRequest))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Health endpoints are not rate limited so probes never see 429.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(middleware.Metrics)
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.Metrics)

		r.With(chimw.AllowContentType("application/json")).
			Post("/readings/batch", router.handler.IngestBatch)

		r.Route("/sessions", func(r chi.Router) {
			r.With(chimw.AllowContentType("application/json")).
				Post("/", router.handler.StartSession)
			r.Get("/", router.handler.ListSessions)
			r.Get("/{name}", router.handler.GetSession)
			r.Post("/{name}/end", router.handler.EndSession)
			r.With(chimw.Compress(5, "application/json")).
				Get("/{name}/readings", router.handler.SessionReadings)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, models.NotFound("no route for %s %s", r.Method, r.URL.Path), time.Now())
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, &models.APIResponse{
		Status:   models.StatusError,
		Message:  "method not allowed",
		Metadata: metadataSince(time.Now()),
		Error: &models.APIError{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "method not allowed",
		},
	})
}
