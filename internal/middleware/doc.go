// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package middleware provides the HTTP middleware Kinetrace adds on top of
chi's own.

Components:

  - RequestID: accepts or generates X-Request-ID and seeds the logging
    context with request and correlation IDs
  - Metrics: Prometheus request counters, duration histograms and the
    in-flight gauge, labeled by chi route pattern
  - AccessLog: one debug line per request and a warning for slow requests
  - RateLimitExceeded: the httprate limit handler, which counts rejections

All middleware use the func(http.Handler) http.Handler shape so they can be
passed to chi's Router.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.AccessLog(time.Second))

Endpoint labels come from the matched route pattern, for example
/api/v1/sessions/{name}, so session names never become label values.
*/
package middleware
