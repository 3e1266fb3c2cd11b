// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBBatchFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duckdb_batch_fallbacks_total",
			Help: "Batches that failed as one transaction and were retried per write",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Ingestion Metrics
	ReadingsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinetrace_readings_ingested_total",
			Help: "Readings written to the store",
		},
	)

	ReadingsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinetrace_readings_skipped_total",
			Help: "Batch entries skipped by validation",
		},
	)

	ReadingsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinetrace_readings_failed_total",
			Help: "Batch entries rejected by the store",
		},
	)

	IngestBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinetrace_ingest_batches_total",
			Help: "Ingestion requests by outcome",
		},
		[]string{"status"}, // success, partial, error, rejected
	)

	IngestBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinetrace_ingest_batch_entries",
			Help:    "Number of entries per ingestion request",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	IdempotentReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinetrace_idempotent_replays_total",
			Help: "Ingestion requests answered from the idempotency store",
		},
	)

	// Session Metrics
	SessionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinetrace_session_operations_total",
			Help: "Session lifecycle operations by result",
		},
		[]string{"operation", "result"}, // operation: start, end, query; result: ok, conflict, not_found, incomplete, error
	)

	WindowReadings = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinetrace_window_readings",
			Help:    "Readings returned per closed window query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinetrace_events_published_total",
			Help: "Domain events published",
		},
		[]string{"topic"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinetrace_event_publish_errors_total",
			Help: "Domain events that could not be published",
		},
		[]string{"topic"},
	)

	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinetrace_events_received_total",
			Help: "Domain events consumed by the recorder",
		},
		[]string{"topic"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Idempotency Store Metrics
	IdempotencyGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinetrace_idempotency_gc_runs_total",
			Help: "Idempotency store value-log GC runs by result",
		},
		[]string{"result"}, // rewritten, nothing, error
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordIngest records the counts of one ingestion request.
func RecordIngest(status string, entries, stored, skipped, failed int) {
	IngestBatches.WithLabelValues(status).Inc()
	IngestBatchSize.Observe(float64(entries))
	ReadingsIngested.Add(float64(stored))
	ReadingsSkipped.Add(float64(skipped))
	ReadingsFailed.Add(float64(failed))
}

// RecordSessionOperation records a session lifecycle or query outcome.
func RecordSessionOperation(operation, result string) {
	SessionOperations.WithLabelValues(operation, result).Inc()
}

// RecordEventPublish records a publish attempt for topic.
func RecordEventPublish(topic string, err error) {
	if err != nil {
		EventPublishErrors.WithLabelValues(topic).Inc()
		return
	}
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventReceived records an event consumed by the recorder.
func RecordEventReceived(topic string) {
	EventsReceived.WithLabelValues(topic).Inc()
}

// RecordBreakerTransition records a circuit breaker state change.
func RecordBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
