// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at GET /metrics by promhttp.

# Available Metrics

Database:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table,error_type}
  - duckdb_batch_fallbacks_total

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Ingestion:
  - kinetrace_readings_ingested_total
  - kinetrace_readings_skipped_total
  - kinetrace_readings_failed_total
  - kinetrace_ingest_batches_total{status}
  - kinetrace_ingest_batch_entries
  - kinetrace_idempotent_replays_total

Sessions:
  - kinetrace_session_operations_total{operation,result}
  - kinetrace_window_readings

Events:
  - kinetrace_events_published_total{topic}
  - kinetrace_event_publish_errors_total{topic}
  - kinetrace_events_received_total{topic}

Store circuit breaker:
  - circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Idempotency store:
  - kinetrace_idempotency_gc_runs_total{result}
*/
package metrics
