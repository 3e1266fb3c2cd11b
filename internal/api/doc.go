// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package api provides the HTTP REST API layer for Kinetrace.

Endpoints:

	POST /api/v1/readings/batch            ingest a device batch
	POST /api/v1/sessions                  start a session {name, notes?}
	POST /api/v1/sessions/{name}/end       end a session
	GET  /api/v1/sessions                  list sessions, newest first
	GET  /api/v1/sessions/{name}           session metadata and state
	GET  /api/v1/sessions/{name}/readings  readings in the session (?mode=window|tagged)
	GET  /api/v1/health[/live|/ready]      health probes
	GET  /metrics                          Prometheus exposition

Every JSON response uses the models.APIResponse envelope. Errors carry the
models.ErrorKind as their code and map to HTTP status through
ErrorKind.HTTPStatus:

	VALIDATION_ERROR  400
	NOT_FOUND         404
	CONFLICT          409
	STORE_ERROR       500
	INTERNAL_ERROR    500

Successful batch ingestion answers 201, or 207 when some entries were
skipped or rejected. Querying an open session answers 202 with
status "incomplete".

Idempotency:

When an idempotency store is configured, POST /api/v1/readings/batch honors
an Idempotency-Key header. Keys are scoped by device. A repeated key within
the store TTL replays the first answer with an Idempotent-Replayed: true
header and does not touch the database. Only 201, 207 and the 400 for a
batch whose every entry was invalid are remembered.

Middleware order:

	RequestID -> RealIP -> Recoverer -> CORS -> AccessLog
	  /api/v1/health: Metrics
	  /api/v1:        RateLimit -> Metrics
*/
package api
