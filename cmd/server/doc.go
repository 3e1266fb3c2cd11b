// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package main is the entry point for the Kinetrace server.

Kinetrace records orientation readings from wearable quaternion sensors and
groups them into named experiment sessions. Devices post batches of
timestamped readings; an operator starts and ends sessions; analysts fetch
every reading that falls inside a closed session's window.

# Application Architecture

	RootSupervisor ("kinetrace")
	├── DataSupervisor ("data-layer")
	│   └── idempotency-gc (badger value-log GC)
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-recorder (domain event consumer)
	└── APISupervisor ("api-layer")
	    └── http-server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config file
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB with the sessions and readings tables
 4. Events: watermill over an in-process channel or NATS
 5. Idempotency store: BadgerDB, on disk or in memory
 6. Session, ingest and window services
 7. Supervisor Tree: Suture v4 process supervision
 8. HTTP Server: Chi router with middleware stack

# Configuration

	Priority: Environment variables > Config file > Defaults

	HTTP_PORT=8040
	DUCKDB_PATH=/data/kinetrace.duckdb
	LOG_LEVEL=info                 # trace, debug, info, warn, error
	LOG_FORMAT=json                # json or console
	CORS_ORIGINS=https://lab.example.org
	RATE_LIMIT_REQUESTS=600
	IDEMPOTENCY_PATH=/data/idempotency   # empty keeps keys in memory
	EVENTS_NATS_URL=nats://nats:4222     # empty uses the in-process channel
	STORE_BREAKER_ENABLED=true

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server (draining in-flight requests), the event recorder and the GC
service; the event bus, idempotency store and database are then closed.
*/
package main
