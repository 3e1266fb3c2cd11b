// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package config provides centralized configuration management for Kinetrace.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The result is validated once and is
read-only afterwards.

# Configuration File

The first file found is used:
  - $CONFIG_PATH
  - ./config.yaml, ./config.yml
  - /etc/kinetrace/config.yaml, /etc/kinetrace/config.yml

# Environment Variables

Database:
  - DUCKDB_PATH: Database file (default: /data/kinetrace.duckdb, ":memory:" for ephemeral)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
  - DUCKDB_THREADS: Worker threads (default: NumCPU)

HTTP Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8040)
  - HTTP_TIMEOUT: Read/write timeout (default: 30s)
  - ENVIRONMENT: development, staging or production

Security:
  - CORS_ORIGINS: Comma-separated allow-list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include file:line

Idempotency:
  - IDEMPOTENCY_ENABLED (default: true)
  - IDEMPOTENCY_PATH: badger directory, empty for in-memory
  - IDEMPOTENCY_TTL (default: 24h)
  - IDEMPOTENCY_GC_INTERVAL (default: 10m)

Events:
  - EVENTS_ENABLED (default: true)
  - EVENTS_NATS_URL: publish to NATS instead of the in-process channel
  - EVENTS_BUFFER (default: 256)

Store circuit breaker:
  - STORE_BREAKER_ENABLED (default: true)
  - STORE_BREAKER_FAILURE_THRESHOLD (default: 5)
  - STORE_BREAKER_TIMEOUT (default: 30s)
  - STORE_BREAKER_MAX_REQUESTS (default: 1)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
