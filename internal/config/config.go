// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Database    DatabaseConfig    `koanf:"database"`
	Server      ServerConfig      `koanf:"server"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
	Idempotency IdempotencyConfig `koanf:"idempotency"`
	Events      EventsConfig      `koanf:"events"`
	Store       StoreConfig       `koanf:"store"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
	SkipIndexes            bool   `koanf:"skip_indexes"`             // Skip index creation (fast test setup)
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// SecurityConfig holds cross-origin and rate limiting settings.
// There is no authentication layer; the API is meant to sit on a trusted lab network.
type SecurityConfig struct {
	// CORSOrigins is the allow-list handed to the CORS middleware.
	// "*" allows any origin (development only).
	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes file:line in log output.
	// Default: false
	Caller bool `koanf:"caller"`
}

// IdempotencyConfig controls replay of ingestion responses keyed by the
// Idempotency-Key request header.
type IdempotencyConfig struct {
	Enabled bool `koanf:"enabled"`

	// Path is the badger directory. Empty runs badger fully in memory.
	Path string `koanf:"path"`

	// TTL is how long a key's response is remembered.
	TTL time.Duration `koanf:"ttl"`

	// GCInterval is how often badger value-log GC runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// EventsConfig controls domain event publishing (session.started, session.ended,
// readings.ingested).
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// NATSURL switches the transport from the in-process channel to NATS.
	NATSURL string `koanf:"nats_url"`

	// Buffer is the per-subscriber output buffer of the in-process channel.
	Buffer int64 `koanf:"buffer"`
}

// StoreConfig holds the circuit breaker guarding DuckDB calls.
type StoreConfig struct {
	BreakerEnabled          bool          `koanf:"breaker_enabled"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"` // Consecutive failures before opening
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`           // Open -> half-open delay
	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`      // Probes allowed while half-open
}

// Load reads configuration using Koanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
