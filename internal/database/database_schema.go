// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
database_schema.go - Database Schema Management

Tables:
  - sessions: one row per experiment name. end_time NULL means open.
  - readings: append-only device readings. Identity is (device, timestamp)
    but no uniqueness is enforced; a resubmitted batch appends duplicates.

All instants are stored as TIMESTAMP holding UTC and bound from Go, never
from CURRENT_TIMESTAMP, so stored values do not depend on the DuckDB
TimeZone setting.

Readings are not foreign-keyed to sessions. The window query correlates them
by timestamp range. session_name is set only when the ingesting client tags
its batch, and backs the tagged query mode.

Index Strategy:
  - idx_readings_timestamp: range scans over a session window
  - idx_readings_timestamp_device: matches ORDER BY timestamp, device
  - idx_readings_session: tagged-mode lookups
  - idx_sessions_start: list ordering
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// Table names used by the store boundary.
const (
	TableSessions = "sessions"
	TableReadings = "readings"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			name TEXT PRIMARY KEY,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			notes TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS readings (
			device TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			sample_blob TEXT NOT NULL,
			note TEXT,
			session_name TEXT,
			ingested_at TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates the indexes backing the window and tagged queries
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_readings_timestamp ON readings(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_timestamp_device ON readings(timestamp, device)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_session ON readings(session_name, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
