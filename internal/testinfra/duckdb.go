// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package testinfra

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/database"
)

// duckDBSemaphore allows one live test database at a time across a package.
var duckDBSemaphore = make(chan struct{}, 1)

// NewDuckDB creates an in-memory database with the full schema. The
// semaphore is held until the test completes and the database is closed by
// t.Cleanup. Creation fails the test after 60 seconds.
func NewDuckDB(t testing.TB, opts ...database.Option) *database.DB {
	t.Helper()

	duckDBSemaphore <- struct{}{}

	type result struct {
		db  *database.DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		db, err := database.New(&config.DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "512MB",
			Threads:   2,
		}, opts...)
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			<-duckDBSemaphore
			t.Fatalf("failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Logf("closing test database: %v", err)
			}
			<-duckDBSemaphore
		})
		return res.db
	case <-time.After(60 * time.Second):
		<-duckDBSemaphore
		t.Fatal("timed out creating test database")
		return nil
	}
}

// RejectDeviceReadings recreates the readings table with a CHECK constraint
// so every write for device fails inside the store. Indexes are not rebuilt.
func RejectDeviceReadings(t testing.TB, db *database.DB, device string) {
	t.Helper()
	stmts := []string{
		`DROP INDEX IF EXISTS idx_readings_timestamp`,
		`DROP INDEX IF EXISTS idx_readings_timestamp_device`,
		`DROP INDEX IF EXISTS idx_readings_session`,
		`DROP TABLE readings`,
		`CREATE TABLE readings (
			device TEXT NOT NULL CHECK (device <> '` + strings.ReplaceAll(device, "'", "''") + `'),
			timestamp TIMESTAMP NOT NULL,
			sample_blob TEXT NOT NULL,
			note TEXT,
			session_name TEXT,
			ingested_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Conn().Exec(stmt); err != nil {
			t.Fatalf("recreate readings: %v", err)
		}
	}
}
