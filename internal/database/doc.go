// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

// Package database is the DuckDB-backed store for sessions and readings.
//
// # Overview
//
// The package owns the connection, the schema and the store boundary used by
// the session, ingest and window packages. Callers never see driver errors:
// every failure leaving the package is a *models.Error of kind CONFLICT or
// STORE_ERROR.
//
// Files:
//   - database.go: connection lifecycle, pool configuration, breaker option
//   - database_schema.go: sessions and readings tables and their indexes
//   - store.go: Insert, BatchInsert, Update, SelectOne and SelectMany
//   - breaker.go: gobreaker circuit breaker around store calls
//   - errors.go: DuckDB error classification and close helpers
//
// # Usage
//
//	db, err := database.New(&cfg.Database, database.WithBreaker(cfg.Store))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	outcomes, err := db.BatchInsert(ctx, writes)
//
// # Thread Safety
//
// DB is safe for concurrent use. database/sql pools connections and DuckDB
// serializes conflicting commits; a losing concurrent insert of the same
// session name surfaces as CONFLICT.
package database
