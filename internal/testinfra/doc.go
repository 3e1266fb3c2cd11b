// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

// Package testinfra provides shared test infrastructure.
//
// Everything runs in-process so tests need no Docker or external services.
//
// # DuckDB
//
// NewDuckDB opens an in-memory store with the production schema. Store tests
// are serialized through a package semaphore because concurrent DuckDB CGO
// calls across many parallel tests can stall under CI pressure.
//
//	func TestWindow(t *testing.T) {
//	    db := testinfra.NewDuckDB(t)
//	    engine := window.NewEngine(db)
//	    ...
//	}
//
// # NATS
//
// StartNATS runs an embedded nats-server on a random loopback port and shuts
// it down when the test ends:
//
//	url := testinfra.StartNATS(t)
//	pub, err := events.NewPublisher(config.EventsConfig{Enabled: true, NATSURL: url})
package testinfra
