// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package idempotency remembers ingestion responses by Idempotency-Key so a
client retrying a batch gets the original answer instead of appending
duplicate readings.

Responses are kept in BadgerDB with a native per-entry TTL. Keys are scoped
by device: the same key sent by two devices names two different requests.

	key := idempotency.ScopedKey(device, header)
	if resp, ok, err := store.Get(key); ok {
	    // replay resp.Status and resp.Body
	}
	...
	store.Put(key, idempotency.Response{Status: 201, Body: body})

Only completed outcomes should be stored. A 500 is not remembered, so the
retry it invites can still succeed.

An empty Path opens badger in memory; entries then live for the process
lifetime or the TTL, whichever is shorter. The Collector runs value-log
garbage collection on an interval for on-disk stores.
*/
package idempotency
