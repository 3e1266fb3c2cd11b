// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package ingest turns a device's batch of readings into store writes.

Validation happens at two levels:

  - Batch: device and a non-empty entries list are required, and the
    optional session tag must be a valid session name. A failure rejects the
    whole request and nothing is stored.
  - Entry: each entry is decoded on its own. An entry with a malformed body,
    a missing or non-RFC3339 timestamp, a timestamp finer than a microsecond,
    or a sample that is not four finite numbers is skipped, logged at warn level and reported as a failure with
    its index. The remaining entries are still written.

If every entry is skipped the request is a validation error ("all entries
invalid").

Surviving entries are submitted to the store as one batch that returns one
outcome per write. The BatchResult combines skipped entries and rejected
writes into a single index-ordered failure list:

	stored > 0, no failures     success
	stored > 0, some failures   partial
	stored == 0                 error (StoreError carrying the failures)

No deduplication happens here. Retrying the same batch appends duplicate
readings unless the caller supplies an Idempotency-Key at the HTTP layer.
*/
package ingest
