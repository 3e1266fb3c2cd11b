// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package window retrieves the readings that belong to a session.

Readings carry no foreign key to sessions. Ownership is recomputed on every
query from the session's bounds:

	start_time <= timestamp <= end_time

Both bounds are inclusive. Results are ordered by timestamp, then device,
and are never paginated.

Query modes:

  - window (default): the range query above, across every device
  - tagged: readings ingested with this session's name attached, with no
    time bound

An open session has no upper bound yet, so both modes answer with an
incomplete result (Complete=false, empty readings) instead of an error. The
HTTP layer maps it to 202 Accepted.
*/
package window
