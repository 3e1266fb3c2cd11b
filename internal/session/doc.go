// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package session manages the lifecycle of named experiment sessions.

A session moves from absent to open when it is started and from open to
closed when it is ended:

	absent --Start--> open --End--> closed --End--> closed (end_time overwritten)

Both timestamps come from the server clock in UTC, truncated to the
microsecond precision of the store. A name can be started once; a second
Start on the same name returns a models.KindConflict error, including when
two Starts race, because uniqueness is enforced by the sessions primary key
rather than by a check in this package.

Ending an unknown name returns models.KindNotFound. Ending a closed session
overwrites its end time.

Every successful Start and End publishes a domain event through the
configured events.Emitter.
*/
package session
