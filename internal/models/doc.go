// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
Package models defines the data structures shared across Kinetrace.

Key Components:

  - Session: a named experiment with a start time and a nullable end time
  - Reading: one second of quaternion samples from one device
  - IngestRequest / IngestEntry: the batch ingestion body
  - BatchResult: per-request ingestion outcome with per-item failures
  - WindowResult: readings selected by a session window query
  - Error: typed error carrying an ErrorKind
  - APIResponse: standard response wrapper

Error Kinds:

Every failure that crosses a package boundary is an *Error with one of the
ErrorKind values. KindOf classifies any error and ErrorKind.HTTPStatus maps it
to a response status:

	VALIDATION_ERROR    400
	NOT_FOUND           404
	CONFLICT            409
	SESSION_INCOMPLETE  202
	PARTIAL_FAILURE     207
	STORE_ERROR         500
	INTERNAL_ERROR      500

JSON Serialization:

All models use snake_case JSON tags and github.com/goccy/go-json. Times are
serialized as RFC3339 in UTC. Nullable columns are pointer fields.
*/
package models
