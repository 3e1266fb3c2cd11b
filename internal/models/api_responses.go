// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess    = "success"
	StatusPartial    = "partial"
	StatusIncomplete = "incomplete"
	StatusError      = "error"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed, see Data
//   - "partial": Batch ingestion stored some entries, see Data.failures;
//     Code is PARTIAL_FAILURE
//   - "incomplete": Session still open, Data carries the known start time;
//     Code is SESSION_INCOMPLETE
//   - "error": Request failed, see Error
//
// Example partial ingestion response:
//
//	{
//	  "status": "partial",
//	  "code": "PARTIAL_FAILURE",
//	  "message": "stored 58 of 60 entries",
//	  "data": {"device": "hip", "stored": 58, "skipped": 2, "failures": [...]},
//	  "metadata": {"timestamp": "2026-03-02T09:15:00Z", "query_time_ms": 12}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "message": "session \"exp1\" already exists",
//	  "error": {"code": "CONFLICT", "message": "session \"exp1\" already exists"},
//	  "metadata": {"timestamp": "2026-03-02T09:15:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Code     string      `json:"code,omitempty"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Replayed    bool      `json:"replayed,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Codes are the ErrorKind values: VALIDATION_ERROR, CONFLICT, NOT_FOUND,
// STORE_ERROR, INTERNAL_ERROR and RATE_LIMIT_EXCEEDED.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	DatabaseOK    bool    `json:"database_connected"`
	StoreBreaker  string  `json:"store_breaker"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
