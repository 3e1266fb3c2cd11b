// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package models

import "time"

// SessionState is the lifecycle state of a named session.
// There is no transition back to absent or from closed to open.
type SessionState string

const (
	SessionOpen   SessionState = "open"
	SessionClosed SessionState = "closed"
)

// Session is a named, time-bounded experiment. Its window [StartTime, EndTime]
// selects the readings that belong to it.
//
// Invariants:
//   - Name is unique and created at most once
//   - StartTime is set at creation and never changes
//   - EndTime, once set, is never cleared (a repeated end overwrites it)
type Session struct {
	Name      string     `json:"name"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     *string    `json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
}

// State reports whether the session is still open.
func (s *Session) State() SessionState {
	if s.EndTime == nil {
		return SessionOpen
	}
	return SessionClosed
}

// IsOpen returns true until the session has an end time.
func (s *Session) IsOpen() bool {
	return s.EndTime == nil
}

// SessionSummary is the API view of a session with its derived state.
type SessionSummary struct {
	Session
	State SessionState `json:"state"`
}

// Summary returns the API view of the session.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{Session: *s, State: s.State()}
}

// StartSessionRequest is the body of POST /api/v1/sessions.
type StartSessionRequest struct {
	Name  string  `json:"name" validate:"required,sessionname"`
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=4096"`
}
