// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package models

import (
	"fmt"
	"time"
)

// QueryMode selects how readings are correlated with a session.
type QueryMode string

const (
	// ModeWindow selects readings whose timestamp lies in the session window.
	ModeWindow QueryMode = "window"

	// ModeTagged selects readings ingested with the session name attached.
	ModeTagged QueryMode = "tagged"
)

// ParseQueryMode parses the ?mode= parameter. Empty means ModeWindow.
func ParseQueryMode(s string) (QueryMode, error) {
	switch QueryMode(s) {
	case "", ModeWindow:
		return ModeWindow, nil
	case ModeTagged:
		return ModeTagged, nil
	default:
		return "", Validation(fmt.Sprintf("unknown query mode %q", s), map[string]interface{}{
			"field":   "mode",
			"allowed": []string{string(ModeWindow), string(ModeTagged)},
		})
	}
}

// WindowResult is the answer to a session window query. When Complete is
// false the session is still open and Readings is always empty.
type WindowResult struct {
	Name      string     `json:"name"`
	Notes     *string    `json:"notes"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Mode      QueryMode  `json:"mode"`
	Complete  bool       `json:"complete"`
	Count     int        `json:"count"`
	Readings  []Reading  `json:"readings"`
	Message   string     `json:"message"`
}
