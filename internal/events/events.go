// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package events

import (
	"context"
	"time"
)

// Topic names.
const (
	TopicSessionStarted   = "session.started"
	TopicSessionEnded     = "session.ended"
	TopicReadingsIngested = "readings.ingested"
)

// Topics returns every topic the service publishes.
func Topics() []string {
	return []string{TopicSessionStarted, TopicSessionEnded, TopicReadingsIngested}
}

// SessionStarted is the payload of TopicSessionStarted.
type SessionStarted struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
}

// SessionEnded is the payload of TopicSessionEnded.
type SessionEnded struct {
	Name    string    `json:"name"`
	EndTime time.Time `json:"end_time"`
}

// ReadingsIngested is the payload of TopicReadingsIngested.
type ReadingsIngested struct {
	Device  string  `json:"device"`
	Session *string `json:"session,omitempty"`
	Stored  int     `json:"stored"`
	Failed  int     `json:"failed"`
	Skipped int     `json:"skipped"`
}

// Emitter publishes a payload on a topic without reporting failure.
type Emitter interface {
	Emit(ctx context.Context, topic string, payload interface{})
}

// Nop discards every event. It is used when events are disabled.
type Nop struct{}

// Emit does nothing.
func (Nop) Emit(context.Context, string, interface{}) {}
