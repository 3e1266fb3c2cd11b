// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Quaternion is one orientation sample in w, x, y, z order.
type Quaternion [4]float64

// Reading is one second of orientation samples from one device.
// Identity is (Device, Timestamp). Readings are never mutated or deleted.
type Reading struct {
	Device    string       `json:"device"`
	Timestamp time.Time    `json:"timestamp"`
	Samples   []Quaternion `json:"samples"`
	Note      *string      `json:"note,omitempty"`
	Session   *string      `json:"session,omitempty"`
}

// IngestRequest is the body of POST /api/v1/readings/batch.
//
// Entries are kept raw so that a malformed entry can be skipped on its own
// without rejecting the whole batch.
type IngestRequest struct {
	Device  string            `json:"device" validate:"required,max=128"`
	Session *string           `json:"session,omitempty" validate:"omitempty,sessionname"`
	Entries []json.RawMessage `json:"entries" validate:"required,min=1"`
}

// IngestEntry is one decoded second entry. Pointer fields distinguish a
// missing value from an empty one.
type IngestEntry struct {
	Timestamp *string     `json:"timestamp" validate:"required,rfc3339"`
	Samples   [][]float64 `json:"samples" validate:"required,min=1,dive,quaternion"`
	Note      *string     `json:"note,omitempty" validate:"omitempty,max=4096"`
}

// Write is one prepared append to the readings table.
type Write struct {
	Index     int // position of the entry in the submitted batch
	Device    string
	Timestamp time.Time
	SampleRaw []byte // serialized sample list
	Note      *string
	Session   *string
}
