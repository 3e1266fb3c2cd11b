// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package models

// Reasons recorded on an ItemFailure.
const (
	FailureSkipped = "skipped" // entry failed validation and was never written
	FailureStore   = "store"   // entry was written and the store rejected it
)

// ItemFailure identifies one entry of a batch that was not stored, so the
// caller knows exactly what to resubmit.
type ItemFailure struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp,omitempty"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
}

// BatchStatus is the overall outcome of a batch ingestion.
type BatchStatus string

const (
	BatchSuccess BatchStatus = "success"
	BatchPartial BatchStatus = "partial"
	BatchFailed  BatchStatus = "error"
)

// BatchResult is the outcome of one ingestion request. A partial outcome is
// a normal result, not an error.
type BatchResult struct {
	Device    string        `json:"device"`
	Session   *string       `json:"session,omitempty"`
	Submitted int           `json:"submitted"`
	Stored    int           `json:"stored"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Failures  []ItemFailure `json:"failures,omitempty"`
}

// Status derives the outcome from the counts.
func (r *BatchResult) Status() BatchStatus {
	switch {
	case r.Stored == 0:
		return BatchFailed
	case len(r.Failures) == 0:
		return BatchSuccess
	default:
		return BatchPartial
	}
}

// AddSkipped records an entry rejected by validation.
func (r *BatchResult) AddSkipped(index int, timestamp, reason string) {
	r.Skipped++
	r.Failures = append(r.Failures, ItemFailure{
		Index:     index,
		Timestamp: timestamp,
		Reason:    FailureSkipped,
		Error:     reason,
	})
}

// AddStoreFailure records an entry the store did not accept.
func (r *BatchResult) AddStoreFailure(index int, timestamp string, err error) {
	r.Failed++
	r.Failures = append(r.Failures, ItemFailure{
		Index:     index,
		Timestamp: timestamp,
		Reason:    FailureStore,
		Error:     err.Error(),
	})
}
