// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure. The string value is the machine-readable
// code returned in APIError.Code.
type ErrorKind string

const (
	// KindValidation is malformed or missing client input.
	KindValidation ErrorKind = "VALIDATION_ERROR"

	// KindConflict is a duplicate session identity.
	KindConflict ErrorKind = "CONFLICT"

	// KindNotFound is an unknown session name, or an update that matched no rows.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindIncomplete marks an open session where a closed window was required.
	// It is a valid transitional state, not a fault, and is reported as the
	// APIResponse.Code of a 202 answer.
	KindIncomplete ErrorKind = "SESSION_INCOMPLETE"

	// KindPartialFailure is a batch where some but not all entries were
	// stored. It is reported as the APIResponse.Code of a 207 answer.
	KindPartialFailure ErrorKind = "PARTIAL_FAILURE"

	// KindStore is a backing-store failure without a recognized sub-cause.
	KindStore ErrorKind = "STORE_ERROR"

	// KindUnexpected is any other propagating fault.
	KindUnexpected ErrorKind = "INTERNAL_ERROR"
)

// HTTPStatus maps the kind to the response status used by the API layer.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindIncomplete:
		return http.StatusAccepted
	case KindPartialFailure:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

// Error is the typed error carried across package boundaries.
//
//	if models.KindOf(err) == models.KindConflict {
//	    // session already exists
//	}
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind when the target carries no
// message, so the Err* sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrConflict = &Error{Kind: KindConflict}
	ErrStore    = &Error{Kind: KindStore}
)

// KindOf returns the kind of err. Untyped errors are KindUnexpected and a nil
// error has no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// AsError converts any error into an *Error, wrapping untyped errors as
// KindUnexpected.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnexpected, Message: "unexpected error", Cause: err}
}

// Validation creates a KindValidation error.
func Validation(message string, details map[string]interface{}) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Conflict creates a KindConflict error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Store wraps a backing-store failure.
func Store(message string, cause error) *Error {
	return &Error{Kind: KindStore, Message: message, Cause: cause}
}

// Unexpected wraps a fault that fits no other kind.
func Unexpected(cause error) *Error {
	return &Error{Kind: KindUnexpected, Message: "unexpected error", Cause: cause}
}
