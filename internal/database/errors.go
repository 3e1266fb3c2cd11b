// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package database

import (
	"errors"
	"fmt"
	"io"
	"strings"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/models"
)

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
// DuckDB reports these as "Constraint Error: Duplicate key ... violates primary key
// constraint" or "PRIMARY KEY or UNIQUE constraint violated".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "primary key or unique constraint violated")
}

// isWriteConflict reports DuckDB's optimistic concurrency failure, raised
// when two transactions commit writes to the same key.
func isWriteConflict(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "write-write conflict")
}

// classify translates a driver error into the store taxonomy: uniqueness
// violations become KindConflict, an open breaker and everything else
// become KindStore. Typed errors pass through unchanged.
func classify(op, table string, err error) error {
	if err == nil {
		return nil
	}

	var typed *models.Error
	if errors.As(err, &typed) {
		return err
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return models.Store("store unavailable", err)
	}

	// A concurrent insert of the same key loses either way round.
	if isUniqueConstraintError(err) || (op == "insert" && isWriteConflict(err)) {
		return &models.Error{
			Kind:    models.KindConflict,
			Message: fmt.Sprintf("%s on %s violates a uniqueness constraint", op, table),
			Cause:   err,
		}
	}

	return models.Store(fmt.Sprintf("%s on %s failed", op, table), err)
}
