// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

// Package validation provides struct validation using go-playground/validator v10.
//
// Check returns a tagged Result that is either valid or carries a list of
// violations. Result.Err turns it into a models.Error of KindValidation,
// which the API layer renders as 400 VALIDATION_ERROR.
//
// # Custom Tags
//
//   - quaternion: a slice of exactly four finite numbers (w, x, y, z)
//   - rfc3339: a string that parses as an RFC3339 timestamp with no
//     fraction finer than a microsecond
//   - sessionname: 1 to 128 characters, no surrounding whitespace, no
//     control characters and no '/'
//
// # Usage
//
//	var entry models.IngestEntry
//	if res := validation.Check(&entry); !res.Valid() {
//	    logging.Warn().Str("violations", res.Message()).Msg("Entry skipped")
//	}
//
// Field names in violations are the JSON names of the request body.
//
// # Thread Safety
//
// The validator is a lazily initialized singleton. It caches struct metadata
// and is safe for concurrent use.
package validation
