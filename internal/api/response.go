// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/models"
)

// maxBodyBytes bounds request bodies. A batch of a few thousand entries at
// realistic sample counts fits well below it.
const maxBodyBytes = 16 << 20

// respondJSON marshals response and writes it with status.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeBody(w, status, data)
}

func writeBody(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess writes a "success" envelope.
func respondSuccess(w http.ResponseWriter, status int, message string, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status:   models.StatusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadataSince(start),
	})
}

// errorResponse builds the error envelope and status for err. Typed errors
// keep their kind; anything else is reported as INTERNAL_ERROR without the
// cause text.
func errorResponse(err error, start time.Time) (int, *models.APIResponse) {
	e := models.AsError(err)
	status := e.Kind.HTTPStatus()

	message := e.Message
	if e.Kind == models.KindUnexpected {
		message = "internal error"
	}

	details := e.Details
	if (e.Kind == models.KindStore || e.Kind == models.KindUnexpected) && e.Cause != nil {
		details = make(map[string]interface{}, len(e.Details)+1)
		for k, v := range e.Details {
			details[k] = v
		}
		details["cause"] = e.Cause.Error()
	}

	return status, &models.APIResponse{
		Status:   models.StatusError,
		Message:  message,
		Metadata: metadataSince(start),
		Error: &models.APIError{
			Code:    string(e.Kind),
			Message: message,
			Details: details,
		},
	}
}

// respondError logs err at a level matching its status and writes the
// error envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	status, response := errorResponse(err, start)
	logError(r, status, err)
	respondJSON(w, status, response)
}

func logError(r *http.Request, status int, err error) {
	log := logging.Ctx(r.Context())
	event := log.Debug()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Err(err).
		Str("method", r.Method).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Int("status", status).
		Msg("API error")
}

func metadataSince(start time.Time) models.Metadata {
	return models.Metadata{
		Timestamp:   time.Now().UTC(),
		QueryTimeMS: time.Since(start).Milliseconds(),
	}
}

// decodeBody decodes a JSON request body into v. An empty or malformed body
// is a validation error.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return models.Validation("malformed request body", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

// sanitizeLogValue strips control characters from user-supplied values
// before they reach the log.
func sanitizeLogValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
