// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinetrace/internal/idempotency"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
	"github.com/tomtom215/kinetrace/internal/models"
)

// Idempotency headers.
const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"
)

// IngestBatch handles POST /api/v1/readings/batch.
//
// Invalid entries are skipped and reported by index; the rest are stored.
// The response is 201 when every entry was stored, 207 when some were, 400
// when the batch or every entry was invalid, and 500 when the store rejected
// everything.
func (h *Handler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.IngestRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, err, start)
		return
	}

	var key string
	if raw := r.Header.Get(IdempotencyKeyHeader); raw != "" && h.idempotency != nil {
		if err := idempotency.ValidateKey(raw); err != nil {
			respondError(w, r, models.Validation(err.Error(), map[string]interface{}{
				"header": IdempotencyKeyHeader,
			}), start)
			return
		}
		key = idempotency.ScopedKey(req.Device, raw)
		if h.replay(w, r, key) {
			return
		}
	}

	result, err := h.ingester.Ingest(r.Context(), &req)
	status, response := ingestResponse(result, err, start)
	if err != nil {
		logError(r, status, err)
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal batch response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeBody(w, status, data)

	if key != "" && rememberable(status, result) {
		err := h.idempotency.Put(key, idempotency.Response{
			Status:   status,
			Body:     data,
			StoredAt: time.Now().UTC(),
		})
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to remember batch response")
		}
	}
}

// ingestResponse maps a pipeline outcome to a status and envelope. The batch
// result rides along in Data whenever the entries were examined.
func ingestResponse(result *models.BatchResult, err error, start time.Time) (int, *models.APIResponse) {
	if err != nil {
		status, response := errorResponse(err, start)
		if result != nil {
			response.Data = result
		}
		return status, response
	}

	if result.Status() == models.BatchPartial {
		return models.KindPartialFailure.HTTPStatus(), &models.APIResponse{
			Status:   models.StatusPartial,
			Code:     string(models.KindPartialFailure),
			Message:  fmt.Sprintf("stored %d of %d entries", result.Stored, result.Submitted),
			Data:     result,
			Metadata: metadataSince(start),
		}
	}
	return http.StatusCreated, &models.APIResponse{
		Status:   models.StatusSuccess,
		Message:  fmt.Sprintf("stored %d entries", result.Stored),
		Data:     result,
		Metadata: metadataSince(start),
	}
}

// rememberable reports whether a batch answer is final. Server errors are
// not, so a retry with the same key can still succeed.
func rememberable(status int, result *models.BatchResult) bool {
	switch status {
	case http.StatusCreated, http.StatusMultiStatus:
		return true
	case http.StatusBadRequest:
		return result != nil
	default:
		return false
	}
}

// replay writes the remembered answer for key. It returns false when there
// is none or the lookup failed, in which case the request is processed.
func (h *Handler) replay(w http.ResponseWriter, r *http.Request, key string) bool {
	stored, ok, err := h.idempotency.Get(key)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Idempotency lookup failed, processing request")
		return false
	}
	if !ok {
		return false
	}

	body := []byte(stored.Body)
	var response models.APIResponse
	if err := json.Unmarshal(stored.Body, &response); err == nil {
		response.Metadata.Replayed = true
		if b, err := json.Marshal(&response); err == nil {
			body = b
		}
	}

	metrics.IdempotentReplays.Inc()
	logging.Ctx(r.Context()).Info().
		Int("status", stored.Status).
		Time("stored_at", stored.StoredAt).
		Msg("Replaying idempotent batch response")

	w.Header().Set(ReplayedHeader, "true")
	writeBody(w, stored.Status, body)
	return true
}
