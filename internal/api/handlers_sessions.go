// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/kinetrace/internal/models"
)

// StartSession handles POST /api/v1/sessions.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.StartSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, err, start)
		return
	}

	s, err := h.sessions.Start(r.Context(), req.Name, req.Notes)
	if err != nil {
		respondError(w, r, err, start)
		return
	}

	respondSuccess(w, http.StatusCreated, fmt.Sprintf("session %q started", s.Name), s.Summary(), start)
}

// EndSession handles POST /api/v1/sessions/{name}/end. Ending a closed
// session moves its end time forward.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	s, err := h.sessions.End(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, r, err, start)
		return
	}

	respondSuccess(w, http.StatusOK, fmt.Sprintf("session %q ended", s.Name), s.Summary(), start)
}

// GetSession handles GET /api/v1/sessions/{name}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, r, err, start)
		return
	}

	respondSuccess(w, http.StatusOK, "", s.Summary(), start)
}

// ListSessions handles GET /api/v1/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		respondError(w, r, err, start)
		return
	}

	summaries := make([]models.SessionSummary, len(sessions))
	for i := range sessions {
		summaries[i] = sessions[i].Summary()
	}

	respondSuccess(w, http.StatusOK, fmt.Sprintf("%d sessions", len(summaries)), summaries, start)
}

// SessionReadings handles GET /api/v1/sessions/{name}/readings. An open
// session answers 202 with status "incomplete" and no readings.
func (h *Handler) SessionReadings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	mode, err := models.ParseQueryMode(r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, r, err, start)
		return
	}

	result, err := h.windows.Query(r.Context(), chi.URLParam(r, "name"), mode)
	if err != nil {
		respondError(w, r, err, start)
		return
	}

	if !result.Complete {
		respondJSON(w, models.KindIncomplete.HTTPStatus(), &models.APIResponse{
			Status:   models.StatusIncomplete,
			Code:     string(models.KindIncomplete),
			Message:  result.Message,
			Data:     result,
			Metadata: metadataSince(start),
		})
		return
	}

	respondSuccess(w, http.StatusOK, result.Message, result, start)
}
