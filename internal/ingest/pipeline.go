// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinetrace/internal/database"
	"github.com/tomtom215/kinetrace/internal/events"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
	"github.com/tomtom215/kinetrace/internal/models"
	"github.com/tomtom215/kinetrace/internal/validation"
)

var readingColumns = []string{"device", "timestamp", "sample_blob", "note", "session_name", "ingested_at"}

// Store is the subset of *database.DB used by the pipeline.
type Store interface {
	BatchInsert(ctx context.Context, writes []database.Write) ([]database.Outcome, error)
}

// Pipeline validates and stores reading batches.
type Pipeline struct {
	store  Store
	events events.Emitter
	now    func() time.Time
}

// NewPipeline creates a pipeline. A nil emitter disables events.
func NewPipeline(store Store, emitter events.Emitter) *Pipeline {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &Pipeline{
		store:  store,
		events: emitter,
		now:    time.Now,
	}
}

// Ingest validates req and stores its valid entries.
//
// The returned result is non-nil whenever the entries were examined. The
// error is a models.KindValidation error when the batch or every entry is
// invalid, and a models.KindStore error when nothing could be stored.
func (p *Pipeline) Ingest(ctx context.Context, req *models.IngestRequest) (*models.BatchResult, error) {
	if err := validation.Check(req).Err(); err != nil {
		metrics.RecordIngest("invalid", len(req.Entries), 0, 0, 0)
		return nil, err
	}

	log := logging.Ctx(ctx)
	result := &models.BatchResult{
		Device:    req.Device,
		Session:   req.Session,
		Submitted: len(req.Entries),
	}

	prepared := make([]models.Write, 0, len(req.Entries))
	for i, raw := range req.Entries {
		w, ts, reason := p.prepare(req, i, raw)
		if reason != "" {
			result.AddSkipped(i, ts, reason)
			log.Warn().
				Str("device", req.Device).
				Int("entry", i).
				Str("reason", reason).
				Msg("Skipping invalid entry")
			continue
		}
		prepared = append(prepared, w)
	}

	if len(prepared) == 0 {
		metrics.RecordIngest("invalid", result.Submitted, 0, result.Skipped, 0)
		return result, models.Validation("all entries invalid", map[string]interface{}{
			"submitted": result.Submitted,
			"skipped":   result.Skipped,
			"failures":  result.Failures,
		})
	}

	ingestedAt := p.now().UTC()
	writes := make([]database.Write, len(prepared))
	for i, w := range prepared {
		writes[i] = database.Write{
			Table:   database.TableReadings,
			Columns: readingColumns,
			Values:  []interface{}{w.Device, w.Timestamp, string(w.SampleRaw), w.Note, w.Session, ingestedAt},
		}
	}

	outcomes, err := p.store.BatchInsert(ctx, writes)
	if err == nil && len(outcomes) != len(writes) {
		err = models.Unexpected(fmt.Errorf("store returned %d outcomes for %d writes", len(outcomes), len(writes)))
	}
	if err != nil {
		metrics.RecordIngest(string(models.BatchFailed), result.Submitted, 0, result.Skipped, len(writes))
		log.Error().Err(err).Str("device", req.Device).Int("writes", len(writes)).Msg("Batch insert failed")
		return nil, err
	}

	var firstErr error
	for i, o := range outcomes {
		if o.OK() {
			result.Stored++
			continue
		}
		if firstErr == nil {
			firstErr = o.Err
		}
		result.AddStoreFailure(prepared[i].Index, prepared[i].Timestamp.Format(time.RFC3339Nano), o.Err)
	}
	sort.SliceStable(result.Failures, func(a, b int) bool {
		return result.Failures[a].Index < result.Failures[b].Index
	})

	status := result.Status()
	metrics.RecordIngest(string(status), result.Submitted, result.Stored, result.Skipped, result.Failed)

	log.Info().
		Str("device", req.Device).
		Str("status", string(status)).
		Int("submitted", result.Submitted).
		Int("stored", result.Stored).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Batch ingested")

	if result.Stored == 0 {
		return result, &models.Error{
			Kind:    models.KindStore,
			Message: "no entries were stored",
			Details: map[string]interface{}{"failures": result.Failures},
			Cause:   firstErr,
		}
	}

	p.events.Emit(ctx, events.TopicReadingsIngested, events.ReadingsIngested{
		Device:  result.Device,
		Session: result.Session,
		Stored:  result.Stored,
		Failed:  result.Failed,
		Skipped: result.Skipped,
	})
	return result, nil
}

// prepare decodes and validates one entry. A non-empty reason means the
// entry is skipped; ts is the raw timestamp when one was readable.
func (p *Pipeline) prepare(req *models.IngestRequest, index int, raw json.RawMessage) (w models.Write, ts string, reason string) {
	var entry models.IngestEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return w, "", fmt.Sprintf("malformed entry: %v", err)
	}
	if entry.Timestamp != nil {
		ts = *entry.Timestamp
	}

	if res := validation.Check(entry); !res.Valid() {
		return w, ts, res.Message()
	}

	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return w, ts, fmt.Sprintf("timestamp: %v", err)
	}

	samples := make([]models.Quaternion, len(entry.Samples))
	for i, s := range entry.Samples {
		copy(samples[i][:], s)
	}
	blob, err := json.Marshal(samples)
	if err != nil {
		return w, ts, fmt.Sprintf("samples: %v", err)
	}

	return models.Write{
		Index:     index,
		Device:    req.Device,
		Timestamp: parsed.UTC(),
		SampleRaw: blob,
		Note:      entry.Note,
		Session:   req.Session,
	}, ts, ""
}
