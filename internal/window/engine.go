// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package window

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinetrace/internal/database"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
	"github.com/tomtom215/kinetrace/internal/models"
)

const (
	selectWindow = `SELECT device, timestamp, sample_blob, note, session_name
		FROM readings
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, device ASC`

	selectTagged = `SELECT device, timestamp, sample_blob, note, session_name
		FROM readings
		WHERE session_name = ?
		ORDER BY timestamp ASC, device ASC`
)

// Sessions resolves a session by name. Satisfied by *session.Manager.
type Sessions interface {
	Get(ctx context.Context, name string) (*models.Session, error)
}

// Store is the subset of *database.DB used by the engine.
type Store interface {
	SelectMany(ctx context.Context, query string, scan func(database.Scanner) error, args ...interface{}) error
}

// Engine answers window queries.
type Engine struct {
	sessions Sessions
	store    Store
}

// NewEngine creates an engine.
func NewEngine(sessions Sessions, store Store) *Engine {
	return &Engine{sessions: sessions, store: store}
}

// Query returns the readings owned by the named session. A missing session
// is a models.KindNotFound error; an open session yields an incomplete
// result.
func (e *Engine) Query(ctx context.Context, name string, mode models.QueryMode) (*models.WindowResult, error) {
	if mode == "" {
		mode = models.ModeWindow
	}

	s, err := e.sessions.Get(ctx, name)
	if err != nil {
		metrics.RecordSessionOperation("query", lookupLabel(err))
		return nil, err
	}

	result := &models.WindowResult{
		Name:      s.Name,
		Notes:     s.Notes,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Mode:      mode,
		Readings:  []models.Reading{},
	}

	if s.IsOpen() {
		result.Message = fmt.Sprintf("session %q is still open; readings are available once it ends", s.Name)
		metrics.RecordSessionOperation("query", "incomplete")
		return result, nil
	}

	var (
		query string
		args  []interface{}
	)
	switch mode {
	case models.ModeWindow:
		query, args = selectWindow, []interface{}{s.StartTime, *s.EndTime}
	case models.ModeTagged:
		query, args = selectTagged, []interface{}{s.Name}
	default:
		return nil, models.Validation(fmt.Sprintf("unknown query mode %q", mode), map[string]interface{}{"field": "mode"})
	}

	start := time.Now()
	err = e.store.SelectMany(ctx, query, func(row database.Scanner) error {
		r, err := scanReading(row)
		if err != nil {
			return err
		}
		result.Readings = append(result.Readings, r)
		return nil
	}, args...)
	if err != nil {
		metrics.RecordSessionOperation("query", "error")
		return nil, err
	}

	result.Complete = true
	result.Count = len(result.Readings)
	result.Message = fmt.Sprintf("%d readings in session %q", result.Count, s.Name)

	metrics.RecordSessionOperation("query", "success")
	metrics.WindowReadings.Observe(float64(result.Count))

	logging.Ctx(ctx).Debug().
		Str("session", s.Name).
		Str("mode", string(mode)).
		Int("count", result.Count).
		Dur("elapsed", time.Since(start)).
		Msg("Window query complete")

	return result, nil
}

// lookupLabel maps a session lookup failure to its metric label.
func lookupLabel(err error) string {
	if models.KindOf(err) == models.KindNotFound {
		return "not_found"
	}
	return "error"
}

func scanReading(row database.Scanner) (models.Reading, error) {
	var (
		r       models.Reading
		blob    string
		note    sql.NullString
		session sql.NullString
	)
	if err := row.Scan(&r.Device, &r.Timestamp, &blob, &note, &session); err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(blob), &r.Samples); err != nil {
		return r, fmt.Errorf("decode samples of %s at %s: %w", r.Device, r.Timestamp.Format(time.RFC3339Nano), err)
	}
	r.Timestamp = r.Timestamp.UTC()
	if note.Valid {
		n := note.String
		r.Note = &n
	}
	if session.Valid {
		sn := session.String
		r.Session = &sn
	}
	return r, nil
}
