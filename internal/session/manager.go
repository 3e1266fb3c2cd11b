// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/tomtom215/kinetrace/internal/database"
	"github.com/tomtom215/kinetrace/internal/events"
	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
	"github.com/tomtom215/kinetrace/internal/models"
	"github.com/tomtom215/kinetrace/internal/validation"
)

const (
	selectSession = `SELECT name, start_time, end_time, notes, created_at FROM sessions WHERE name = ?`
	listSessions  = `SELECT name, start_time, end_time, notes, created_at FROM sessions ORDER BY start_time DESC, name ASC`
)

var insertColumns = []string{"name", "start_time", "notes", "created_at"}

// Store is the subset of *database.DB used by the manager.
type Store interface {
	Insert(ctx context.Context, table string, columns []string, values ...interface{}) error
	Update(ctx context.Context, table string, setColumns []string, where string, args ...interface{}) (int64, error)
	SelectOne(ctx context.Context, query string, scan func(database.Scanner) error, args ...interface{}) (bool, error)
	SelectMany(ctx context.Context, query string, scan func(database.Scanner) error, args ...interface{}) error
}

// Manager starts, ends and looks up sessions.
type Manager struct {
	store  Store
	events events.Emitter
	now    func() time.Time
}

// NewManager creates a manager. A nil emitter disables events.
func NewManager(store Store, emitter events.Emitter) *Manager {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &Manager{
		store:  store,
		events: emitter,
		now:    time.Now,
	}
}

// Start creates an open session named name with start_time set to now.
func (m *Manager) Start(ctx context.Context, name string, notes *string) (*models.Session, error) {
	if err := validation.Check(models.StartSessionRequest{Name: name, Notes: notes}).Err(); err != nil {
		metrics.RecordSessionOperation("start", resultLabel(err))
		return nil, err
	}

	now := m.timestamp()
	err := m.store.Insert(ctx, database.TableSessions, insertColumns, name, now, notes, now)
	if models.KindOf(err) == models.KindConflict {
		err = models.Conflict("session %q already exists", name)
	}
	metrics.RecordSessionOperation("start", resultLabel(err))
	if err != nil {
		return nil, err
	}

	s := &models.Session{
		Name:      name,
		StartTime: now,
		Notes:     notes,
		CreatedAt: now,
	}

	logging.Ctx(ctx).Info().
		Str("session", name).
		Time("start_time", now).
		Msg("Session started")

	m.events.Emit(ctx, events.TopicSessionStarted, events.SessionStarted{
		Name:      name,
		StartTime: now,
	})
	return s, nil
}

// End sets end_time to now. Ending a closed session overwrites its end time.
func (m *Manager) End(ctx context.Context, name string) (*models.Session, error) {
	if err := validation.ValidateSessionName(name); err != nil {
		metrics.RecordSessionOperation("end", resultLabel(err))
		return nil, err
	}

	now := m.timestamp()
	affected, err := m.store.Update(ctx, database.TableSessions, []string{"end_time"}, "name = ?", now, name)
	if err == nil && affected == 0 {
		err = models.NotFound("session %q not found", name)
	}
	metrics.RecordSessionOperation("end", resultLabel(err))
	if err != nil {
		return nil, err
	}

	s, err := m.get(ctx, name)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("session", name).
		Time("end_time", now).
		Dur("duration", now.Sub(s.StartTime)).
		Msg("Session ended")

	m.events.Emit(ctx, events.TopicSessionEnded, events.SessionEnded{
		Name:    name,
		EndTime: now,
	})
	return s, nil
}

// Get returns the named session or a models.KindNotFound error.
func (m *Manager) Get(ctx context.Context, name string) (*models.Session, error) {
	s, err := m.get(ctx, name)
	metrics.RecordSessionOperation("get", resultLabel(err))
	return s, err
}

func (m *Manager) get(ctx context.Context, name string) (*models.Session, error) {
	var s models.Session
	found, err := m.store.SelectOne(ctx, selectSession, func(row database.Scanner) error {
		return scanSession(row, &s)
	}, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NotFound("session %q not found", name)
	}
	return &s, nil
}

// List returns every session, most recently started first.
func (m *Manager) List(ctx context.Context) ([]models.Session, error) {
	sessions := []models.Session{}
	err := m.store.SelectMany(ctx, listSessions, func(row database.Scanner) error {
		var s models.Session
		if err := scanSession(row, &s); err != nil {
			return err
		}
		sessions = append(sessions, s)
		return nil
	})
	metrics.RecordSessionOperation("list", resultLabel(err))
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// timestamp returns now in UTC at the store's microsecond precision, so the
// value returned to the caller equals the value read back later.
func (m *Manager) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Microsecond)
}

func scanSession(row database.Scanner, s *models.Session) error {
	var (
		end   sql.NullTime
		notes sql.NullString
	)
	if err := row.Scan(&s.Name, &s.StartTime, &end, &notes, &s.CreatedAt); err != nil {
		return err
	}
	s.StartTime = s.StartTime.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	if end.Valid {
		t := end.Time.UTC()
		s.EndTime = &t
	}
	if notes.Valid {
		n := notes.String
		s.Notes = &n
	}
	return nil
}

// resultLabel maps an operation error to its metric label.
func resultLabel(err error) string {
	switch models.KindOf(err) {
	case "":
		return "success"
	case models.KindValidation:
		return "invalid"
	case models.KindConflict:
		return "conflict"
	case models.KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}
