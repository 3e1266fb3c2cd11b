// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/kinetrace/internal/database"
	"github.com/tomtom215/kinetrace/internal/events"
	"github.com/tomtom215/kinetrace/internal/models"
	"github.com/tomtom215/kinetrace/internal/testinfra"
)

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu       sync.Mutex
	topics   []string
	payloads []interface{}
}

func (r *recordingEmitter) Emit(_ context.Context, topic string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.payloads = append(r.payloads, payload)
}

func (r *recordingEmitter) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.topics...)
}

// clock returns successive instants one minute apart.
func clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Minute)
		return t
	}
}

func newTestManager(t *testing.T) (*Manager, *recordingEmitter) {
	t.Helper()
	emitter := &recordingEmitter{}
	m := NewManager(testinfra.NewDuckDB(t), emitter)
	m.now = clock(time.Date(2026, 5, 4, 10, 0, 0, 123456789, time.UTC))
	return m, emitter
}

func strPtr(s string) *string { return &s }

func TestStart_CreatesOpenSession(t *testing.T) {
	m, emitter := newTestManager(t)
	ctx := context.Background()

	s, err := m.Start(ctx, "gait-trial-01", strPtr("left wrist + ankle"))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.State() != models.SessionOpen {
		t.Errorf("State() = %q, want open", s.State())
	}
	if s.StartTime.Nanosecond()%1000 != 0 {
		t.Errorf("start time %v not truncated to microseconds", s.StartTime)
	}

	got, err := m.Get(ctx, "gait-trial-01")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.StartTime.Equal(s.StartTime) {
		t.Errorf("stored start = %v, returned %v", got.StartTime, s.StartTime)
	}
	if got.StartTime.Location() != time.UTC {
		t.Errorf("start location = %v, want UTC", got.StartTime.Location())
	}
	if got.EndTime != nil {
		t.Errorf("EndTime = %v, want nil", got.EndTime)
	}
	if got.Notes == nil || *got.Notes != "left wrist + ankle" {
		t.Errorf("Notes = %v", got.Notes)
	}

	topics := emitter.Topics()
	if len(topics) != 1 || topics[0] != events.TopicSessionStarted {
		t.Errorf("emitted topics = %v", topics)
	}
}

func TestStart_DuplicateIsConflict(t *testing.T) {
	m, emitter := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Start(ctx, "dup", nil); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	_, err := m.Start(ctx, "dup", nil)
	if models.KindOf(err) != models.KindConflict {
		t.Fatalf("second Start() kind = %q, want %q (err=%v)", models.KindOf(err), models.KindConflict, err)
	}
	if !strings.Contains(err.Error(), `"dup"`) {
		t.Errorf("conflict message should name the session: %v", err)
	}
	if !errors.Is(err, models.ErrConflict) {
		t.Error("errors.Is(err, ErrConflict) = false")
	}
	if n := len(emitter.Topics()); n != 1 {
		t.Errorf("emitted %d events, want 1", n)
	}
}

func TestStart_InvalidName(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	for _, name := range []string{"", " padded ", "a/b", strings.Repeat("x", 129)} {
		_, err := m.Start(ctx, name, nil)
		if models.KindOf(err) != models.KindValidation {
			t.Errorf("Start(%q) kind = %q, want validation", name, models.KindOf(err))
		}
	}

	_, err := m.Start(ctx, "long-notes", strPtr(strings.Repeat("n", 4097)))
	if models.KindOf(err) != models.KindValidation {
		t.Errorf("Start() with long notes kind = %q, want validation", models.KindOf(err))
	}
}

func TestStart_ConcurrentSameName(t *testing.T) {
	emitter := &recordingEmitter{}
	m := NewManager(testinfra.NewDuckDB(t), emitter)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Start(ctx, "race", nil)
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch models.KindOf(err) {
		case "":
			ok++
		case models.KindConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != workers-1 {
		t.Errorf("successes = %d, conflicts = %d; want 1 and %d", ok, conflicts, workers-1)
	}
}

func TestEnd(t *testing.T) {
	m, emitter := newTestManager(t)
	ctx := context.Background()

	started, err := m.Start(ctx, "walk", nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ended, err := m.End(ctx, "walk")
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.State() != models.SessionClosed {
		t.Fatalf("State() = %q, want closed", ended.State())
	}
	if ended.EndTime.Before(ended.StartTime) {
		t.Errorf("end %v before start %v", ended.EndTime, ended.StartTime)
	}
	if !ended.StartTime.Equal(started.StartTime) {
		t.Errorf("start time changed: %v -> %v", started.StartTime, ended.StartTime)
	}
	firstEnd := *ended.EndTime

	// Ending again overwrites end_time.
	again, err := m.End(ctx, "walk")
	if err != nil {
		t.Fatalf("second End() error = %v", err)
	}
	if !again.EndTime.After(firstEnd) {
		t.Errorf("second end %v not after first %v", again.EndTime, firstEnd)
	}

	want := []string{events.TopicSessionStarted, events.TopicSessionEnded, events.TopicSessionEnded}
	got := emitter.Topics()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("emitted topics = %v, want %v", got, want)
	}
}

func TestEnd_Unknown(t *testing.T) {
	m, emitter := newTestManager(t)

	_, err := m.End(context.Background(), "never-started")
	if models.KindOf(err) != models.KindNotFound {
		t.Fatalf("End() kind = %q, want not found (err=%v)", models.KindOf(err), err)
	}
	if n := len(emitter.Topics()); n != 0 {
		t.Errorf("emitted %d events for a failed end", n)
	}
}

func TestGet_Unknown(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Get(context.Background(), "missing")
	if models.KindOf(err) != models.KindNotFound {
		t.Errorf("Get() kind = %q, want not found", models.KindOf(err))
	}
}

func TestList(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	empty, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List() on empty store = %v, want empty slice", empty)
	}

	for _, name := range []string{"first", "second", "third"} {
		if _, err := m.Start(ctx, name, nil); err != nil {
			t.Fatalf("Start(%s) error = %v", name, err)
		}
	}
	if _, err := m.End(ctx, "second"); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	sessions, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, s := range sessions {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "third,second,first" {
		t.Errorf("List() order = %v, want newest first", names)
	}
	if sessions[1].State() != models.SessionClosed || sessions[0].State() != models.SessionOpen {
		t.Errorf("states = %q, %q", sessions[0].State(), sessions[1].State())
	}
}

// failingStore returns err from every call.
type failingStore struct {
	err error
}

func (f failingStore) Insert(context.Context, string, []string, ...interface{}) error {
	return f.err
}

func (f failingStore) Update(context.Context, string, []string, string, ...interface{}) (int64, error) {
	return 0, f.err
}

func (f failingStore) SelectOne(context.Context, string, func(database.Scanner) error, ...interface{}) (bool, error) {
	return false, f.err
}

func (f failingStore) SelectMany(context.Context, string, func(database.Scanner) error, ...interface{}) error {
	return f.err
}

func TestStoreErrorsPropagate(t *testing.T) {
	t.Parallel()

	storeErr := models.Store("insert on sessions failed", errors.New("disk full"))
	m := NewManager(failingStore{err: storeErr}, nil)
	ctx := context.Background()

	if _, err := m.Start(ctx, "s", nil); models.KindOf(err) != models.KindStore {
		t.Errorf("Start() kind = %q, want store", models.KindOf(err))
	}
	if _, err := m.End(ctx, "s"); models.KindOf(err) != models.KindStore {
		t.Errorf("End() kind = %q, want store", models.KindOf(err))
	}
	if _, err := m.Get(ctx, "s"); models.KindOf(err) != models.KindStore {
		t.Errorf("Get() kind = %q, want store", models.KindOf(err))
	}
	if _, err := m.List(ctx); models.KindOf(err) != models.KindStore {
		t.Errorf("List() kind = %q, want store", models.KindOf(err))
	}
}

func TestResultLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{models.Validation("bad", nil), "invalid"},
		{models.Conflict("dup"), "conflict"},
		{models.NotFound("gone"), "not_found"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := resultLabel(tt.err); got != tt.want {
			t.Errorf("resultLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
