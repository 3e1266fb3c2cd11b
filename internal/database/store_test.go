// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/metrics"
	"github.com/tomtom215/kinetrace/internal/models"
)

var sessionColumns = []string{"name", "start_time", "notes", "created_at"}

func sessionWrite(name string, start time.Time) Write {
	return Write{Table: TableSessions, Columns: sessionColumns, Values: []interface{}{name, start, nil, start}}
}

func readingWrite(device string, ts time.Time) Write {
	return Write{
		Table:   TableReadings,
		Columns: []string{"device", "timestamp", "sample_blob", "note", "session_name", "ingested_at"},
		Values:  []interface{}{device, ts, `[[1,0,0,0]]`, nil, nil, ts},
	}
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	if err := db.Conn().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestInsert_DuplicateIsConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := db.Insert(ctx, TableSessions, sessionColumns, "exp1", now, nil, now); err != nil {
		t.Fatalf("first Insert() error = %v", err)
	}

	err := db.Insert(ctx, TableSessions, sessionColumns, "exp1", now.Add(time.Second), "again", now)
	if models.KindOf(err) != models.KindConflict {
		t.Fatalf("second Insert() kind = %q (%v), want conflict", models.KindOf(err), err)
	}
	if countRows(t, db, TableSessions) != 1 {
		t.Error("duplicate insert must not add a row")
	}
}

func TestInsert_InvalidArguments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		table   string
		columns []string
		values  []interface{}
	}{
		{"no columns", TableSessions, nil, nil},
		{"count mismatch", TableSessions, sessionColumns, []interface{}{"x"}},
		{"injected table", "sessions; DROP TABLE readings", []string{"name"}, []interface{}{"x"}},
		{"upper case column", TableSessions, []string{"Name"}, []interface{}{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.Insert(ctx, tt.table, tt.columns, tt.values...)
			if models.KindOf(err) != models.KindUnexpected {
				t.Errorf("Insert() kind = %q, want unexpected", models.KindOf(err))
			}
		})
	}
}

func TestInsert_MissingTableIsStoreError(t *testing.T) {
	db := setupTestDB(t)

	err := db.Insert(context.Background(), "no_such_table", []string{"a"}, 1)
	if models.KindOf(err) != models.KindStore {
		t.Fatalf("kind = %q (%v), want store", models.KindOf(err), err)
	}
}

func TestBatchInsert_AllSucceed(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	writes := make([]Write, 60)
	for i := range writes {
		writes[i] = readingWrite("hip", base.Add(time.Duration(i)*time.Second))
	}

	outcomes, err := db.BatchInsert(context.Background(), writes)
	if err != nil {
		t.Fatalf("BatchInsert() error = %v", err)
	}
	if len(outcomes) != len(writes) {
		t.Fatalf("outcomes = %d, want %d", len(outcomes), len(writes))
	}
	for i, o := range outcomes {
		if !o.OK() {
			t.Errorf("outcome %d: %v", i, o.Err)
		}
	}
	if n := countRows(t, db, TableReadings); n != 60 {
		t.Errorf("rows = %d, want 60", n)
	}
}

func TestBatchInsert_IndependentOutcomes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := db.Insert(ctx, TableSessions, sessionColumns, "taken", now, nil, now); err != nil {
		t.Fatalf("seed: %v", err)
	}

	writes := []Write{
		sessionWrite("a", now),
		sessionWrite("taken", now),
		sessionWrite("b", now),
		{Table: "no_such_table", Columns: []string{"x"}, Values: []interface{}{1}},
		sessionWrite("c", now),
	}

	outcomes, err := db.BatchInsert(ctx, writes)
	if err != nil {
		t.Fatalf("BatchInsert() error = %v", err)
	}

	wantKinds := []models.ErrorKind{"", models.KindConflict, "", models.KindStore, ""}
	for i, want := range wantKinds {
		if got := models.KindOf(outcomes[i].Err); got != want {
			t.Errorf("outcome %d kind = %q, want %q (%v)", i, got, want, outcomes[i].Err)
		}
	}

	// taken + a, b, c; nothing left behind by the rolled back transaction
	if n := countRows(t, db, TableSessions); n != 4 {
		t.Errorf("sessions = %d, want 4", n)
	}
}

// rejectDevice recreates readings so rows for device fail a CHECK constraint.
func rejectDevice(t *testing.T, db *DB, device string) {
	t.Helper()
	for _, stmt := range []string{
		`DROP INDEX IF EXISTS idx_readings_timestamp`,
		`DROP INDEX IF EXISTS idx_readings_timestamp_device`,
		`DROP INDEX IF EXISTS idx_readings_session`,
		`DROP TABLE readings`,
		`CREATE TABLE readings (
			device TEXT NOT NULL CHECK (device <> '` + device + `'),
			timestamp TIMESTAMP NOT NULL,
			sample_blob TEXT NOT NULL,
			note TEXT,
			session_name TEXT,
			ingested_at TIMESTAMP NOT NULL
		)`,
	} {
		if _, err := db.Conn().Exec(stmt); err != nil {
			t.Fatalf("recreate readings: %v", err)
		}
	}
}

func TestBatchInsert_FailingWriteMidBatch(t *testing.T) {
	db := setupTestDB(t)
	rejectDevice(t, db, "broken")
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	writes := []Write{
		readingWrite("hip", base),
		readingWrite("hip", base.Add(time.Second)),
		readingWrite("broken", base.Add(2*time.Second)),
		readingWrite("wrist", base.Add(3*time.Second)),
	}

	before := testutil.ToFloat64(metrics.DBBatchFallbacks)
	outcomes, err := db.BatchInsert(context.Background(), writes)
	if err != nil {
		t.Fatalf("BatchInsert() error = %v", err)
	}
	if got := testutil.ToFloat64(metrics.DBBatchFallbacks) - before; got != 1 {
		t.Errorf("fallbacks delta = %v, want 1", got)
	}

	wantKinds := []models.ErrorKind{"", "", models.KindStore, ""}
	if len(outcomes) != len(wantKinds) {
		t.Fatalf("outcomes = %d, want %d", len(outcomes), len(wantKinds))
	}
	for i, want := range wantKinds {
		if got := models.KindOf(outcomes[i].Err); got != want {
			t.Errorf("outcome %d kind = %q, want %q (%v)", i, got, want, outcomes[i].Err)
		}
	}

	// Writes before the failure appear once: the transaction was rolled back
	// and they were applied again individually.
	if n := countRows(t, db, TableReadings); n != 3 {
		t.Errorf("rows = %d, want 3", n)
	}
}

func TestBatchInsert_EveryWriteFails(t *testing.T) {
	db := setupTestDB(t)
	rejectDevice(t, db, "broken")
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	outcomes, err := db.BatchInsert(context.Background(), []Write{
		readingWrite("broken", now),
		readingWrite("broken", now.Add(time.Second)),
	})
	if err != nil {
		t.Fatalf("BatchInsert() error = %v, want per-write outcomes", err)
	}
	for i, o := range outcomes {
		if models.KindOf(o.Err) != models.KindStore {
			t.Errorf("outcome %d = %v, want store error", i, o.Err)
		}
	}
	if n := countRows(t, db, TableReadings); n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestBatchInsert_Empty(t *testing.T) {
	db := setupTestDB(t)

	outcomes, err := db.BatchInsert(context.Background(), nil)
	if err != nil || len(outcomes) != 0 {
		t.Errorf("BatchInsert(nil) = %v, %v", outcomes, err)
	}
}

func TestBatchInsert_InvalidWriteRejectsBatch(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	writes := []Write{
		readingWrite("hip", now),
		{Table: TableReadings, Columns: []string{"device"}, Values: nil},
	}

	outcomes, err := db.BatchInsert(context.Background(), writes)
	if err == nil || outcomes != nil {
		t.Fatalf("BatchInsert() = %v, %v; want batch error", outcomes, err)
	}
	if n := countRows(t, db, TableReadings); n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestUpdate_RowsAffected(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(-time.Minute)

	if err := db.Insert(ctx, TableSessions, sessionColumns, "exp1", start, nil, start); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := db.Update(ctx, TableSessions, []string{"end_time"}, "name = ?", time.Now().UTC(), "exp1")
	if err != nil || n != 1 {
		t.Fatalf("Update(exp1) = %d, %v; want 1", n, err)
	}

	n, err = db.Update(ctx, TableSessions, []string{"end_time"}, "name = ?", time.Now().UTC(), "missing")
	if err != nil || n != 0 {
		t.Fatalf("Update(missing) = %d, %v; want 0", n, err)
	}

	if _, err := db.Update(ctx, TableSessions, nil, "name = ?", "exp1"); models.KindOf(err) != models.KindUnexpected {
		t.Errorf("Update without columns kind = %q", models.KindOf(err))
	}
}

func TestSelectOne(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if err := db.Insert(ctx, TableSessions, sessionColumns, "exp1", start, "pilot", start); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got time.Time
	var notes *string
	found, err := db.SelectOne(ctx, "SELECT start_time, notes FROM sessions WHERE name = ?",
		func(s Scanner) error { return s.Scan(&got, &notes) }, "exp1")
	if err != nil || !found {
		t.Fatalf("SelectOne(exp1) = %v, %v", found, err)
	}
	if !got.Equal(start) {
		t.Errorf("start_time = %v, want %v", got, start)
	}
	if notes == nil || *notes != "pilot" {
		t.Errorf("notes = %v, want pilot", notes)
	}

	found, err = db.SelectOne(ctx, "SELECT start_time, notes FROM sessions WHERE name = ?",
		func(s Scanner) error { return s.Scan(&got, &notes) }, "missing")
	if err != nil || found {
		t.Errorf("SelectOne(missing) = %v, %v; want false, nil", found, err)
	}
}

func TestSelectMany_Order(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	writes := []Write{
		readingWrite("wrist", base.Add(time.Second)),
		readingWrite("hip", base.Add(time.Second)),
		readingWrite("ankle", base),
	}
	if _, err := db.BatchInsert(ctx, writes); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var devices []string
	err := db.SelectMany(ctx, "SELECT device FROM readings ORDER BY timestamp ASC, device ASC",
		func(s Scanner) error {
			var d string
			if err := s.Scan(&d); err != nil {
				return err
			}
			devices = append(devices, d)
			return nil
		})
	if err != nil {
		t.Fatalf("SelectMany() error = %v", err)
	}
	if strings.Join(devices, ",") != "ankle,hip,wrist" {
		t.Errorf("order = %v", devices)
	}

	scanErr := errors.New("bad row")
	err = db.SelectMany(ctx, "SELECT device FROM readings", func(Scanner) error { return scanErr })
	if !errors.Is(err, scanErr) || models.KindOf(err) != models.KindStore {
		t.Errorf("scan failure = %v, want store error wrapping scan error", err)
	}
}

func TestBreaker_OpensOnStoreFailures(t *testing.T) {
	db := setupTestDB(t, WithBreaker(config.StoreConfig{
		BreakerEnabled:          true,
		BreakerFailureThreshold: 2,
		BreakerTimeout:          time.Minute,
		BreakerMaxRequests:      1,
	}))
	ctx := context.Background()
	now := time.Now().UTC()

	// Conflicts are healthy answers and must not trip the breaker.
	if err := db.Insert(ctx, TableSessions, sessionColumns, "exp1", now, nil, now); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for i := 0; i < 3; i++ {
		_ = db.Insert(ctx, TableSessions, sessionColumns, "exp1", now, nil, now)
	}
	if db.BreakerState() != "closed" {
		t.Fatalf("BreakerState() = %q after conflicts, want closed", db.BreakerState())
	}

	for i := 0; i < 2; i++ {
		_ = db.Insert(ctx, "no_such_table", []string{"a"}, 1)
	}
	if db.BreakerState() != "open" {
		t.Fatalf("BreakerState() = %q, want open", db.BreakerState())
	}

	err := db.Insert(ctx, TableSessions, sessionColumns, "exp2", now, nil, now)
	if models.KindOf(err) != models.KindStore || !strings.Contains(err.Error(), "store unavailable") {
		t.Errorf("Insert with open breaker = %v, want store unavailable", err)
	}
	if _, err := db.BatchInsert(ctx, []Write{sessionWrite("exp3", now)}); models.KindOf(err) != models.KindStore {
		t.Errorf("BatchInsert with open breaker kind = %q", models.KindOf(err))
	}
}

func TestBreakerDisabled(t *testing.T) {
	db := setupTestDB(t, WithBreaker(config.StoreConfig{BreakerEnabled: false}))
	if db.BreakerState() != "disabled" {
		t.Errorf("BreakerState() = %q, want disabled", db.BreakerState())
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	writeConflict := errors.New("TransactionContext Error: Failed to commit: write-write conflict on key")
	tests := []struct {
		name string
		op   string
		err  error
		want models.ErrorKind
	}{
		{"nil", "insert", nil, ""},
		{"typed passes through", "insert", models.NotFound("x"), models.KindNotFound},
		{"duplicate", "insert", errors.New("Constraint Error: Duplicate key"), models.KindConflict},
		{"insert write conflict", "insert", writeConflict, models.KindConflict},
		{"update write conflict", "update", writeConflict, models.KindStore},
		{"breaker open", "select", gobreaker.ErrOpenState, models.KindStore},
		{"other", "select", errors.New("IO Error"), models.KindStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := models.KindOf(classify(tt.op, "sessions", tt.err)); got != tt.want {
				t.Errorf("KindOf(classify()) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTableOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  string
	}{
		{"SELECT * FROM sessions WHERE name = ?", "sessions"},
		{"select device\nfrom readings order by ts", "readings"},
		{"SELECT 1", "unknown"},
	}
	for _, tt := range tests {
		if got := tableOf(tt.query); got != tt.want {
			t.Errorf("tableOf(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
