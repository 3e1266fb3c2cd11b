// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

/*
store.go - Store Boundary Operations

The ingestion, session and window packages reach DuckDB only through these
five operations:

  - Insert: single-row write
  - BatchInsert: many writes with one independent Outcome per write
  - Update: returns rows affected so callers can detect a missed key
  - SelectOne: point lookup, found=false when no row matches
  - SelectMany: ordered scan, possibly empty

Every driver error is classified before it leaves the package: uniqueness
violations become models.KindConflict and all other failures models.KindStore.
When a circuit breaker is configured every call runs through it.

BatchInsert Strategy:
DuckDB has no savepoints, so a failed statement aborts the whole transaction.
The batch is first attempted as one transaction, which is the fast path and
leaves no partial state behind when it fails. If any write fails, the
transaction is rolled back and each write is retried in autocommit mode to
obtain its individual outcome.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/kinetrace/internal/logging"
	"github.com/tomtom215/kinetrace/internal/metrics"
	"github.com/tomtom215/kinetrace/internal/models"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Write is one prepared single-row insert.
type Write struct {
	Table   string
	Columns []string
	Values  []interface{}
}

// Outcome is the result of one Write of a batch. Err is nil on success and
// a classified *models.Error otherwise.
type Outcome struct {
	Err error
}

// OK reports whether the write was stored.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Insert writes a single row.
func (db *DB) Insert(ctx context.Context, table string, columns []string, values ...interface{}) error {
	query, err := insertSQL(table, columns, len(values))
	if err != nil {
		return models.Unexpected(err)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	return db.guard(func() error {
		start := time.Now()
		_, err := db.conn.ExecContext(ctx, query, values...)
		metrics.RecordDBQuery("insert", table, time.Since(start), err)
		return classify("insert", table, err)
	})
}

// BatchInsert submits writes as one grouped operation and returns one
// outcome per write, in order. The error is non-nil only when the batch
// could not be attempted at all (store unavailable, context done, invalid
// write); in that case no outcomes are returned and nothing was stored.
func (db *DB) BatchInsert(ctx context.Context, writes []Write) ([]Outcome, error) {
	if len(writes) == 0 {
		return []Outcome{}, nil
	}

	queries := make([]string, len(writes))
	for i, w := range writes {
		q, err := insertSQL(w.Table, w.Columns, len(w.Values))
		if err != nil {
			return nil, models.Unexpected(fmt.Errorf("write %d: %w", i, err))
		}
		queries[i] = q
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	table := writes[0].Table
	var outcomes []Outcome

	err := db.guard(func() error {
		start := time.Now()
		failedAt, txErr := db.insertTx(ctx, writes, queries)
		if txErr == nil {
			metrics.RecordDBQuery("batch_insert", table, time.Since(start), nil)
			outcomes = make([]Outcome, len(writes))
			return nil
		}
		if ctx.Err() != nil || failedAt < 0 {
			metrics.RecordDBQuery("batch_insert", table, time.Since(start), txErr)
			return classify("batch insert", table, txErr)
		}

		logging.Debug().
			Int("writes", len(writes)).
			Int("failed_index", failedAt).
			Err(txErr).
			Msg("Batch transaction failed, retrying writes individually")
		metrics.DBBatchFallbacks.Inc()

		outcomes = db.insertEach(ctx, writes, queries)
		return allFailed(outcomes)
	})

	if outcomes != nil {
		return outcomes, nil
	}
	return nil, err
}

// insertTx runs every write in one transaction. failedAt is the index of the
// write that failed, len(writes) when the commit failed, or -1 when the
// transaction could not be started.
func (db *DB) insertTx(ctx context.Context, writes []Write, queries []string) (failedAt int, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return -1, fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, w := range writes {
		if _, err = tx.ExecContext(ctx, queries[i], w.Values...); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
			return i, err
		}
	}

	if err = tx.Commit(); err != nil {
		return len(writes), fmt.Errorf("failed to commit transaction: %w", err)
	}
	return 0, nil
}

// insertEach applies writes one at a time in autocommit mode.
func (db *DB) insertEach(ctx context.Context, writes []Write, queries []string) []Outcome {
	outcomes := make([]Outcome, len(writes))
	for i, w := range writes {
		if err := ctx.Err(); err != nil {
			outcomes[i] = Outcome{Err: classify("insert", w.Table, err)}
			continue
		}
		start := time.Now()
		_, err := db.conn.ExecContext(ctx, queries[i], w.Values...)
		metrics.RecordDBQuery("insert", w.Table, time.Since(start), err)
		outcomes[i] = Outcome{Err: classify("insert", w.Table, err)}
	}
	return outcomes
}

// allFailed returns the first error when no write succeeded because of a
// store fault, so the breaker sees a dead store. Conflicts are answers from
// a live store and do not count.
func allFailed(outcomes []Outcome) error {
	for _, o := range outcomes {
		if models.KindOf(o.Err) != models.KindStore {
			return nil
		}
	}
	return outcomes[0].Err
}

// Update sets columns on the rows matched by where and returns the number of
// rows affected. where is a trusted SQL fragment with ? placeholders; args
// bind the SET values first, then the WHERE values.
func (db *DB) Update(ctx context.Context, table string, setColumns []string, where string, args ...interface{}) (int64, error) {
	if err := checkIdentifiers(append([]string{table}, setColumns...)); err != nil {
		return 0, models.Unexpected(err)
	}
	if len(setColumns) == 0 || strings.TrimSpace(where) == "" {
		return 0, models.Unexpected(fmt.Errorf("update %s: set columns and where clause are required", table))
	}

	assignments := make([]string, len(setColumns))
	for i, c := range setColumns {
		assignments[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(assignments, ", "), where)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var affected int64
	err := db.guard(func() error {
		start := time.Now()
		res, err := db.conn.ExecContext(ctx, query, args...)
		metrics.RecordDBQuery("update", table, time.Since(start), err)
		if err != nil {
			return classify("update", table, err)
		}
		affected, err = res.RowsAffected()
		return classify("update", table, err)
	})
	return affected, err
}

// SelectOne runs query and scans the first row. found is false when no row
// matches.
func (db *DB) SelectOne(ctx context.Context, query string, scan func(Scanner) error, args ...interface{}) (found bool, err error) {
	table := tableOf(query)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	err = db.guard(func() error {
		start := time.Now()
		scanErr := scan(db.conn.QueryRowContext(ctx, query, args...))
		if errors.Is(scanErr, sql.ErrNoRows) {
			metrics.RecordDBQuery("select_one", table, time.Since(start), nil)
			return nil
		}
		metrics.RecordDBQuery("select_one", table, time.Since(start), scanErr)
		if scanErr != nil {
			return classify("select", table, scanErr)
		}
		found = true
		return nil
	})
	return found, err
}

// SelectMany runs query and calls scan once per row, in query order.
func (db *DB) SelectMany(ctx context.Context, query string, scan func(Scanner) error, args ...interface{}) error {
	table := tableOf(query)

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	return db.guard(func() error {
		start := time.Now()
		err := db.selectMany(ctx, query, scan, args)
		metrics.RecordDBQuery("select_many", table, time.Since(start), err)
		return classify("select", table, err)
	})
}

func (db *DB) selectMany(ctx context.Context, query string, scan func(Scanner) error, args []interface{}) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
	}
	return rows.Err()
}

// insertSQL builds a parameterized single-row INSERT.
func insertSQL(table string, columns []string, values int) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("insert into %s: no columns", table)
	}
	if len(columns) != values {
		return "", fmt.Errorf("insert into %s: %d columns but %d values", table, len(columns), values)
	}
	if err := checkIdentifiers(append([]string{table}, columns...)); err != nil {
		return "", err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders), nil
}

// checkIdentifiers accepts lower-case SQL identifiers only. Table and column
// names are interpolated, never bound.
func checkIdentifiers(names []string) error {
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("empty identifier")
		}
		for i, r := range name {
			ok := r == '_' || (r >= 'a' && r <= 'z') || (i > 0 && r >= '0' && r <= '9')
			if !ok {
				return fmt.Errorf("invalid identifier %q", name)
			}
		}
	}
	return nil
}

// tableOf extracts the first table after FROM for metric labels.
func tableOf(query string) string {
	fields := strings.Fields(query)
	for i := 0; i < len(fields)-1; i++ {
		if strings.EqualFold(fields[i], "FROM") {
			return strings.Trim(fields[i+1], "(),;")
		}
	}
	return "unknown"
}
