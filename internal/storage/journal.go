/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "scriptformatter/internal/log"
	"scriptformatter/internal/version"

	// Shared journals live in PostgreSQL.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	JournalFileName = "journal.sqlite"

	// journalSchema is bumped together with a new step in migrate.
	journalSchema = 2

	// runTimeLayout is fixed width so stored timestamps sort as text.
	runTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrRunNotFound is returned by Get for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Run is one reformatting pass as recorded in the journal.
type Run struct {
	ID            uuid.UUID
	Document      string
	StartedAt     time.Time
	Duration      time.Duration
	Styles        string
	Visited       int
	Skipped       int
	Removed       int
	Styled        int
	Inserted      int
	StoppedAtLast bool
	// Snapshot is the document text before the pass.
	Snapshot string
	// Err holds the error that aborted the pass, if any.
	Err string
}

// Journal is a history of reformatting passes backed by SQLite or PostgreSQL.
type Journal struct {
	db      *sql.DB
	dialect dialect
	where   string
	log     *slog.Logger
}

// JournalPath returns the default SQLite journal location for a document.
func JournalPath(docPath string) string {
	return filepath.Join(WorkDir(docPath), JournalFileName)
}

// OpenJournal opens the journal named by dsn, creating its schema as needed.
//
// An empty dsn selects the SQLite file next to docPath. A postgres:// or
// postgresql:// URL selects PostgreSQL; password, when not empty and the URL
// carries none, is filled in. Anything else is taken as a SQLite file path.
func OpenJournal(ctx context.Context, dsn, password, docPath string) (*Journal, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "journal_open")
	j := &Journal{log: l}

	switch {
	case isPostgresDSN(dsn):
		u, err := url.Parse(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse journal dsn: %w", err)
		}
		if u.User != nil && password != "" {
			if _, set := u.User.Password(); !set {
				u.User = url.UserPassword(u.User.Username(), password)
			}
		}
		db, err := sql.Open("pgx", u.String())
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		j.db, j.dialect, j.where = db, dialectPostgres, u.Redacted()
	default:
		path := dsn
		if path == "" {
			if strings.TrimSpace(docPath) == "" {
				return nil, errors.New("journal needs a dsn or a document path")
			}
			path = JournalPath(docPath)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
		db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path)))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		j.db, j.dialect, j.where = db, dialectSQLite, path
	}
	j.log = l.With(slog.String("journal", j.where))

	if err := j.init(ctx); err != nil {
		_ = j.db.Close()
		j.log.Error("journal init failed", slog.Any("err", err))
		return nil, err
	}
	j.log.Debug("journal ready")
	return j, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Where describes the journal location with any password removed.
func (j *Journal) Where() string { return j.where }

// Close releases the database handle.
func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) init(ctx context.Context) error {
	if err := j.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping journal: %w", err)
	}
	if j.dialect == dialectSQLite {
		if _, err := j.db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enable WAL: %w", err)
		}
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS journal_version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id              TEXT PRIMARY KEY,
			document        TEXT NOT NULL,
			started_at      TEXT NOT NULL,
			duration_ms     BIGINT NOT NULL DEFAULT 0,
			styles          TEXT NOT NULL DEFAULT '',
			visited         INTEGER NOT NULL DEFAULT 0,
			skipped         INTEGER NOT NULL DEFAULT 0,
			removed         INTEGER NOT NULL DEFAULT 0,
			styled          INTEGER NOT NULL DEFAULT 0,
			inserted        INTEGER NOT NULL DEFAULT 0,
			stopped_at_last INTEGER NOT NULL DEFAULT 0,
			snapshot        TEXT NOT NULL DEFAULT '',
			err             TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, q := range ddl {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := j.db.QueryRowContext(ctx, `SELECT schema FROM journal_version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cur = 1
		if _, err := j.exec(ctx, `INSERT INTO journal_version (id, schema, app, created_at, updated_at) VALUES (1, ?, ?, ?, ?)`,
			cur, version.String(), now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := j.exec(ctx, `UPDATE journal_version SET app=?, updated_at=? WHERE id=1`, version.String(), now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return j.migrate(ctx, cur)
}

// migrate applies schema steps after cur. A journal newer than this build is left alone.
func (j *Journal) migrate(ctx context.Context, cur int) error {
	for cur < journalSchema {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{`CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document, started_at)`}
		}
		tx, err := j.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, j.rebind(`UPDATE journal_version SET schema=?, updated_at=? WHERE id=1`),
			next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		j.log.Info("journal migrated", slog.Int("schema", next))
		cur = next
	}
	return nil
}

// SchemaVersion returns the schema version stored in the journal.
func (j *Journal) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := j.db.QueryRowContext(ctx, `SELECT schema FROM journal_version WHERE id=1`).Scan(&v)
	return v, err
}

// rebind turns ? placeholders into $n for PostgreSQL. Queries here never carry
// a literal question mark.
func (j *Journal) rebind(q string) string {
	if j.dialect != dialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (j *Journal) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return j.db.ExecContext(ctx, j.rebind(q), args...)
}

// language=SQL
const insertRunSQL = `INSERT INTO runs
	(id, document, started_at, duration_ms, styles, visited, skipped, removed, styled, inserted, stopped_at_last, snapshot, err)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// language=SQL
const runColumns = `id, document, started_at, duration_ms, styles, visited, skipped, removed, styled, inserted, stopped_at_last, snapshot, err`

// language=SQL
const pruneRunsSQL = `DELETE FROM runs WHERE document = ? AND id NOT IN (
	SELECT id FROM runs WHERE document = ? ORDER BY started_at DESC LIMIT ?
)`

// Record stores run. A zero ID or StartedAt is filled in; the stored run is returned.
func (j *Journal) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()
	stopped := 0
	if run.StoppedAtLast {
		stopped = 1
	}
	_, err := j.exec(ctx, insertRunSQL,
		run.ID.String(), run.Document, run.StartedAt.Format(runTimeLayout), run.Duration.Milliseconds(),
		run.Styles, run.Visited, run.Skipped, run.Removed, run.Styled, run.Inserted, stopped, run.Snapshot, run.Err)
	if err != nil {
		return run, fmt.Errorf("record run: %w", err)
	}
	j.log.Debug("run recorded", slog.String("run", run.ID.String()), slog.String("doc", run.Document))
	return run, nil
}

// List returns up to limit runs, newest first. An empty document lists all documents.
func (j *Journal) List(ctx context.Context, document string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if document != "" {
		q += ` WHERE document = ?`
		args = append(args, document)
	}
	q += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, j.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Latest returns the newest run for document. ok is false when there is none.
func (j *Journal) Latest(ctx context.Context, document string) (run Run, ok bool, err error) {
	runs, err := j.List(ctx, document, 1)
	if err != nil || len(runs) == 0 {
		return Run{}, false, err
	}
	return runs[0], true, nil
}

// Get returns the run with the given id.
func (j *Journal) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	row := j.db.QueryRowContext(ctx, j.rebind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id.String())
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// Prune keeps the newest keep runs of document and deletes the rest. keep <= 0 is a no-op.
func (j *Journal) Prune(ctx context.Context, document string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := j.exec(ctx, pruneRunsSQL, document, document, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r       Run
		id, ts  string
		ms      int64
		stopped int
	)
	if err := s.Scan(&id, &r.Document, &ts, &ms, &r.Styles, &r.Visited, &r.Skipped, &r.Removed,
		&r.Styled, &r.Inserted, &stopped, &r.Snapshot, &r.Err); err != nil {
		return Run{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("run id %q: %w", id, err)
	}
	r.ID = parsed
	r.StartedAt, _ = time.Parse(runTimeLayout, ts)
	r.Duration = time.Duration(ms) * time.Millisecond
	r.StoppedAtLast = stopped != 0
	return r, nil
}
