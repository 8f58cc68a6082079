// Package telemetry persists run history for batch and sync passes in
// a local SQLite database.
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/irfanahme/cloud-document-search/internal/docsearch"
)

// RunKind distinguishes the two recorded run types.
type RunKind string

const (
	RunKindBatch RunKind = "batch"
	RunKindSync  RunKind = "sync"
)

// Run is one recorded ingestion run.
type Run struct {
	ID         int64
	Kind       RunKind
	Total      int
	Processed  int
	Failed     int
	Removed    int
	DurationMS int64
	StartedAt  time.Time
}

// RunStore records batch and sync summaries. It implements
// docsearch.RunRecorder.
type RunStore struct {
	db *sql.DB
}

// Open opens (or creates) the run-history database at path.
func Open(path string) (*RunStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create telemetry directory: %w", err)
	}

	// WAL mode for concurrent access, busy_timeout for lock contention.
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open telemetry database: %w", err)
	}

	// Single writer to prevent lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// DSN params may be ignored by modernc.org/sqlite; set pragmas
	// explicitly.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &RunStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingestion_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		total INTEGER NOT NULL DEFAULT 0,
		processed INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		removed INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ingestion_runs_started ON ingestion_runs(started_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create telemetry schema: %w", err)
	}
	return nil
}

// RecordBatch stores one batch run.
func (s *RunStore) RecordBatch(ctx context.Context, summary *docsearch.BatchSummary, took time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (kind, total, processed, failed, removed, duration_ms, started_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, string(RunKindBatch), summary.Total, summary.Processed, summary.Failed,
		took.Milliseconds(), time.Now().UTC().Add(-took).Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert batch run: %w", err)
	}
	return nil
}

// RecordSync stores one sync run. Added documents are counted as
// processed, stale removals under removed.
func (s *RunStore) RecordSync(ctx context.Context, summary *docsearch.SyncSummary, took time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (kind, total, processed, failed, removed, duration_ms, started_at)
		VALUES (?, ?, ?, 0, ?, ?, ?)
	`, string(RunKindSync), summary.StoreDocuments, summary.Added, summary.Removed,
		took.Milliseconds(), time.Now().UTC().Add(-took).Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *RunStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, total, processed, failed, removed, duration_ms, started_at
		FROM ingestion_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var kind, startedAt string
		if err := rows.Scan(&r.ID, &kind, &r.Total, &r.Processed, &r.Failed,
			&r.Removed, &r.DurationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Kind = RunKind(kind)
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = ts
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

var _ docsearch.RunRecorder = (*RunStore)(nil)
