// Package history persists build reports so the serve endpoint can expose
// recent build activity.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sitebuild/internal/build"
)

// Entry is one recorded build.
type Entry struct {
	ID         int64     `json:"id"`
	BuildID    string    `json:"build_id"`
	Outcome    string    `json:"outcome"`
	Files      int       `json:"files"`
	Hash       string    `json:"hash,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// Store records build outcomes in SQLite.
// Use ":memory:" for an in-memory store, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		files INTEGER NOT NULL,
		hash TEXT,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_finished_at ON builds(finished_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordSuccess records a completed build from its report.
func (s *Store) RecordSuccess(ctx context.Context, report *build.Report) error {
	return s.insert(ctx, report.BuildID, "success", report.Files, report.Hash, "",
		report.Duration.Milliseconds(), report.FinishedAt)
}

// RecordFailure records a failed build attempt.
func (s *Store) RecordFailure(ctx context.Context, buildID string, buildErr error, duration time.Duration) error {
	msg := ""
	if buildErr != nil {
		msg = buildErr.Error()
	}
	return s.insert(ctx, buildID, "failed", 0, "", msg, duration.Milliseconds(), time.Now())
}

func (s *Store) insert(ctx context.Context, buildID, outcome string, files int, hash, errMsg string, durationMS int64, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, outcome, files, hash, error, duration_ms, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		buildID, outcome, files, hash, errMsg, durationMS, finishedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns the most recent builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, outcome, files, hash, error, duration_ms, finished_at FROM builds ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var finishedUnix int64
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Outcome, &e.Files, &e.Hash, &e.Error, &e.DurationMS, &finishedUnix); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		e.FinishedAt = time.Unix(finishedUnix, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
