package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates) the history database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deployments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		target TEXT NOT NULL,
		kind TEXT NOT NULL,
		success INTEGER NOT NULL,
		message TEXT NOT NULL,
		changes INTEGER NOT NULL,
		commit_hash TEXT,
		blog_url TEXT,
		counts TEXT,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_deployments_target ON deployments(target);
	CREATE INDEX IF NOT EXISTS idx_deployments_started ON deployments(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a run record.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var countsJSON []byte
	if len(rec.Counts) > 0 {
		var err error
		if countsJSON, err = json.Marshal(rec.Counts); err != nil {
			return fmt.Errorf("marshal counts: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deployments (run_id, target, kind, success, message, changes, commit_hash, blog_url, counts, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Target, rec.Kind, rec.Success, rec.Message, rec.Changes,
		rec.Commit, rec.BlogURL, string(countsJSON), rec.StartedAt.UnixMilli(), rec.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert deployment: %w", err)
	}
	return nil
}

// Recent lists the newest records.
func (s *SQLiteStore) Recent(ctx context.Context, target string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	query := selectColumns + " FROM deployments"
	args := []any{}
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	query += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deployments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Get returns a single record by run ID.
func (s *SQLiteStore) Get(ctx context.Context, runID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+" FROM deployments WHERE run_id = ?", runID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ferrors.NotFoundError("deployment not found").
			WithContext("run_id", runID).
			Build()
	}
	return rec, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

const selectColumns = "SELECT run_id, target, kind, success, message, changes, commit_hash, blog_url, counts, started_at, duration_ms"

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec       Record
		commit    sql.NullString
		blogURL   sql.NullString
		counts    sql.NullString
		startedMS int64
	)
	err := row.Scan(&rec.RunID, &rec.Target, &rec.Kind, &rec.Success, &rec.Message, &rec.Changes,
		&commit, &blogURL, &counts, &startedMS, &rec.DurationMS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan deployment: %w", err)
	}
	rec.Commit = commit.String
	rec.BlogURL = blogURL.String
	rec.StartedAt = time.UnixMilli(startedMS)
	if counts.String != "" {
		if err := json.Unmarshal([]byte(counts.String), &rec.Counts); err != nil {
			return Record{}, fmt.Errorf("unmarshal counts: %w", err)
		}
	}
	return rec, nil
}
