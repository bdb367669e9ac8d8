// Package history records training runs in a SQLite database so earlier
// vocabularies can be compared by corpus, size and stop reason.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one finished training run
type Run struct {
	ID           int64
	StartedAt    time.Time
	Duration     time.Duration
	Source       string
	Chars        int
	InitialVocab int
	FinalVocab   int
	MaxVocab     int
	Merges       int
	FinalSeqLen  int
	StopReason   string
	ModelID      string
}

// Store is a handle on the history database
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	source TEXT NOT NULL,
	chars INTEGER NOT NULL,
	initial_vocab INTEGER NOT NULL,
	final_vocab INTEGER NOT NULL,
	max_vocab INTEGER NOT NULL,
	merges INTEGER NOT NULL,
	final_seq_len INTEGER NOT NULL,
	stop_reason TEXT NOT NULL,
	model_id TEXT
)`

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure history: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run and returns its ID
func (s *Store) Record(ctx context.Context, r Run) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(started_at, duration_ms, source, chars, initial_vocab, final_vocab,
			max_vocab, merges, final_seq_len, stop_reason, model_id)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		r.StartedAt.UnixMilli(), r.Duration.Milliseconds(), r.Source, r.Chars, r.InitialVocab,
		r.FinalVocab, r.MaxVocab, r.Merges, r.FinalSeqLen, r.StopReason, nullString(r.ModelID))
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, source, chars, initial_vocab, final_vocab,
			max_vocab, merges, final_seq_len, stop_reason, model_id
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  int64
			durationMS int64
			modelID    sql.NullString
		)
		if err := rows.Scan(&r.ID, &startedAt, &durationMS, &r.Source, &r.Chars, &r.InitialVocab,
			&r.FinalVocab, &r.MaxVocab, &r.Merges, &r.FinalSeqLen, &r.StopReason, &modelID); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedAt)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.ModelID = modelID.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Count returns the number of recorded runs
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
