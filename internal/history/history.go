// Package history records one row per script execution in SQLite. Only
// metadata is kept: the source is stored as a SHA-256 digest and script
// state is never persisted.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/sqlite"

	"github.com/cryguy/jsrun/internal/core"
)

// timeLayout is fixed-width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one recorded execution.
type Run struct {
	SessionID  string    `json:"session_id"`
	Lang       string    `json:"lang"`
	SourceHash string    `json:"source_sha256"`
	Outcome    string    `json:"outcome"`
	DurationUS int64     `json:"duration_us"`
	LogCount   int       `json:"log_count"`
	Transport  string    `json:"transport"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRun describes an outcome for recording.
func NewRun(o *core.Outcome, lang core.Lang, src, transport string) *Run {
	sum := sha256.Sum256([]byte(src))
	return &Run{
		SessionID:  o.SessionID,
		Lang:       string(lang),
		SourceHash: hex.EncodeToString(sum[:]),
		Outcome:    o.Kind.String(),
		DurationUS: o.Duration.Microseconds(),
		LogCount:   len(o.Logs),
		Transport:  transport,
	}
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		_, _ = db.Exec("PRAGMA journal_mode=WAL")
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts r. CreatedAt is set when zero.
func (s *Store) Record(ctx context.Context, r *Run) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (session_id, lang, source_hash, outcome, duration_us, log_count, transport, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Lang, r.SourceHash, r.Outcome, r.DurationUS, r.LogCount, r.Transport,
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, lang, source_hash, outcome, duration_us, log_count, transport, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.SessionID, &r.Lang, &r.SourceHash, &r.Outcome,
			&r.DurationUS, &r.LogCount, &r.Transport, &created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Count returns the number of recorded runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
