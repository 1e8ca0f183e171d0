package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/bestia/internal/game"

	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is used when the sqlite store is given no path.
const DefaultSQLitePath = "bestia.db"

// SQLiteStore keeps snapshots in a SQLite database, one row per session.
type SQLiteStore struct {
	db      *sql.DB
	session string
	clock   quartz.Clock
	logger  *log.Logger
}

// NewSQLiteStore opens (and if needed creates) the database at dbPath.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(ctx context.Context, dbPath, session string, clock quartz.Clock, logger *log.Logger) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		dbPath = DefaultSQLitePath
	}
	if dbPath != ":memory:" {
		if parent := filepath.Dir(dbPath); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and serialises
	// writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, session: session, clock: clock, logger: logger}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (game.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var payload string
	err := s.db.QueryRowContext(ctx, `
SELECT snapshot_json
FROM bestia_sessions
WHERE session = ?
`, s.session).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, nil
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load session %q: %w", s.session, err)
	}
	return decode([]byte(payload))
}

func (s *SQLiteStore) Save(ctx context.Context, snap game.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	nowMs := s.clock.Now().UTC().UnixMilli()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO bestia_sessions (session, snapshot_json, hand_count, created_at_ms, saved_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (session) DO UPDATE
SET
    snapshot_json = excluded.snapshot_json,
    hand_count = excluded.hand_count,
    saved_at_ms = excluded.saved_at_ms
`, s.session, string(data), len(snap.Hands), nowMs, nowMs)
	if err != nil {
		return fmt.Errorf("save session %q: %w", s.session, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	s.logger.Debug("Snapshot saved", "session", s.session, "hands", len(snap.Hands))
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bestia_sessions WHERE session = ?`, s.session); err != nil {
		return fmt.Errorf("clear session %q: %w", s.session, err)
	}
	return nil
}

// Sessions lists stored session names, most recently saved first.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
SELECT session
FROM bestia_sessions
ORDER BY saved_at_ms DESC, session ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS bestia_sessions (
    session TEXT PRIMARY KEY,
    snapshot_json TEXT NOT NULL DEFAULT '{}',
    hand_count INTEGER NOT NULL DEFAULT 0,
    created_at_ms INTEGER NOT NULL,
    saved_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_bestia_sessions_saved_at ON bestia_sessions(saved_at_ms)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure sqlite schema: %w", err)
		}
	}
	return nil
}
