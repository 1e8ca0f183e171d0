package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lib/pq"
	"github.com/lox/bestia/internal/game"
)

// PostgresStore keeps snapshots in PostgreSQL, one row per session.
type PostgresStore struct {
	db      *sql.DB
	session string
	clock   quartz.Clock
	logger  *log.Logger
}

// NewPostgresStore connects to dsn and creates the sessions table when it
// is missing.
func NewPostgresStore(ctx context.Context, dsn, session string, clock quartz.Clock, logger *log.Logger) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, describePQ(err)
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS bestia_sessions (
    session TEXT PRIMARY KEY,
    snapshot_json JSONB NOT NULL DEFAULT '{}'::jsonb,
    hand_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL,
    saved_at TIMESTAMPTZ NOT NULL
)`); err != nil && !isDuplicateTable(err) {
		_ = db.Close()
		return nil, fmt.Errorf("ensure postgres schema: %w", describePQ(err))
	}

	return &PostgresStore{db: db, session: session, clock: clock, logger: logger}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (game.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var payload []byte
	err := s.db.QueryRowContext(ctx, `
SELECT snapshot_json
FROM bestia_sessions
WHERE session = $1
`, s.session).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, nil
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load session %q: %w", s.session, describePQ(err))
	}
	return decode(payload)
}

func (s *PostgresStore) Save(ctx context.Context, snap game.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	now := s.clock.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", describePQ(err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO bestia_sessions (session, snapshot_json, hand_count, created_at, saved_at)
VALUES ($1, $2::jsonb, $3, $4, $4)
ON CONFLICT (session) DO UPDATE
SET
    snapshot_json = EXCLUDED.snapshot_json,
    hand_count = EXCLUDED.hand_count,
    saved_at = EXCLUDED.saved_at
`, s.session, string(data), len(snap.Hands), now)
	if err != nil {
		return fmt.Errorf("save session %q: %w", s.session, describePQ(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", describePQ(err))
	}

	s.logger.Debug("Snapshot saved", "session", s.session, "hands", len(snap.Hands))
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bestia_sessions WHERE session = $1`, s.session); err != nil {
		return fmt.Errorf("clear session %q: %w", s.session, describePQ(err))
	}
	return nil
}

// Sessions lists stored session names, most recently saved first.
func (s *PostgresStore) Sessions(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT session FROM bestia_sessions ORDER BY saved_at DESC, session ASC`)
	if err != nil {
		return nil, describePQ(err)
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

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Two connections racing on CREATE TABLE IF NOT EXISTS can still collide
// on the catalog.
func isDuplicateTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "42P07" || pqErr.Code == "23505"
	}
	return false
}

// describePQ adds the server's SQLSTATE to driver errors.
func describePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (SQLSTATE %s): %w", pqErr.Message, pqErr.Code, err)
	}
	return err
}
