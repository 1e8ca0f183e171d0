// Package store persists Bestia session snapshots. A store only ever sees
// the serialised snapshot; the engine stays unaware of how it is kept.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/bestia/internal/game"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DefaultSession = "default"

	opTimeout = 5 * time.Second
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Store loads and saves one session's snapshot. Load returns an empty
// snapshot when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (game.Snapshot, error)
	Save(ctx context.Context, s game.Snapshot) error
	Clear(ctx context.Context) error
	Close() error
}

// SessionLister is implemented by stores that keep several named sessions
// side by side.
type SessionLister interface {
	Sessions(ctx context.Context) ([]string, error)
}

var (
	_ SessionLister = (*SQLiteStore)(nil)
	_ SessionLister = (*PostgresStore)(nil)
)

// Options selects and configures a store.
type Options struct {
	Driver  string
	Path    string // file path or sqlite database path
	DSN     string // postgres connection string
	Session string
	Logger  *log.Logger
	Clock   quartz.Clock
}

func (o Options) withDefaults() Options {
	o.Driver = strings.ToLower(strings.TrimSpace(o.Driver))
	if o.Driver == "" {
		o.Driver = DriverFile
	}
	if strings.TrimSpace(o.Session) == "" {
		o.Session = DefaultSession
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Clock == nil {
		o.Clock = quartz.NewReal()
	}
	return o
}

// Drivers lists the supported driver names.
func Drivers() []string {
	return []string{DriverFile, DriverSQLite, DriverPostgres, DriverMemory}
}

// Open returns the store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.WithPrefix("store")

	var (
		s   Store
		err error
	)
	switch opts.Driver {
	case DriverFile:
		s, err = NewFileStore(opts.Path, logger)
	case DriverSQLite:
		s, err = NewSQLiteStore(ctx, opts.Path, opts.Session, opts.Clock, logger)
	case DriverPostgres:
		s, err = NewPostgresStore(ctx, opts.DSN, opts.Session, opts.Clock, logger)
	case DriverMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Driver, err)
	}

	logger.Debug("Store opened", "driver", opts.Driver, "session", opts.Session)
	return s, nil
}

// decode turns a persisted payload into a snapshot.
func decode(data []byte) (game.Snapshot, error) {
	s, err := game.DecodeSnapshot(data)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return s, nil
}

func encode(s game.Snapshot) ([]byte, error) {
	data, err := game.EncodeSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
