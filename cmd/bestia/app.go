package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/bestia/internal/config"
	"github.com/lox/bestia/internal/game"
	"github.com/lox/bestia/internal/money"
	"github.com/lox/bestia/internal/randutil"
	"github.com/lox/bestia/internal/store"
	"github.com/lox/bestia/internal/tui"
	"github.com/muesli/termenv"
)

// app is everything a command needs: the resolved configuration, a logger,
// the open store and a session over the loaded game.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   store.Store
	session *tui.Session
	out     io.Writer
	closers []func() error
}

// loadConfig resolves the configuration: defaults, then the HCL file, the
// dotenv file, the environment and finally command-line overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(g.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.Session != "" {
		cfg.Storage.Session = g.Session
	}
	if g.Driver != "" {
		cfg.Storage.Driver = g.Driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to the configured log file, or to stderr. interactive
// sessions never log to the terminal the TUI is drawing on.
func newLogger(cfg *config.Config, interactive bool) (*log.Logger, func() error, error) {
	var (
		w       io.Writer = os.Stderr
		closeFn           = func() error { return nil }
	)
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, f.Close
	case interactive:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           cfg.LogLevel(),
		Prefix:          "bestia",
	})
	return logger, closeFn, nil
}

func (g *Globals) open(ctx context.Context, interactive bool) (*app, error) {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := newLogger(cfg, interactive)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, out: os.Stdout, closers: []func() error{closeLog}}

	opts := cfg.StoreOptions()
	opts.Logger = logger
	st, err := store.Open(ctx, opts)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	engine, err := a.loadEngine(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	render := tui.NewRenderer(money.NewFormatter(cfg.Game.Locale, cfg.Game.Currency))
	var sessionOpts []tui.SessionOption
	if cfg.HasDefaultStake() {
		sessionOpts = append(sessionOpts, tui.WithDefaultStake(cfg.Game.DefaultStake))
	}
	a.session = tui.NewSession(engine, st, render, logger, sessionOpts...)
	return a, nil
}

// loadEngine restores the saved game. A snapshot that cannot be read is
// reported and replaced by a fresh game.
func (a *app) loadEngine(ctx context.Context) (*game.Engine, error) {
	rng, seed, err := randutil.FromSeed(a.cfg.Game.Seed)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Random source ready", "seed", seed)

	opts := []game.Option{game.WithRand(rng), game.WithLogger(a.logger)}

	snap, err := a.store.Load(ctx)
	if err != nil {
		a.logger.Warn("Saved game is unreadable, starting fresh", "error", err)
		return game.New(opts...), nil
	}
	a.logger.Info("Game loaded",
		"session", a.cfg.Storage.Session,
		"players", len(snap.Players),
		"hands", len(snap.Hands))
	return game.FromSnapshot(snap, opts...), nil
}

// run executes command lines in order, printing their output. It stops at
// the first failure.
func (a *app) run(ctx context.Context, lines ...string) error {
	for _, line := range lines {
		res := a.session.Execute(ctx, line)
		for _, l := range res.Lines {
			fmt.Fprintln(a.out, l)
		}
		if res.Failed {
			return fmt.Errorf("%s: failed", strings.Fields(line)[0])
		}
	}
	return nil
}

// playRound runs a round script. Round selections are never saved, so a
// round left open by a declined step is reported as an error.
func (a *app) playRound(ctx context.Context, lines []string) error {
	if err := a.run(ctx, lines...); err != nil {
		return err
	}
	if a.session.Engine().Round().Active {
		return fmt.Errorf("round did not settle")
	}
	return nil
}

func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
