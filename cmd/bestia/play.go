package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/bestia/internal/tui"
)

type PlayCmd struct{}

func (c *PlayCmd) Run(g *Globals) error {
	ctx, cancel := SetupSignalHandler()
	defer cancel()

	a, err := g.open(ctx, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("Failed to close", "error", err)
		}
	}()

	a.logger.Info("Starting interactive session", "session", a.cfg.Storage.Session)
	model := tui.NewModel(ctx, a.session, a.logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}

	// Round selections are not part of the snapshot; everything else was
	// saved as it happened.
	if err := a.session.Save(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("save on exit: %w", err)
	}
	a.logger.Info("Session ended")
	return nil
}
