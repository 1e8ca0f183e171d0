package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/lox/bestia/internal/game"
	"github.com/lox/bestia/internal/store"
)

// withApp opens the app, runs fn and closes everything afterwards.
func withApp(g *Globals, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := SetupSignalHandler()
	defer cancel()

	a, err := g.open(ctx, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("Failed to close", "error", err)
		}
	}()
	return fn(ctx, a)
}

// script runs fixed command lines against the saved game.
func script(g *Globals, lines ...string) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		return a.run(ctx, lines...)
	})
}

type StatusCmd struct{}

func (c *StatusCmd) Run(g *Globals) error { return script(g, "status") }

type TotalsCmd struct{}

func (c *TotalsCmd) Run(g *Globals) error { return script(g, "totals") }

type HistoryCmd struct{}

func (c *HistoryCmd) Run(g *Globals) error { return script(g, "history") }

type StatsCmd struct{}

func (c *StatsCmd) Run(g *Globals) error { return script(g, "stats") }

type TransfersCmd struct{}

func (c *TransfersCmd) Run(g *Globals) error { return script(g, "transfers") }

type UndoCmd struct{}

func (c *UndoCmd) Run(g *Globals) error { return script(g, "undo") }

type LockCmd struct {
	Stake string `arg:"" help:"Stake paid by the dealer when nobody plays, e.g. 0.30"`
}

func (c *LockCmd) Run(g *Globals) error { return script(g, "lock "+c.Stake) }

type ResetCmd struct {
	Yes bool `short:"y" help:"Confirm discarding every player and hand"`
}

func (c *ResetCmd) Run(g *Globals) error {
	if !c.Yes {
		return fmt.Errorf("refusing to reset without --yes")
	}
	return script(g, "reset confirm")
}

type PlayerCmd struct {
	Add    PlayerAddCmd    `cmd:"" help:"Register a player"`
	Remove PlayerRemoveCmd `cmd:"" help:"Unregister a player"`
	Rename PlayerRenameCmd `cmd:"" help:"Rename a player"`
	Move   PlayerMoveCmd   `cmd:"" help:"Move a player up or down the seating order"`
}

type PlayerAddCmd struct {
	Names []string `arg:"" help:"Names of the players to add"`
}

func (c *PlayerAddCmd) Run(g *Globals) error {
	lines := make([]string, 0, len(c.Names))
	for _, name := range c.Names {
		lines = append(lines, "add "+name)
	}
	return script(g, lines...)
}

type PlayerRemoveCmd struct {
	Player string `arg:"" help:"Player name or id"`
}

func (c *PlayerRemoveCmd) Run(g *Globals) error { return script(g, "remove "+c.Player) }

type PlayerRenameCmd struct {
	Player string `arg:"" help:"Player name or id"`
	Name   string `arg:"" help:"New name"`
}

func (c *PlayerRenameCmd) Run(g *Globals) error {
	return script(g, "rename "+c.Player+" "+c.Name)
}

type PlayerMoveCmd struct {
	Player    string `arg:"" help:"Player name or id"`
	Direction string `arg:"" enum:"up,down" help:"up or down"`
}

func (c *PlayerMoveCmd) Run(g *Globals) error {
	return script(g, "move "+c.Player+" "+c.Direction)
}

type RoundCmd struct {
	Stake   string   `help:"Stake to lock if none is locked yet"`
	In      []string `help:"Players who play alone (comma separated)"`
	Group   []string `sep:"none" help:"Comma separated members of one group; repeat for more groups"`
	Winners []string `help:"Winner of each of the three hands, in order (comma separated)"`
}

func (c *RoundCmd) Run(g *Globals) error {
	lines, err := c.script()
	if err != nil {
		return err
	}
	return withApp(g, func(ctx context.Context, a *app) error {
		return a.playRound(ctx, lines)
	})
}

// script turns the flags into session commands. With nobody in the
// round it is passed; otherwise the winners settle it.
func (c *RoundCmd) script() ([]string, error) {
	start := "start"
	if c.Stake != "" {
		start += " " + c.Stake
	}
	lines := []string{start}

	if len(c.In) == 0 {
		if len(c.Group) > 0 || len(c.Winners) > 0 {
			return nil, fmt.Errorf("--group and --winners need players given with --in")
		}
		return append(lines, "next"), nil
	}
	if len(c.Winners) != game.Slots {
		return nil, fmt.Errorf("--winners needs exactly %d names, got %d", game.Slots, len(c.Winners))
	}

	lines = append(lines, "in "+strings.Join(c.In, " "), "next")
	if len(c.Group) > 0 {
		for _, g := range c.Group {
			members := strings.Split(g, ",")
			if len(members) < 2 {
				return nil, fmt.Errorf("group %q needs at least two members", g)
			}
			lines = append(lines, "group "+strings.Join(members, " "))
		}
		lines = append(lines, "next")
	}
	for slot, w := range c.Winners {
		lines = append(lines, fmt.Sprintf("win %d %s", slot+1, w))
	}
	return append(lines, "settle"), nil
}

type SessionsCmd struct{}

func (c *SessionsCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		lister, ok := a.store.(store.SessionLister)
		if !ok {
			return fmt.Errorf("the %s driver keeps a single session", a.cfg.Storage.Driver)
		}
		sessions, err := lister.Sessions(ctx)
		if err != nil {
			return err
		}
		for _, name := range sessions {
			marker := " "
			if name == a.cfg.Storage.Session {
				marker = "*"
			}
			fmt.Fprintf(a.out, "%s %s\n", marker, name)
		}
		return nil
	})
}
