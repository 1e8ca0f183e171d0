package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/bestia/internal/game"
	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/statistics"
	"github.com/lox/bestia/internal/store"
)

// Session binds an engine to its store and turns typed commands into
// engine operations. State is saved after every command that can change
// the persisted snapshot.
type Session struct {
	engine       *game.Engine
	store        store.Store
	render       *Renderer
	logger       *log.Logger
	defaultStake string
}

// Result is the outcome of one command.
type Result struct {
	Lines  []string
	Quit   bool
	Failed bool // the command was rejected as malformed or failed outright
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDefaultStake answers the stake prompt when a round starts unlocked
// and no stake was typed.
func WithDefaultStake(raw string) SessionOption {
	return func(s *Session) { s.defaultStake = strings.TrimSpace(raw) }
}

// NewSession returns a session over engine. st may be nil for an unsaved
// session.
func NewSession(engine *game.Engine, st store.Store, render *Renderer, logger *log.Logger, opts ...SessionOption) *Session {
	s := &Session{
		engine: engine,
		store:  st,
		render: render,
		logger: logger.WithPrefix("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the session's engine.
func (s *Session) Engine() *game.Engine {
	return s.engine
}

// Renderer returns the session's renderer.
func (s *Session) Renderer() *Renderer {
	return s.render
}

var errUsage = errors.New("usage")

type command struct {
	usage  string
	help   string
	mutate bool
	run    func(s *Session, ctx context.Context, args []string) ([]string, error)
}

var commands map[string]command

var commandOrder = []string{
	"add", "remove", "rename", "move", "lock", "start", "in", "next", "back",
	"group", "ungroup", "candidates", "win", "clear", "settle", "undo",
	"status", "totals", "history", "stats", "transfers", "reset", "help", "quit",
}

func init() {
	commands = map[string]command{
		"add":        {usage: "add <name>", help: "register a player", mutate: true, run: (*Session).cmdAdd},
		"remove":     {usage: "remove <player>", help: "unregister a player", mutate: true, run: (*Session).cmdRemove},
		"rename":     {usage: "rename <player> <new name>", help: "rename a player", mutate: true, run: (*Session).cmdRename},
		"move":       {usage: "move <player> up|down", help: "change seating order", mutate: true, run: (*Session).cmdMove},
		"lock":       {usage: "lock <stake>", help: "fix the dealer stake", mutate: true, run: (*Session).cmdLock},
		"start":      {usage: "start [stake]", help: "start a round", mutate: true, run: (*Session).cmdStart},
		"in":         {usage: "in <player>...", help: "toggle players in or out of the round", run: (*Session).cmdIn},
		"next":       {usage: "next", help: "confirm the current step", mutate: true, run: (*Session).cmdNext},
		"back":       {usage: "back", help: "return to the previous step", run: (*Session).cmdBack},
		"group":      {usage: "group <player> <player>...", help: "seat players as one group", run: (*Session).cmdGroup},
		"ungroup":    {usage: "ungroup <player>", help: "dissolve a player's group", run: (*Session).cmdUngroup},
		"candidates": {usage: "candidates [size]", help: "list possible groups", run: (*Session).cmdCandidates},
		"win":        {usage: "win <hand 1-3> <player>", help: "award a hand", run: (*Session).cmdWin},
		"clear":      {usage: "clear <hand 1-3>", help: "clear a hand's winner", run: (*Session).cmdClear},
		"settle":     {usage: "settle", help: "settle the round", mutate: true, run: (*Session).cmdSettle},
		"undo":       {usage: "undo", help: "revert the last operation", mutate: true, run: (*Session).cmdUndo},
		"status":     {usage: "status", help: "show pot, stake and round", run: (*Session).cmdStatus},
		"totals":     {usage: "totals", help: "show player totals", run: (*Session).cmdTotals},
		"history":    {usage: "history", help: "show every settled hand", run: (*Session).cmdHistory},
		"stats":      {usage: "stats", help: "show per-player results", run: (*Session).cmdStats},
		"transfers":  {usage: "transfers", help: "show who pays whom", run: (*Session).cmdTransfers},
		"reset":      {usage: "reset confirm", help: "discard the whole game", run: (*Session).cmdReset},
		"help":       {usage: "help", help: "list commands", run: (*Session).cmdHelp},
	}
}

// Execute runs one command line.
func (s *Session) Execute(ctx context.Context, input string) Result {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Result{}
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	if name == "quit" || name == "exit" {
		return Result{Quit: true}
	}

	cmd, ok := commands[name]
	if !ok {
		return Result{Lines: []string{ErrorStyle.Render(fmt.Sprintf("Unknown command %q. Type 'help'.", name))}, Failed: true}
	}

	lines, err := cmd.run(s, ctx, args)
	if err != nil {
		if errors.Is(err, errUsage) {
			return Result{Lines: []string{WarningStyle.Render("Usage: " + cmd.usage)}, Failed: true}
		}
		s.logger.Debug("Command failed", "command", name, "error", err)
		return Result{Lines: append(lines, ErrorStyle.Render(err.Error())), Failed: true}
	}

	if cmd.mutate {
		if err := s.save(ctx); err != nil {
			return Result{Lines: append(lines, ErrorStyle.Render("Could not save: "+err.Error())), Failed: true}
		}
	}
	return Result{Lines: lines}
}

// Save persists the current state.
func (s *Session) Save(ctx context.Context) error {
	return s.save(ctx)
}

func (s *Session) save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.engine.Snapshot()); err != nil {
		s.logger.Warn("Failed to save session", "error", err)
		return err
	}
	return nil
}

// lookup resolves a player by id or by case-insensitive name.
func (s *Session) lookup(ref string) (ledger.Player, error) {
	if p, ok := s.engine.Player(ref); ok {
		return p, nil
	}
	for _, p := range s.engine.Players() {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return ledger.Player{}, fmt.Errorf("no player named %q", ref)
}

// matchPlayer resolves the longest run of leading args that names a
// player, leaving at least keep args over, so names may contain spaces.
func (s *Session) matchPlayer(args []string, keep int) (ledger.Player, []string, error) {
	for n := len(args) - keep; n > 0; n-- {
		if p, err := s.lookup(strings.Join(args[:n], " ")); err == nil {
			return p, args[n:], nil
		}
	}
	if len(args) == 0 {
		return ledger.Player{}, nil, errUsage
	}
	return ledger.Player{}, nil, fmt.Errorf("no player named %q", strings.Join(args[:max(len(args)-keep, 1)], " "))
}

// matchOne resolves args as a single player name.
func (s *Session) matchOne(args []string) (ledger.Player, error) {
	p, rest, err := s.matchPlayer(args, 0)
	if err != nil {
		return p, err
	}
	if len(rest) > 0 {
		return ledger.Player{}, fmt.Errorf("no player named %q", strings.Join(args, " "))
	}
	return p, nil
}

// matchPlayers resolves args into consecutive player names.
func (s *Session) matchPlayers(args []string) ([]ledger.Player, error) {
	var out []ledger.Player
	for len(args) > 0 {
		p, rest, err := s.matchPlayer(args, 0)
		if err != nil {
			return out, err
		}
		out = append(out, p)
		args = rest
	}
	return out, nil
}

func declined(what string) []string {
	return []string{WarningStyle.Render(what)}
}

func (s *Session) cmdAdd(ctx context.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	name := strings.Join(args, " ")
	p, ok := s.engine.AddPlayer(name)
	if !ok {
		return declined("Players can only join while no round is running and the pot is empty."), nil
	}
	return []string{SuccessStyle.Render(p.Name + " joins the game.")}, nil
}

func (s *Session) cmdRemove(ctx context.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	p, err := s.matchOne(args)
	if err != nil {
		return nil, err
	}
	if !s.engine.RemovePlayer(p.ID) {
		return declined("Players can only leave while registration is open."), nil
	}
	return []string{p.Name + " leaves the game."}, nil
}

func (s *Session) cmdRename(ctx context.Context, args []string) ([]string, error) {
	if len(args) < 2 {
		return nil, errUsage
	}
	p, rest, err := s.matchPlayer(args, 1)
	if err != nil {
		return nil, err
	}
	name := strings.Join(rest, " ")
	if !s.engine.RenamePlayer(p.ID, name) {
		return declined("Rename declined."), nil
	}
	return []string{fmt.Sprintf("%s is now %s.", p.Name, strings.TrimSpace(name))}, nil
}

func (s *Session) cmdMove(ctx context.Context, args []string) ([]string, error) {
	if len(args) < 2 {
		return nil, errUsage
	}
	p, err := s.matchOne(args[:len(args)-1])
	if err != nil {
		return nil, err
	}
	var delta int
	switch strings.ToLower(args[len(args)-1]) {
	case "up":
		delta = -1
	case "down":
		delta = 1
	default:
		return nil, errUsage
	}
	if !s.engine.MovePlayer(p.ID, delta) {
		return declined("Move declined."), nil
	}
	return []string{s.render.Totals(s.engine.Players(), s.dealerID())}, nil
}

func (s *Session) cmdLock(ctx context.Context, args []string) ([]string, error) {
	if len(args) != 1 {
		return nil, errUsage
	}
	ok, err := s.engine.LockStake(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return declined("The stake is already locked at " + s.render.Amount(s.engine.Stake()) + "."), nil
	}
	return []string{SuccessStyle.Render("Stake locked at " + s.render.Amount(s.engine.Stake()) + ".")}, nil
}

func (s *Session) cmdStart(ctx context.Context, args []string) ([]string, error) {
	var prompt game.StakePrompt
	switch {
	case len(args) == 1:
		raw := args[0]
		prompt = func() (string, bool) { return raw, true }
	case len(args) > 1:
		return nil, errUsage
	case s.defaultStake != "":
		prompt = func() (string, bool) { return s.defaultStake, true }
	}

	ok, err := s.engine.StartRound(prompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		switch {
		case len(s.engine.Players()) == 0:
			return declined("Add players first."), nil
		case !s.engine.Locked():
			return declined("Lock a stake first: start <stake> or lock <stake>."), nil
		case s.engine.Round().Active:
			return declined("A round is already running."), nil
		default:
			return declined("Nothing at stake: the pot and the stake are both zero."), nil
		}
	}

	r := s.engine.Round()
	dealer, _ := s.engine.Dealer()
	return []string{
		HeaderStyle.Render(" New round "),
		fmt.Sprintf("%s deals for %s. Who plays?", DealerStyle.Render(dealer.Name), PotStyle.Render(s.render.Amount(r.BasePot))),
		s.render.Round(s.engine),
	}, nil
}

func (s *Session) cmdIn(ctx context.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	players, err := s.matchPlayers(args)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, p := range players {
		if !s.engine.ToggleParticipant(p.ID) {
			lines = append(lines, WarningStyle.Render(p.Name+" cannot be toggled now."))
			continue
		}
		if s.engine.Round().HasParticipant(p.ID) {
			lines = append(lines, p.Name+" plays.")
		} else {
			lines = append(lines, p.Name+" stays out.")
		}
	}
	return lines, nil
}

func (s *Session) cmdNext(ctx context.Context, args []string) ([]string, error) {
	var (
		ok  bool
		err error
	)
	switch s.engine.Phase() {
	case game.PhaseParticipants:
		hands := len(s.engine.Hands())
		pot := s.engine.Pot()
		ok, err = s.engine.ConfirmParticipants()
		if err == nil && ok && !s.engine.Round().Active {
			if len(s.engine.Hands()) == hands {
				return []string{"Nobody plays and there is no stake: the round is discarded."}, nil
			}
			dealer := s.engine.Hands()[hands].DealerID
			return []string{fmt.Sprintf("Nobody plays. %s pays the stake; the pot goes from %s to %s.",
				s.engine.Name(dealer), s.render.Amount(pot), PotStyle.Render(s.render.Amount(s.engine.Pot())))}, nil
		}
	case game.PhaseGrouping:
		ok, err = s.engine.ConfirmGrouping()
	case game.PhaseWinners:
		return s.cmdSettle(ctx, args)
	default:
		return declined("No round is running."), nil
	}
	if errors.Is(err, game.ErrNotEnoughEntities) {
		return nil, fmt.Errorf("at least two players or groups must play")
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return declined("Cannot continue yet."), nil
	}
	return []string{PhaseStyle.Render(s.engine.Phase().String()), s.render.Round(s.engine)}, nil
}

func (s *Session) cmdBack(ctx context.Context, args []string) ([]string, error) {
	if !s.engine.Back() {
		return declined("Nothing to go back to."), nil
	}
	return []string{PhaseStyle.Render(s.engine.Phase().String()), s.render.Round(s.engine)}, nil
}

func (s *Session) cmdGroup(ctx context.Context, args []string) ([]string, error) {
	if len(args) < 2 {
		return nil, errUsage
	}
	players, err := s.matchPlayers(args)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	g, ok := s.engine.FormGroup(ids)
	if !ok {
		return declined("Group declined: members must be distinct players who stayed out and are not in another group."), nil
	}
	return []string{SuccessStyle.Render("Group formed: " + entityLabel(s.engine, g.ID))}, nil
}

func (s *Session) cmdUngroup(ctx context.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	p, err := s.matchOne(args)
	if err != nil {
		return nil, err
	}
	g, ok := s.engine.Round().GroupOf(p.ID)
	if !ok {
		return declined(p.Name + " is not in a group."), nil
	}
	label := entityLabel(s.engine, g.ID)
	if !s.engine.RemoveGroup(g.ID) {
		return declined("Groups can only be changed while grouping."), nil
	}
	return []string{"Group dissolved: " + label}, nil
}

func (s *Session) cmdCandidates(ctx context.Context, args []string) ([]string, error) {
	size := 2
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, errUsage
		}
		size = n
	}
	candidates := s.engine.GroupCandidates(size)
	if len(candidates) == 0 {
		return declined("No possible groups of that size."), nil
	}
	lines := make([]string, 0, len(candidates))
	for _, c := range candidates {
		switch {
		case c.Formed:
			lines = append(lines, SuccessStyle.Render(c.Label+" (formed)"))
		case c.Conflict:
			lines = append(lines, InfoStyle.Render(c.Label+" (unavailable)"))
		default:
			lines = append(lines, c.Label)
		}
	}
	return lines, nil
}

func parseSlot(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > game.Slots {
		return 0, errUsage
	}
	return n - 1, nil
}

func (s *Session) cmdWin(ctx context.Context, args []string) ([]string, error) {
	if len(args) < 2 {
		return nil, errUsage
	}
	slot, err := parseSlot(args[0])
	if err != nil {
		return nil, err
	}
	p, err := s.matchOne(args[1:])
	if err != nil {
		return nil, err
	}
	if !s.engine.SetWinner(slot, p.ID) {
		return declined(p.Name + " is not playing this round."), nil
	}
	lines := []string{s.render.Round(s.engine)}
	if s.engine.CanConfirmWinners() {
		lines = append(lines, InfoStyle.Render("All hands assigned: 'settle' to book the round."))
	}
	return lines, nil
}

func (s *Session) cmdClear(ctx context.Context, args []string) ([]string, error) {
	if len(args) != 1 {
		return nil, errUsage
	}
	slot, err := parseSlot(args[0])
	if err != nil {
		return nil, err
	}
	if !s.engine.ClearWinner(slot) {
		return declined("No winners are being chosen."), nil
	}
	return []string{s.render.Round(s.engine)}, nil
}

func (s *Session) cmdSettle(ctx context.Context, args []string) ([]string, error) {
	report, ok := s.engine.Settle()
	if !ok {
		return declined("Every hand needs a winner first."), nil
	}
	return []string{s.render.Report(report, s.engine.Name)}, nil
}

func (s *Session) cmdUndo(ctx context.Context, args []string) ([]string, error) {
	kind, ok := s.engine.LastOperation()
	if !ok || !s.engine.Undo() {
		return declined("Nothing to undo."), nil
	}
	return []string{"Undid " + string(kind) + "."}, nil
}

func (s *Session) cmdStatus(ctx context.Context, args []string) ([]string, error) {
	return []string{s.render.Status(s.engine)}, nil
}

func (s *Session) cmdTotals(ctx context.Context, args []string) ([]string, error) {
	return []string{s.render.Totals(s.engine.Players(), s.dealerID())}, nil
}

func (s *Session) cmdHistory(ctx context.Context, args []string) ([]string, error) {
	return []string{s.render.History(s.engine.Players(), s.engine.Hands())}, nil
}

func (s *Session) cmdStats(ctx context.Context, args []string) ([]string, error) {
	players := s.engine.Players()
	stats := statistics.ForPlayers(players, s.engine.Hands())
	for i, st := range stats {
		if err := st.Validate(players[i].Total); err != nil {
			s.logger.Warn("Statistics do not match the ledger", "error", err)
		}
	}
	return []string{s.render.Stats(stats)}, nil
}

func (s *Session) cmdTransfers(ctx context.Context, args []string) ([]string, error) {
	return []string{s.render.Transfers(s.engine.Players(), s.engine.Transfers(), s.engine.Name)}, nil
}

func (s *Session) cmdReset(ctx context.Context, args []string) ([]string, error) {
	if len(args) != 1 || args[0] != "confirm" {
		return nil, errUsage
	}
	s.engine.Reset()
	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear saved game: %w", err)
		}
	}
	return []string{WarningStyle.Render("Game reset.")}, nil
}

func (s *Session) cmdHelp(ctx context.Context, args []string) ([]string, error) {
	lines := make([]string, 0, len(commandOrder))
	for _, name := range commandOrder {
		if name == "quit" {
			lines = append(lines, fmt.Sprintf("  %-28s %s", "quit", "leave"))
			continue
		}
		c := commands[name]
		lines = append(lines, fmt.Sprintf("  %-28s %s", c.usage, InfoStyle.Render(c.help)))
	}
	return lines, nil
}

func (s *Session) dealerID() string {
	if d, ok := s.engine.Dealer(); ok {
		return d.ID
	}
	return ""
}
