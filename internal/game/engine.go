package game

import (
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/bestia/internal/gameid"
	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/money"
	"github.com/lox/bestia/internal/randutil"
	"github.com/lox/bestia/internal/split"
	"github.com/lox/bestia/internal/transfer"
)

// Engine owns one Bestia session. It is single-threaded: callers must not
// use it from more than one goroutine at a time. Every command either
// commits completely or leaves the engine untouched.
type Engine struct {
	ledger      *ledger.Ledger
	pot         money.Amount
	stake       money.Amount
	locked      bool
	dealerIndex int
	round       Round
	history     *History

	alloc  *split.Allocator
	ids    gameid.Generator
	clock  quartz.Clock
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the source for fair-split tie-breaks.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.alloc = split.New(rng) }
}

// WithClock sets the clock used to timestamp settled hands.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithIDs sets the generator for player and group ids.
func WithIDs(ids gameid.Generator) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithHistoryLimit bounds the undo stack.
func WithHistoryLimit(limit int) Option {
	return func(e *Engine) { e.history = NewHistory(limit) }
}

// New returns an engine with no players, no stake and an empty pot.
func New(opts ...Option) *Engine {
	e := &Engine{
		ledger:  ledger.New(nil, nil),
		round:   idleRound(),
		history: NewHistory(DefaultHistoryLimit),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.alloc == nil {
		rng, _, err := randutil.FromSeed(0)
		if err != nil {
			rng = randutil.New(int64(quartz.NewReal().Now().UnixNano()))
		}
		e.alloc = split.New(rng)
	}
	if e.ids == nil {
		e.ids = gameid.New(nil)
	}
	if e.clock == nil {
		e.clock = quartz.NewReal()
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return e
}

// Players returns the roster in seating order with current totals.
func (e *Engine) Players() []ledger.Player {
	return e.ledger.Players()
}

// Player looks up a player by id.
func (e *Engine) Player(id string) (ledger.Player, bool) {
	return e.ledger.Player(id)
}

// PlayerByName finds the first player with the given name.
func (e *Engine) PlayerByName(name string) (ledger.Player, bool) {
	for _, p := range e.ledger.Players() {
		if p.Name == name {
			return p, true
		}
	}
	return ledger.Player{}, false
}

// Name returns a player's display name.
func (e *Engine) Name(id string) string {
	return e.ledger.Name(id)
}

// Hands returns the settled hand history, oldest first.
func (e *Engine) Hands() []ledger.HandRecord {
	return e.ledger.Hands()
}

// Pot returns the current pot.
func (e *Engine) Pot() money.Amount {
	return e.pot
}

// Stake returns the dealer stake. It is zero until locked.
func (e *Engine) Stake() money.Amount {
	return e.stake
}

// Locked reports whether the stake has been locked.
func (e *Engine) Locked() bool {
	return e.locked
}

// DealerIndex returns the raw dealer pointer.
func (e *Engine) DealerIndex() int {
	return e.dealerIndex
}

// Dealer returns the current dealer, players[dealerIndex % len(players)].
func (e *Engine) Dealer() (ledger.Player, bool) {
	n := e.ledger.Len()
	if n == 0 {
		return ledger.Player{}, false
	}
	return e.ledger.At(e.dealerIndex % n), true
}

// Round returns a copy of the live round.
func (e *Engine) Round() Round {
	return e.round.clone()
}

// Phase returns the live round's phase.
func (e *Engine) Phase() Phase {
	return e.round.Phase
}

// RegistrationOpen reports whether players may be added, removed, renamed
// or reordered: no round is running and the pot is empty.
func (e *Engine) RegistrationOpen() bool {
	return !e.round.Active && e.pot.IsZero()
}

// Entities lists the competitors among the current participants.
func (e *Engine) Entities() []Entity {
	return e.round.Entities(e.ledger.Name)
}

// EntityOf resolves a player to their entity id in the live round.
func (e *Engine) EntityOf(playerID string) string {
	return e.round.EntityOf(playerID)
}

// CanConfirmWinners reports whether Settle would be accepted.
func (e *Engine) CanConfirmWinners() bool {
	return e.round.Active && e.round.Phase == PhaseWinners && e.round.WinnersComplete()
}

// ChoiceOrder returns the players in the order they are asked to opt in:
// starting after the dealer and ending with the dealer.
func (e *Engine) ChoiceOrder() []ledger.Player {
	players := e.ledger.Players()
	n := len(players)
	if n == 0 {
		return nil
	}
	start := (e.dealerIndex + 1) % n
	out := make([]ledger.Player, 0, n)
	for k := 0; k < n; k++ {
		out = append(out, players[(start+k)%n])
	}
	return out
}

// NonParticipants returns the players not currently in the round, in
// seating order.
func (e *Engine) NonParticipants() []ledger.Player {
	var out []ledger.Player
	for _, p := range e.ledger.Players() {
		if !e.round.HasParticipant(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// Rejoinable returns the players who may still be toggled back in alone
// during grouping.
func (e *Engine) Rejoinable() []ledger.Player {
	if e.round.Phase != PhaseGrouping {
		return nil
	}
	var out []ledger.Player
	for _, id := range e.round.Outsiders {
		if _, grouped := e.round.GroupOf(id); grouped {
			continue
		}
		if p, ok := e.ledger.Player(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// HistoryLen returns the number of undoable operations.
func (e *Engine) HistoryLen() int {
	return e.history.Len()
}

// LastOperation returns the kind of operation Undo would revert.
func (e *Engine) LastOperation() (RecordKind, bool) {
	r, ok := e.history.Peek()
	if !ok {
		return "", false
	}
	return r.Kind(), true
}

// Transfers computes the payments that would settle every player's total.
func (e *Engine) Transfers() []transfer.Transfer {
	return transfer.Compute(e.ledger.Players())
}

// Reset discards every player, hand, stake and the undo history.
func (e *Engine) Reset() {
	e.ledger = ledger.New(nil, nil)
	e.pot = 0
	e.stake = 0
	e.locked = false
	e.dealerIndex = 0
	e.round = idleRound()
	e.history.Clear()
	e.logger.Info("Game reset")
}

func (e *Engine) rotateDealer() {
	if n := e.ledger.Len(); n > 0 {
		e.dealerIndex = (e.dealerIndex + 1) % n
	}
}
