package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/bestia/internal/gameid"
	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/money"
	"github.com/lox/bestia/internal/randutil"
	"github.com/stretchr/testify/require"
)

// testGameOption configures test engine creation
type testGameOption func(*testGameBuilder)

type testGameBuilder struct {
	seed        int64
	names       []string
	pot         money.Amount
	stake       money.Amount
	locked      bool
	dealerIndex int
	extra       []Option
}

func withSeed(seed int64) testGameOption {
	return func(b *testGameBuilder) { b.seed = seed }
}

func withPlayers(names ...string) testGameOption {
	return func(b *testGameBuilder) { b.names = names }
}

func withPot(pot money.Amount) testGameOption {
	return func(b *testGameBuilder) { b.pot = pot }
}

func withLockedStake(stake money.Amount) testGameOption {
	return func(b *testGameBuilder) {
		b.stake = stake
		b.locked = true
	}
}

func withDealer(index int) testGameOption {
	return func(b *testGameBuilder) { b.dealerIndex = index }
}

func withEngineOptions(opts ...Option) testGameOption {
	return func(b *testGameBuilder) { b.extra = append(b.extra, opts...) }
}

// newTestEngine builds a deterministic engine. Players get ids equal to
// their lower-cased initial ("A" -> "a"); groups draw ids "g-1", "g-2", ...
func newTestEngine(t *testing.T, opts ...testGameOption) *Engine {
	t.Helper()

	b := &testGameBuilder{
		seed:  42,
		names: []string{"A", "B", "C", "D"},
	}
	for _, opt := range opts {
		opt(b)
	}

	players := make([]ledger.Player, len(b.names))
	for i, name := range b.names {
		players[i] = ledger.Player{ID: idFor(name), Name: name}
	}

	engineOpts := []Option{
		WithRand(randutil.New(b.seed)),
		WithClock(quartz.NewMock(t)),
		WithIDs(gameid.NewSequence("g")),
		WithLogger(log.NewWithOptions(io.Discard, log.Options{Level: log.DebugLevel})),
	}
	engineOpts = append(engineOpts, b.extra...)

	return FromSnapshot(Snapshot{
		Players:     players,
		Pot:         b.pot,
		Locked:      b.locked,
		GameStake:   b.stake,
		DealerIndex: b.dealerIndex,
	}, engineOpts...)
}

func idFor(name string) string {
	if name == "" {
		return ""
	}
	return string(name[0] + ('a' - 'A'))
}

// playRound drives a contested round from start to the winner phase.
// participants are toggled in order; each entry of groups is formed during
// grouping.
func playRound(t *testing.T, e *Engine, participants []string, groups ...[]string) {
	t.Helper()

	ok, err := e.StartRound(nil)
	require.NoError(t, err)
	require.True(t, ok, "round should start")

	for _, id := range participants {
		require.True(t, e.ToggleParticipant(id), "toggle %s", id)
	}
	ok, err = e.ConfirmParticipants()
	require.NoError(t, err)
	require.True(t, ok)

	if e.Phase() == PhaseGrouping {
		for _, members := range groups {
			_, formed := e.FormGroup(members)
			require.True(t, formed, "form group %v", members)
		}
		ok, err = e.ConfirmGrouping()
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, PhaseWinners, e.Phase())
}

func setWinners(t *testing.T, e *Engine, winners ...string) {
	t.Helper()
	require.Len(t, winners, Slots)
	for slot, id := range winners {
		require.True(t, e.SetWinner(slot, id), "slot %d -> %s", slot, id)
	}
}

func totals(e *Engine) map[string]money.Amount {
	out := make(map[string]money.Amount)
	for _, p := range e.Players() {
		out[p.ID] = p.Total
	}
	return out
}
