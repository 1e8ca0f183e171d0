package tui

import (
	"context"
	"testing"

	"github.com/lox/bestia/internal/money"
	"github.com/lox/bestia/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AddSaves(t *testing.T) {
	ctx := context.Background()
	s, st := newTestSession(t)

	res := s.Execute(ctx, "add Anna Maria")
	assert.False(t, res.Quit)
	assert.Contains(t, joined(res.Lines), "Anna Maria joins the game.")
	assert.Equal(t, 1, st.Saves())

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Anna Maria", snap.Players[0].Name)
}

func TestSession_Dispatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		input  string
		want   string
		failed bool
	}{
		{name: "unknown command", input: "deal", want: `Unknown command "deal"`, failed: true},
		{name: "usage", input: "rename anna", want: "Usage: rename <player> <new name>", failed: true},
		{name: "unknown player", input: "remove zed", want: `no player named "zed"`, failed: true},
		{name: "bad slot", input: "win 4 anna", want: "Usage: win <hand 1-3> <player>", failed: true},
		{name: "bad direction", input: "move anna left", want: "Usage: move <player> up|down", failed: true},
		{name: "bad stake", input: "lock abc", want: "invalid stake", failed: true},
		{name: "no round", input: "next", want: "No round is running."},
		{name: "reset needs confirm", input: "reset", want: "Usage: reset confirm", failed: true},
		{name: "case insensitive", input: "TOTALS", want: "Anna"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, st := newTestSession(t, "Anna", "Bruno")
			res := s.Execute(ctx, tt.input)
			assert.Contains(t, joined(res.Lines), tt.want)
			assert.Equal(t, tt.failed, res.Failed)
			assert.Zero(t, st.Saves())
		})
	}
}

func TestSession_EmptyAndQuit(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	assert.Equal(t, Result{}, s.Execute(ctx, "   "))
	assert.True(t, s.Execute(ctx, "quit").Quit)
	assert.True(t, s.Execute(ctx, "exit").Quit)
}

func TestSession_PlayRound(t *testing.T) {
	ctx := context.Background()
	s, st := newTestSession(t, "Anna", "Bruno", "Carla", "Dario")

	res := s.Execute(ctx, "start 0.30")
	assert.Contains(t, joined(res.Lines), "Anna deals for € 0.30")
	assert.True(t, s.Engine().Locked())

	res = s.Execute(ctx, "in anna bruno carla dario")
	assert.Equal(t, []string{"Anna plays.", "Bruno plays.", "Carla plays.", "Dario plays."}, res.Lines)

	s.Execute(ctx, "next")
	assert.Equal(t, "winners", s.Engine().Phase().String())

	s.Execute(ctx, "win 1 anna")
	s.Execute(ctx, "win 2 bruno")
	res = s.Execute(ctx, "win 3 carla")
	assert.Contains(t, joined(res.Lines), "All hands assigned")

	res = s.Execute(ctx, "settle")
	out := joined(res.Lines)
	assert.Contains(t, out, "Round settled")
	assert.Contains(t, out, "1 to pay")

	// start, next, settle
	assert.Equal(t, 3, st.Saves())
	snap, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Engine().Players(), snap.Players)
	assert.Equal(t, s.Engine().Pot(), snap.Pot)
	assert.Len(t, snap.Hands, 1)
}

func TestSession_NoContest(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, "Anna", "Bruno")

	s.Execute(ctx, "start 0.30")
	res := s.Execute(ctx, "next")
	assert.Contains(t, joined(res.Lines), "Nobody plays. Anna pays the stake")
	assert.Equal(t, money.Cents(60), s.Engine().Pot())

	res = s.Execute(ctx, "undo")
	assert.Equal(t, []string{"Undid no-contest-settle."}, res.Lines)
	assert.Equal(t, money.Cents(30), s.Engine().Pot())
	assert.True(t, s.Engine().Round().Active)
}

func TestSession_DefaultStake(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, "Anna", "Bruno")

	res := s.Execute(ctx, "start")
	assert.Contains(t, joined(res.Lines), "Lock a stake first")

	s = NewSession(s.Engine(), nil, s.Renderer(), quietLogger(), WithDefaultStake(" 0.50 "))
	s.Execute(ctx, "start")
	assert.Equal(t, money.Cents(50), s.Engine().Stake())
}

func TestSession_NotEnoughPlayers(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, "Anna", "Bruno")

	s.Execute(ctx, "start 0.30")
	s.Execute(ctx, "in anna")
	s.Execute(ctx, "next")
	require.Equal(t, "grouping", s.Engine().Phase().String())

	res := s.Execute(ctx, "next")
	assert.Contains(t, joined(res.Lines), "at least two players or groups must play")
	assert.Equal(t, "grouping", s.Engine().Phase().String())
}

func TestSession_Grouping(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, "Anna", "Bruno", "Carla", "Dario")

	s.Execute(ctx, "start 0.30")
	s.Execute(ctx, "in anna")
	s.Execute(ctx, "next")
	require.Equal(t, "grouping", s.Engine().Phase().String())

	res := s.Execute(ctx, "group bruno carla")
	assert.Contains(t, joined(res.Lines), "Group formed: Bruno/Carla")

	res = s.Execute(ctx, "group bruno dario")
	assert.Contains(t, joined(res.Lines), "Group declined")

	res = s.Execute(ctx, "ungroup carla")
	assert.Contains(t, joined(res.Lines), "Group dissolved: Bruno/Carla")

	res = s.Execute(ctx, "ungroup carla")
	assert.Contains(t, joined(res.Lines), "Carla is not in a group.")
}

func TestSession_RegistrationClosed(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, "Anna", "Bruno")

	s.Execute(ctx, "start 0.30")
	res := s.Execute(ctx, "add Carla")
	assert.Contains(t, joined(res.Lines), "Players can only join")
	assert.Len(t, s.Engine().Players(), 2)
}

func TestSession_Reset(t *testing.T) {
	ctx := context.Background()
	s, st := newTestSession(t)

	s.Execute(ctx, "add Anna")
	require.Equal(t, 1, st.Saves())

	res := s.Execute(ctx, "reset confirm")
	assert.Contains(t, joined(res.Lines), "Game reset.")
	assert.Empty(t, s.Engine().Players())

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Players)
	assert.Equal(t, 1, st.Saves(), "reset clears rather than saves")
}

// cancelAwareStore fails once the caller's context is done, like the SQL
// stores do.
type cancelAwareStore struct {
	*store.MemoryStore
}

func (s cancelAwareStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Clear(ctx)
}

func TestSession_ResetUsesCallerContext(t *testing.T) {
	mem := store.NewMemoryStore()
	s := NewSession(newTestEngine(t, "Anna"), cancelAwareStore{mem}, NewRenderer(money.NewFormatter("en", "€")), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.Execute(ctx, "reset confirm")
	assert.True(t, res.Failed)
	assert.Contains(t, joined(res.Lines), "clear saved game: context canceled")

	res = s.Execute(context.Background(), "reset confirm")
	assert.False(t, res.Failed)
	assert.Contains(t, joined(res.Lines), "Game reset.")
}

func TestSession_MultiWordNames(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, "Anna", "Mario")

	res := s.Execute(ctx, "add Mario Rossi")
	require.False(t, res.Failed)
	assert.Contains(t, joined(res.Lines), "Mario Rossi joins the game.")

	s.Execute(ctx, "add Luca De Rossi")
	res = s.Execute(ctx, "remove luca de rossi")
	require.False(t, res.Failed, joined(res.Lines))
	assert.Contains(t, joined(res.Lines), "Luca De Rossi leaves the game.")
	assert.Len(t, s.Engine().Players(), 3)

	res = s.Execute(ctx, "rename Mario Rossi Mario Bianchi")
	require.False(t, res.Failed, joined(res.Lines))
	assert.Contains(t, joined(res.Lines), "Mario Rossi is now Mario Bianchi.")

	s.Execute(ctx, "start 0.30")
	res = s.Execute(ctx, "in mario bianchi mario anna")
	require.False(t, res.Failed, joined(res.Lines))
	assert.Equal(t, []string{"Mario Bianchi plays.", "Mario plays.", "Anna plays."}, res.Lines)

	s.Execute(ctx, "next")
	require.Equal(t, "winners", s.Engine().Phase().String())

	res = s.Execute(ctx, "win 1 mario verdi")
	assert.True(t, res.Failed)
	assert.Contains(t, joined(res.Lines), `no player named "mario verdi"`)

	for _, line := range []string{"win 1 Mario Bianchi", "win 2 MARIO", "win 3 mario bianchi"} {
		res = s.Execute(ctx, line)
		require.False(t, res.Failed, "%s: %s", line, joined(res.Lines))
	}
	assert.Contains(t, joined(res.Lines), "All hands assigned")

	res = s.Execute(ctx, "settle")
	assert.Contains(t, joined(res.Lines), "Round settled")

	hand := s.Engine().Hands()[0]
	bianchi, ok := hand.Delta("g-1")
	require.True(t, ok)
	mario, ok := hand.Delta("mario")
	require.True(t, ok)
	assert.Greater(t, bianchi, mario, "two hands pay more than one")
}

func TestSession_Help(t *testing.T) {
	s, _ := newTestSession(t)

	res := s.Execute(context.Background(), "help")
	require.Len(t, res.Lines, len(commandOrder))
	assert.Contains(t, res.Lines[0], "add <name>")
	assert.Contains(t, res.Lines[len(res.Lines)-1], "quit")
}

func TestSession_Stats(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, "Anna", "Bruno")

	s.Execute(ctx, "start 0.30")
	s.Execute(ctx, "next")

	res := s.Execute(ctx, "stats")
	require.Len(t, res.Lines, 1)
	out := res.Lines[0]
	assert.Contains(t, out, "Passed")
	assert.Contains(t, out, "-€ 0.30")
	assert.False(t, res.Failed)
}
