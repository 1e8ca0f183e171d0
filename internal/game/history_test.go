package game

import (
	"testing"

	"github.com/lox/bestia/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineState struct {
	snapshot Snapshot
	round    Round
}

func captureState(e *Engine) engineState {
	return engineState{snapshot: e.Snapshot(), round: e.Round()}
}

func TestUndo_RestoresPriorState(t *testing.T) {
	tests := []struct {
		name  string
		opts  []testGameOption
		setup func(t *testing.T, e *Engine)
		op    func(t *testing.T, e *Engine)
		kind  RecordKind
	}{
		{
			name: "add player",
			op: func(t *testing.T, e *Engine) {
				_, ok := e.AddPlayer("Eve")
				require.True(t, ok)
			},
			kind: KindAddPlayer,
		},
		{
			name: "remove player",
			opts: []testGameOption{withDealer(3)},
			op: func(t *testing.T, e *Engine) {
				require.True(t, e.RemovePlayer("d"))
			},
			kind: KindRemovePlayer,
		},
		{
			name: "remove middle player",
			op: func(t *testing.T, e *Engine) {
				require.True(t, e.RemovePlayer("b"))
			},
			kind: KindRemovePlayer,
		},
		{
			name: "rename player",
			op: func(t *testing.T, e *Engine) {
				require.True(t, e.RenamePlayer("c", "Carla"))
			},
			kind: KindRenamePlayer,
		},
		{
			name: "move player",
			opts: []testGameOption{withDealer(2)},
			op: func(t *testing.T, e *Engine) {
				require.True(t, e.MovePlayer("c", -1))
			},
			kind: KindMovePlayer,
		},
		{
			name: "lock stake",
			op: func(t *testing.T, e *Engine) {
				ok, err := e.LockStake("0.30")
				require.NoError(t, err)
				require.True(t, ok)
			},
			kind: KindLockStake,
		},
		{
			name: "start round",
			opts: []testGameOption{withLockedStake(money.Cents(30))},
			op: func(t *testing.T, e *Engine) {
				ok, err := e.StartRound(nil)
				require.NoError(t, err)
				require.True(t, ok)
			},
			kind: KindStartRound,
		},
		{
			name: "start round with carried pot",
			opts: []testGameOption{withLockedStake(money.Cents(30)), withPot(money.Cents(230))},
			op: func(t *testing.T, e *Engine) {
				ok, err := e.StartRound(nil)
				require.NoError(t, err)
				require.True(t, ok)
			},
			kind: KindStartRound,
		},
		{
			name: "contested settle",
			opts: []testGameOption{withLockedStake(money.Cents(30)), withPot(money.Cents(100))},
			setup: func(t *testing.T, e *Engine) {
				playRound(t, e, []string{"a"}, []string{"b", "c"})
				setWinners(t, e, "a", "b", "a")
			},
			op: func(t *testing.T, e *Engine) {
				_, ok := e.Settle()
				require.True(t, ok)
			},
			kind: KindSettle,
		},
		{
			name: "settle with losers",
			opts: []testGameOption{withLockedStake(money.Cents(30)), withPot(money.Cents(100)), withDealer(3)},
			setup: func(t *testing.T, e *Engine) {
				playRound(t, e, []string{"b", "c", "d"})
				setWinners(t, e, "b", "b", "b")
			},
			op: func(t *testing.T, e *Engine) {
				_, ok := e.Settle()
				require.True(t, ok)
			},
			kind: KindSettle,
		},
		{
			name: "no-contest settle",
			opts: []testGameOption{withLockedStake(money.Cents(30)), withPot(money.Cents(100))},
			setup: func(t *testing.T, e *Engine) {
				ok, err := e.StartRound(nil)
				require.NoError(t, err)
				require.True(t, ok)
			},
			op: func(t *testing.T, e *Engine) {
				require.True(t, e.SettleNoContest())
			},
			kind: KindNoContestSettle,
		},
		{
			name: "discarded round",
			opts: []testGameOption{withLockedStake(money.Zero), withPot(money.Cents(100))},
			setup: func(t *testing.T, e *Engine) {
				ok, err := e.StartRound(nil)
				require.NoError(t, err)
				require.True(t, ok)
			},
			op: func(t *testing.T, e *Engine) {
				require.True(t, e.SettleNoContest())
			},
			kind: KindNoContestSettle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.opts...)
			if tt.setup != nil {
				tt.setup(t, e)
			}

			before := captureState(e)
			history := e.HistoryLen()

			tt.op(t, e)
			assert.NotEqual(t, before, captureState(e), "operation should change state")

			kind, ok := e.LastOperation()
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)

			require.True(t, e.Undo())
			assert.Equal(t, before, captureState(e))
			assert.Equal(t, history, e.HistoryLen())
		})
	}
}

func TestUndo_SettleCanBeReplayed(t *testing.T) {
	e := newTestEngine(t, withLockedStake(money.Cents(30)), withPot(money.Cents(100)))
	playRound(t, e, []string{"b", "c", "d"})
	setWinners(t, e, "b", "b", "c")

	_, ok := e.Settle()
	require.True(t, ok)
	require.True(t, e.Undo())

	// The round is back in winner selection with its choices intact.
	assert.True(t, e.CanConfirmWinners())
	require.True(t, e.SetWinner(2, "d"))

	report, ok := e.Settle()
	require.True(t, ok)
	assert.True(t, report.EveryoneTook)
	assert.Len(t, e.Hands(), 1)
}

func TestUndo_UnwindsWholeSession(t *testing.T) {
	e := newTestEngine(t, withPlayers())
	initial := captureState(e)

	for _, name := range []string{"A", "B", "C"} {
		_, ok := e.AddPlayer(name)
		require.True(t, ok)
	}
	ok, err := e.StartRound(func() (string, bool) { return "0.50", true })
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = e.ConfirmParticipants()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, money.Cents(100), e.Pot())

	// add x3, lock, start, no-contest
	assert.Equal(t, 6, e.HistoryLen())
	for e.Undo() {
	}
	assert.Equal(t, initial, captureState(e))
}

func TestUndo_EmptyHistory(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.Undo())

	_, ok := e.LastOperation()
	assert.False(t, ok)
}

func TestHistory_PushPop(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Push(lockStakeRecord{stake: money.Cents(int64(i))})
	}
	assert.Equal(t, 3, h.Len())

	top, ok := h.Peek()
	require.True(t, ok)
	assert.Equal(t, lockStakeRecord{stake: money.Cents(4)}, top)

	var got []money.Amount
	for {
		r, ok := h.Pop()
		if !ok {
			break
		}
		got = append(got, r.(lockStakeRecord).stake)
	}
	assert.Equal(t, []money.Amount{money.Cents(4), money.Cents(3), money.Cents(2)}, got)

	h.Push(startRoundRecord{})
	h.Clear()
	assert.Equal(t, 0, h.Len())
}
