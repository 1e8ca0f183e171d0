package game

import (
	"testing"

	"github.com/lox/bestia/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle_EveryoneTook(t *testing.T) {
	e := newTestEngine(t, withPot(money.Cents(100)), withLockedStake(money.Cents(30)))

	playRound(t, e, []string{"b", "c", "d"})
	setWinners(t, e, "b", "c", "d")
	require.True(t, e.CanConfirmWinners())

	report, ok := e.Settle()
	require.True(t, ok)

	assert.True(t, report.EveryoneTook)
	assert.Equal(t, 0, report.Losers)
	assert.Equal(t, money.Cents(100), report.StartingPot)
	assert.Equal(t, money.Zero, report.NextPot)
	assert.Equal(t, "a", report.DealerID)
	assert.Equal(t, money.Cents(30), report.DealerStake)

	got := totals(e)
	assert.Equal(t, money.Cents(-30), got["a"])

	extra := 0
	var sum money.Amount
	for _, id := range []string{"b", "c", "d"} {
		switch got[id] {
		case money.Cents(33):
		case money.Cents(34):
			extra++
		default:
			t.Fatalf("player %s got %s, want 0.33 or 0.34", id, got[id])
		}
		sum += got[id]
	}
	assert.Equal(t, 1, extra, "exactly one player should receive the spare cent")
	assert.Equal(t, money.Cents(100), sum)

	assert.Equal(t, money.Zero, e.Pot())
	assert.Equal(t, 1, e.DealerIndex())
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.False(t, e.Round().Active)
	require.Len(t, e.Hands(), 1)
	assert.Equal(t, money.Cents(70), e.Hands()[0].Sum())
}

func TestSettle_SingleWinnerTakesAll(t *testing.T) {
	e := newTestEngine(t, withPot(money.Cents(100)), withLockedStake(money.Cents(30)))

	playRound(t, e, []string{"b", "c", "d"})
	setWinners(t, e, "b", "b", "b")

	report, ok := e.Settle()
	require.True(t, ok)

	assert.False(t, report.EveryoneTook)
	assert.Equal(t, 2, report.Losers)
	assert.Equal(t, money.Cents(230), report.NextPot)

	got := totals(e)
	assert.Equal(t, money.Cents(-30), got["a"])
	assert.Equal(t, money.Cents(100), got["b"])
	assert.Equal(t, money.Cents(-100), got["c"])
	assert.Equal(t, money.Cents(-100), got["d"])
	assert.Equal(t, money.Cents(230), e.Pot())

	require.Len(t, report.Players, 3)
	assert.Equal(t, PlayerResult{PlayerID: "b", Name: "B", Win: money.Cents(100)}, report.Players[0])
	assert.Equal(t, PlayerResult{PlayerID: "c", Name: "C", Lose: money.Cents(100)}, report.Players[1])

	require.Len(t, report.Entities, 3)
	assert.Equal(t, "3/3", report.Entities[0].Fraction())
	assert.Equal(t, "0/3", report.Entities[1].Fraction())
}

func TestSettle_NoContest(t *testing.T) {
	e := newTestEngine(t, withPot(money.Cents(100)), withLockedStake(money.Cents(30)))

	ok, err := e.StartRound(nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.ConfirmParticipants()
	require.NoError(t, err)
	require.True(t, ok)

	hands := e.Hands()
	require.Len(t, hands, 1)
	assert.Equal(t, map[string]money.Amount{"a": money.Cents(-30)}, hands[0].Deltas)
	assert.Equal(t, money.Cents(100), hands[0].Base)
	assert.Equal(t, money.Cents(130), e.Pot())
	assert.Equal(t, 1, e.DealerIndex())
	assert.Equal(t, money.Cents(-30), totals(e)["a"])

	kind, ok := e.LastOperation()
	require.True(t, ok)
	assert.Equal(t, KindNoContestSettle, kind)
}

func TestSettle_NoContestWithoutStakeIsDiscarded(t *testing.T) {
	e := newTestEngine(t, withPot(money.Cents(100)), withLockedStake(money.Zero))

	ok, err := e.StartRound(nil)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, e.SettleNoContest())
	assert.Empty(t, e.Hands())
	assert.Equal(t, money.Cents(100), e.Pot())
	assert.Equal(t, 0, e.DealerIndex())
	assert.False(t, e.Round().Active)
}

func TestSettle_GroupSharesPrize(t *testing.T) {
	e := newTestEngine(t, withPot(money.Cents(100)), withLockedStake(money.Cents(30)))

	playRound(t, e, []string{"a"}, []string{"c", "b"})

	entities := e.Entities()
	require.Len(t, entities, 2)
	assert.Equal(t, "a", entities[0].ID)
	assert.Equal(t, "g-1", entities[1].ID)
	assert.True(t, entities[1].IsGroup())
	assert.Equal(t, "B/C", entities[1].Label)
	assert.Equal(t, []string{"b", "c"}, entities[1].Members)

	// A member's id resolves to their group.
	setWinners(t, e, "c", "a", "g-1")
	assert.Equal(t, [Slots]string{"g-1", "a", "g-1"}, e.Round().Winners)

	report, ok := e.Settle()
	require.True(t, ok)
	assert.True(t, report.EveryoneTook)

	got := totals(e)
	groupWin := got["b"] + got["c"]
	assert.Equal(t, money.Cents(67), groupWin)
	assert.LessOrEqual(t, (got["b"] - got["c"]).Abs(), money.Cents(1))
	assert.Equal(t, money.Cents(33-30), got["a"])
	assert.Equal(t, money.Zero, got["d"])
}

func TestSettle_TwoWinsTakeTwoThirds(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 7, 42, 99, 1234} {
		e := newTestEngine(t, withSeed(seed), withPot(money.Cents(100)), withLockedStake(money.Cents(30)))

		playRound(t, e, []string{"b", "c"})
		setWinners(t, e, "b", "b", "c")

		report, ok := e.Settle()
		require.True(t, ok)
		assert.True(t, report.EveryoneTook)

		got := totals(e)
		assert.Equal(t, money.Cents(67), got["b"], "seed %d", seed)
		assert.Equal(t, money.Cents(33), got["c"], "seed %d", seed)
	}
}

func TestSettle_OneWinEachStaysWithinBase(t *testing.T) {
	tests := []struct {
		name  string
		base  int64
		share int64 // what two of the three winners take
		odd   int64 // what the third takes
	}{
		{name: "cent short", base: 100, share: 33, odd: 34},
		{name: "cent over", base: 101, share: 34, odd: 33},
		{name: "exact", base: 99, share: 33, odd: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, withPot(money.Cents(tt.base)), withLockedStake(money.Zero))

			playRound(t, e, []string{"b", "c", "d"})
			setWinners(t, e, "b", "c", "d")
			_, ok := e.Settle()
			require.True(t, ok)

			got := totals(e)
			counts := map[money.Amount]int{}
			var sum money.Amount
			for _, id := range []string{"b", "c", "d"} {
				counts[got[id]]++
				sum += got[id]
			}
			assert.Equal(t, money.Cents(tt.base), sum)
			if tt.share == tt.odd {
				assert.Equal(t, 3, counts[money.Cents(tt.share)])
				return
			}
			assert.Equal(t, 2, counts[money.Cents(tt.share)])
			assert.Equal(t, 1, counts[money.Cents(tt.odd)])
		})
	}
}

func TestSettle_LosingGroupSplitsBase(t *testing.T) {
	e := newTestEngine(t, withPot(money.Cents(100)), withLockedStake(money.Cents(30)))

	playRound(t, e, []string{"a"}, []string{"b", "c"})
	setWinners(t, e, "a", "a", "a")

	report, ok := e.Settle()
	require.True(t, ok)
	assert.Equal(t, 1, report.Losers)
	assert.Equal(t, money.Cents(130), report.NextPot)

	got := totals(e)
	assert.Equal(t, money.Cents(100-30), got["a"])
	assert.Equal(t, money.Cents(-50), got["b"])
	assert.Equal(t, money.Cents(-50), got["c"])
}

func TestSettle_OddLossAmongGroupIsCentExact(t *testing.T) {
	e := newTestEngine(t,
		withPlayers("A", "B", "C", "D", "E"),
		withPot(money.Cents(100)),
		withLockedStake(money.Cents(10)),
	)

	playRound(t, e, []string{"a"}, []string{"b", "c", "d"})
	setWinners(t, e, "a", "a", "a")

	_, ok := e.Settle()
	require.True(t, ok)

	got := totals(e)
	assert.Equal(t, money.Zero, got["e"])
	assert.Equal(t, money.Cents(-100), got["b"]+got["c"]+got["d"])
	for _, id := range []string{"b", "c", "d"} {
		assert.Contains(t, []money.Amount{money.Cents(-33), money.Cents(-34)}, got[id])
	}
}

func TestSettle_Rejected(t *testing.T) {
	e := newTestEngine(t, withPot(money.Cents(100)), withLockedStake(money.Cents(30)))

	_, ok := e.Settle()
	assert.False(t, ok, "no round")

	playRound(t, e, []string{"b", "c"})
	require.True(t, e.SetWinner(0, "b"))
	require.True(t, e.SetWinner(1, "c"))
	assert.False(t, e.CanConfirmWinners())

	before := e.Snapshot()
	_, ok = e.Settle()
	assert.False(t, ok, "incomplete winners")
	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, PhaseWinners, e.Phase())
}

func TestSettle_DealerRotation(t *testing.T) {
	const rounds = 6
	e := newTestEngine(t, withLockedStake(money.Cents(30)), withDealer(2))

	for i := 0; i < rounds; i++ {
		ok, err := e.StartRound(nil)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = e.ConfirmParticipants()
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.Equal(t, (2+rounds)%4, e.DealerIndex())
	assert.Len(t, e.Hands(), rounds)
	assert.Equal(t, money.Cents(30*(rounds+1)), e.Pot())
}

func TestSettle_Deterministic(t *testing.T) {
	run := func() map[string]money.Amount {
		e := newTestEngine(t, withSeed(7), withPot(money.Cents(100)), withLockedStake(money.Cents(30)))
		playRound(t, e, []string{"b", "c", "d"})
		setWinners(t, e, "b", "c", "d")
		_, ok := e.Settle()
		require.True(t, ok)
		return totals(e)
	}
	assert.Equal(t, run(), run())
}
