package game

import (
	"fmt"
	"strconv"

	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/money"
)

// PlayerResult is one player's share of a settlement.
type PlayerResult struct {
	PlayerID string       `json:"playerId"`
	Name     string       `json:"name"`
	Win      money.Amount `json:"win"`
	Lose     money.Amount `json:"lose"`
}

// EntityResult is how many sub-hands an entity took.
type EntityResult struct {
	EntityID string `json:"entityId"`
	Label    string `json:"label"`
	Wins     int    `json:"wins"`
}

// Fraction renders the share of sub-hands won, e.g. "2/3".
func (r EntityResult) Fraction() string {
	return strconv.Itoa(r.Wins) + "/" + strconv.Itoa(Slots)
}

// Report summarises a contested settlement for display.
type Report struct {
	StartingPot  money.Amount      `json:"startingPot"`
	Players      []PlayerResult    `json:"players"`
	Entities     []EntityResult    `json:"entities"`
	Losers       int               `json:"losers"`
	EveryoneTook bool              `json:"everyoneTook"`
	DealerID     string            `json:"dealerId,omitempty"`
	DealerStake  money.Amount      `json:"dealerStake"`
	NextPot      money.Amount      `json:"nextPot"`
	Hand         ledger.HandRecord `json:"hand"`
}

// Settle books a contested round once every sub-hand has a winner.
//
// An entity that won k of the three sub-hands takes base*k/3, rounded
// half-up to the cent, split among its members. When at least one entity
// won nothing, every such entity pays the full base, split among its
// members, and the next pot becomes losers*base plus the dealer stake;
// otherwise the next pot is empty. The dealer pays the stake either way.
func (e *Engine) Settle() (*Report, bool) {
	r := e.round
	if !r.Active || r.BasePot <= 0 || r.Phase != PhaseWinners || !r.WinnersComplete() {
		e.logger.Debug("Settle rejected", "active", r.Active, "phase", r.Phase, "complete", r.WinnersComplete())
		return nil, false
	}

	base := r.BasePot
	entities := e.Entities()

	winCount := make(map[string]int, len(entities))
	for _, w := range r.Winners {
		id := r.EntityOf(w)
		if _, ok := findEntity(entities, id); !ok {
			continue
		}
		winCount[id]++
	}
	prize := e.prizes(base, entities, winCount)

	var losers []Entity
	for _, ent := range entities {
		if winCount[ent.ID] == 0 {
			losers = append(losers, ent)
		}
	}
	everyoneTook := len(losers) == 0

	deltas := make(map[string]money.Amount)
	results := make(map[string]*PlayerResult)
	result := func(pid string) *PlayerResult {
		if res, ok := results[pid]; ok {
			return res
		}
		res := &PlayerResult{PlayerID: pid, Name: e.ledger.Name(pid)}
		results[pid] = res
		return res
	}

	for _, ent := range entities {
		if winCount[ent.ID] == 0 {
			continue
		}
		for pid, amt := range e.alloc.Split(prize[ent.ID], ent.Members) {
			deltas[pid] += amt
			result(pid).Win += amt
		}
	}

	if !everyoneTook {
		for _, ent := range losers {
			for pid, amt := range e.alloc.Split(base, ent.Members) {
				deltas[pid] -= amt
				result(pid).Lose += amt
			}
		}
	}

	dealer, hasDealer := e.Dealer()
	var dealerStake money.Amount
	if hasDealer && e.stake > 0 {
		dealerStake = e.stake
		deltas[dealer.ID] -= e.stake
	}

	nextPot := money.Zero
	if !everyoneTook {
		nextPot = base*money.Amount(len(losers)) + e.stake
	}

	hand := ledger.HandRecord{
		Base:     base,
		Deltas:   deltas,
		DealerID: dealer.ID,
		PlayedAt: e.clock.Now(),
	}

	report := &Report{
		StartingPot:  base,
		Losers:       len(losers),
		EveryoneTook: everyoneTook,
		DealerID:     dealer.ID,
		DealerStake:  dealerStake,
		NextPot:      nextPot,
		Hand:         hand,
	}
	for _, p := range e.ledger.Players() {
		if res, ok := results[p.ID]; ok {
			report.Players = append(report.Players, *res)
		}
	}
	for _, ent := range entities {
		report.Entities = append(report.Entities, EntityResult{
			EntityID: ent.ID,
			Label:    ent.Label,
			Wins:     winCount[ent.ID],
		})
	}

	e.history.Push(settleRecord{
		kind:        KindSettle,
		appended:    true,
		pot:         e.pot,
		dealerIndex: e.dealerIndex,
		round:       r.clone(),
	})
	e.ledger.AppendHand(hand)
	e.pot = nextPot
	e.round = idleRound()
	e.rotateDealer()

	e.logger.Debug("Round settled",
		"base", base,
		"losers", len(losers),
		"everyoneTook", everyoneTook,
		"nextPot", nextPot)
	return report, true
}

// prizes returns base*k/3 for every entity that won k > 0 sub-hands. When
// rounding leaves the prizes a cent off the base (one sub-hand each), the
// difference is settled on winners drawn by the allocator so the prizes
// always add up to the base.
func (e *Engine) prizes(base money.Amount, entities []Entity, winCount map[string]int) map[string]money.Amount {
	prize := make(map[string]money.Amount, len(entities))
	var (
		winners []string
		total   money.Amount
	)
	for _, ent := range entities {
		k := winCount[ent.ID]
		if k == 0 {
			continue
		}
		prize[ent.ID] = base.MulFrac(int64(k), Slots)
		total += prize[ent.ID]
		winners = append(winners, ent.ID)
	}

	switch diff := base - total; {
	case len(winners) == 0:
	case diff > 0:
		for id, amt := range e.alloc.Split(diff, winners) {
			prize[id] += amt
		}
	case diff < 0:
		for id, amt := range e.alloc.Split(-diff, winners) {
			prize[id] -= amt
		}
	}
	return prize
}

// SettleNoContest closes a round nobody opted into. The dealer pays the
// stake, which is added to the pot, and the deal passes on. Without a
// dealer or a stake the round is simply discarded.
func (e *Engine) SettleNoContest() bool {
	r := e.round
	if !r.Active || len(r.Participants) > 0 {
		return false
	}

	rec := settleRecord{
		kind:        KindNoContestSettle,
		pot:         e.pot,
		dealerIndex: e.dealerIndex,
		round:       r.clone(),
	}

	dealer, ok := e.Dealer()
	if !ok || e.stake <= 0 {
		e.history.Push(rec)
		e.round = idleRound()
		e.logger.Debug("Round discarded", "reason", "no participants and nothing to stake")
		return true
	}

	rec.appended = true
	e.history.Push(rec)
	e.ledger.AppendHand(ledger.HandRecord{
		Base:     r.BasePot,
		Deltas:   map[string]money.Amount{dealer.ID: -e.stake},
		DealerID: dealer.ID,
		PlayedAt: e.clock.Now(),
	})
	e.pot = r.BasePot + e.stake
	e.round = idleRound()
	e.rotateDealer()

	e.logger.Debug("Round passed", "dealer", dealer.Name, "pot", e.pot)
	return true
}

// Undo reverts the most recent command.
func (e *Engine) Undo() bool {
	rec, ok := e.history.Pop()
	if !ok {
		return false
	}

	switch r := rec.(type) {
	case addPlayerRecord:
		e.ledger.Remove(r.playerID)
	case removePlayerRecord:
		e.ledger.Insert(r.seat, r.player)
		e.dealerIndex = r.dealerIndex
	case renamePlayerRecord:
		e.ledger.Rename(r.playerID, r.name)
	case movePlayerRecord:
		e.ledger.Swap(r.from, r.to)
		e.dealerIndex = r.dealerIndex
	case lockStakeRecord:
		e.locked = false
		e.stake = r.stake
	case startRoundRecord:
		e.round = idleRound()
		e.pot = r.pot
	case settleRecord:
		if r.appended {
			e.ledger.PopHand()
		}
		e.pot = r.pot
		e.dealerIndex = r.dealerIndex
		e.round = r.round.clone()
	default:
		panic(fmt.Sprintf("game: unknown undo record %T", rec))
	}

	e.logger.Debug("Undo applied", "kind", rec.Kind())
	return true
}
