package game

import (
	"slices"
	"strings"
)

// StakePrompt asks the user for the dealer stake when a round starts before
// the stake has been locked. ok is false when the user cancels.
type StakePrompt func() (raw string, ok bool)

// StartRound opens a new round. The pot carried from the last round is at
// stake, or the dealer stake when the pot is empty. If the stake is not yet
// locked, prompt supplies it; an invalid answer is returned as an error and
// a cancelled or missing prompt declines the round.
func (e *Engine) StartRound(prompt StakePrompt) (bool, error) {
	if e.round.Active || e.ledger.Len() == 0 {
		e.logger.Debug("Start round rejected", "active", e.round.Active, "players", e.ledger.Len())
		return false, nil
	}
	if !e.locked {
		if prompt == nil {
			return false, nil
		}
		raw, ok := prompt()
		if !ok {
			return false, nil
		}
		if _, err := e.LockStake(raw); err != nil {
			return false, err
		}
	}

	dealer, _ := e.Dealer()
	base := e.pot
	if base <= 0 {
		base = e.stake
	}
	if base <= 0 {
		e.logger.Debug("Start round rejected", "reason", "nothing at stake")
		return false, nil
	}

	e.history.Push(startRoundRecord{pot: e.pot})
	e.round = Round{
		Active:   true,
		Phase:    PhaseParticipants,
		DealerID: dealer.ID,
		BasePot:  base,
	}
	e.pot = base

	e.logger.Debug("Round started", "dealer", dealer.Name, "base", base)
	return true, nil
}

// ToggleParticipant adds or removes a lone player. During participant
// selection any player may be toggled; during grouping only players who
// stayed out may rejoin. Group members can never be toggled alone.
func (e *Engine) ToggleParticipant(playerID string) bool {
	if !e.round.Active {
		return false
	}
	if _, ok := e.ledger.Player(playerID); !ok {
		return false
	}
	if _, grouped := e.round.GroupOf(playerID); grouped {
		e.logger.Debug("Toggle rejected", "player", playerID, "reason", "player is in a group")
		return false
	}

	switch e.round.Phase {
	case PhaseParticipants:
	case PhaseGrouping:
		if !slices.Contains(e.round.Outsiders, playerID) {
			return false
		}
	default:
		return false
	}

	if e.round.HasParticipant(playerID) {
		e.round.removeParticipant(playerID)
	} else {
		e.round.addParticipant(playerID)
	}
	return true
}

// ConfirmParticipants closes participant selection. With nobody playing
// the round is settled as a no-contest; with nobody left out it moves
// straight to winner selection; otherwise grouping opens.
func (e *Engine) ConfirmParticipants() (bool, error) {
	if !e.round.Active || e.round.Phase != PhaseParticipants {
		return false, nil
	}
	if len(e.round.Participants) == 0 {
		return e.SettleNoContest(), nil
	}

	solo := e.round.soloParticipants()
	var outsiders []string
	for _, p := range e.ledger.Players() {
		if !slices.Contains(solo, p.ID) {
			outsiders = append(outsiders, p.ID)
		}
	}

	if len(e.NonParticipants()) == 0 {
		if err := e.openWinners(); err != nil {
			return false, err
		}
		e.round.Outsiders = outsiders
		return true, nil
	}

	e.round.Outsiders = outsiders
	e.round.Phase = PhaseGrouping
	return true, nil
}

// GroupCandidate is a possible group of players who stayed out.
type GroupCandidate struct {
	MemberIDs []string
	Label     string
	Formed    bool // an identical group already exists
	Conflict  bool // shares a member with an existing group
}

// GroupCandidates lists every combination of size players among those who
// stayed out, in seating order.
func (e *Engine) GroupCandidates(size int) []GroupCandidate {
	if e.round.Phase != PhaseGrouping || size < 2 {
		return nil
	}
	var pool []string
	for _, p := range e.ledger.Players() {
		if slices.Contains(e.round.Outsiders, p.ID) {
			pool = append(pool, p.ID)
		}
	}
	if size > len(pool) {
		return nil
	}

	var out []GroupCandidate
	for _, ids := range combinations(pool, size) {
		c := GroupCandidate{MemberIDs: ids}
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = e.ledger.Name(id)
		}
		c.Label = strings.Join(names, "/")
		for _, g := range e.round.Groups {
			if sameMembers(g.MemberIDs, ids) {
				c.Formed = true
				break
			}
			if slices.ContainsFunc(ids, g.Has) {
				c.Conflict = true
			}
		}
		if c.Formed {
			c.Conflict = false
		}
		out = append(out, c)
	}
	return out
}

// FormGroup seats players who stayed out as one entity. Members must be
// distinct current non-participants and at least two; a member already in
// another group rejects the whole formation.
func (e *Engine) FormGroup(memberIDs []string) (Group, bool) {
	if !e.round.Active || e.round.Phase != PhaseGrouping {
		return Group{}, false
	}
	members := slices.Clone(memberIDs)
	slices.Sort(members)
	members = slices.Compact(members)
	if len(members) < 2 || len(members) != len(memberIDs) {
		return Group{}, false
	}
	for _, id := range memberIDs {
		if _, ok := e.ledger.Player(id); !ok {
			return Group{}, false
		}
		if _, grouped := e.round.GroupOf(id); grouped {
			e.logger.Debug("Group rejected", "player", id, "reason", "already grouped")
			return Group{}, false
		}
		if e.round.HasParticipant(id) {
			e.logger.Debug("Group rejected", "player", id, "reason", "already participating")
			return Group{}, false
		}
	}

	g := Group{ID: e.ids.Generate(), MemberIDs: e.seatOrder(memberIDs)}
	e.round.Groups = append(e.round.Groups, g)
	for _, id := range g.MemberIDs {
		e.round.addParticipant(id)
	}
	e.logger.Debug("Group formed", "id", g.ID, "members", len(g.MemberIDs))
	return g.clone(), true
}

// RemoveGroup dissolves a group. Its members leave the round unless they
// are still seated some other way.
func (e *Engine) RemoveGroup(groupID string) bool {
	if !e.round.Active || e.round.Phase != PhaseGrouping {
		return false
	}
	i := slices.IndexFunc(e.round.Groups, func(g Group) bool { return g.ID == groupID })
	if i < 0 {
		return false
	}
	g := e.round.Groups[i]
	e.round.Groups = slices.Delete(e.round.Groups, i, i+1)
	for _, id := range g.MemberIDs {
		if _, still := e.round.GroupOf(id); !still {
			e.round.removeParticipant(id)
		}
	}
	return true
}

// ConfirmGrouping closes grouping and opens winner selection.
func (e *Engine) ConfirmGrouping() (bool, error) {
	if !e.round.Active || e.round.Phase != PhaseGrouping {
		return false, nil
	}
	if err := e.openWinners(); err != nil {
		return false, err
	}
	return true, nil
}

// Back returns to the previous selection step, keeping prior choices:
// from grouping to participants, and from winners to grouping (or to
// participants when grouping was skipped).
func (e *Engine) Back() bool {
	if !e.round.Active {
		return false
	}
	switch e.round.Phase {
	case PhaseGrouping:
		e.round.Phase = PhaseParticipants
	case PhaseWinners:
		if len(e.NonParticipants()) > 0 || len(e.round.Groups) > 0 {
			e.round.Phase = PhaseGrouping
		} else {
			e.round.Phase = PhaseParticipants
		}
	default:
		return false
	}
	return true
}

// SetWinner awards sub-hand slot (0-based) to an entity. A grouped
// player's id resolves to their group.
func (e *Engine) SetWinner(slot int, entityID string) bool {
	if !e.round.Active || e.round.Phase != PhaseWinners || slot < 0 || slot >= Slots {
		return false
	}
	id := e.round.EntityOf(entityID)
	if _, ok := findEntity(e.Entities(), id); !ok {
		e.logger.Debug("Winner rejected", "slot", slot, "entity", entityID)
		return false
	}
	e.round.Winners[slot] = id
	return true
}

// ClearWinner empties a sub-hand slot.
func (e *Engine) ClearWinner(slot int) bool {
	if !e.round.Active || e.round.Phase != PhaseWinners || slot < 0 || slot >= Slots {
		return false
	}
	e.round.Winners[slot] = ""
	return true
}

// openWinners moves to winner selection, dropping slots whose entity no
// longer plays.
func (e *Engine) openWinners() error {
	entities := e.Entities()
	if len(entities) < 2 {
		return ErrNotEnoughEntities
	}
	for i, w := range e.round.Winners {
		if _, ok := findEntity(entities, w); !ok {
			e.round.Winners[i] = ""
		}
	}
	e.round.Phase = PhaseWinners
	return nil
}

// seatOrder sorts ids by seating position.
func (e *Engine) seatOrder(ids []string) []string {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b string) int {
		return e.ledger.IndexOf(a) - e.ledger.IndexOf(b)
	})
	return out
}

func (g Group) clone() Group {
	return Group{ID: g.ID, MemberIDs: slices.Clone(g.MemberIDs)}
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}

func combinations(pool []string, size int) [][]string {
	var out [][]string
	cur := make([]string, 0, size)
	var rec func(start int)
	rec = func(start int) {
		if len(cur) == size {
			out = append(out, slices.Clone(cur))
			return
		}
		for i := start; i < len(pool); i++ {
			cur = append(cur, pool[i])
			rec(i + 1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(0)
	return out
}
