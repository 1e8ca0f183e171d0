package game

import (
	"fmt"
	"strings"

	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/money"
)

// AddPlayer registers a player at the end of the seating order. It is
// declined while registration is closed or when name is blank.
func (e *Engine) AddPlayer(name string) (ledger.Player, bool) {
	name = strings.TrimSpace(name)
	if name == "" || !e.RegistrationOpen() {
		e.logger.Debug("Add player rejected", "name", name, "registrationOpen", e.RegistrationOpen())
		return ledger.Player{}, false
	}

	p := ledger.Player{ID: e.ids.Generate(), Name: name}
	e.ledger.Add(p)
	e.history.Push(addPlayerRecord{playerID: p.ID})

	e.logger.Debug("Player added", "id", p.ID, "name", p.Name)
	return p, true
}

// RemovePlayer unregisters a player. The dealer pointer is clamped to the
// shrunken roster.
func (e *Engine) RemovePlayer(id string) bool {
	if !e.RegistrationOpen() {
		e.logger.Debug("Remove player rejected", "id", id, "reason", "registration closed")
		return false
	}
	prevDealer := e.dealerIndex
	p, seat, ok := e.ledger.Remove(id)
	if !ok {
		return false
	}
	e.dealerIndex = min(e.dealerIndex, max(0, e.ledger.Len()-1))
	e.history.Push(removePlayerRecord{player: p, seat: seat, dealerIndex: prevDealer})

	e.logger.Debug("Player removed", "id", p.ID, "name", p.Name)
	return true
}

// RenamePlayer changes a player's display name.
func (e *Engine) RenamePlayer(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || !e.RegistrationOpen() {
		return false
	}
	p, ok := e.ledger.Player(id)
	if !ok || p.Name == name {
		return false
	}
	e.ledger.Rename(id, name)
	e.history.Push(renamePlayerRecord{playerID: id, name: p.Name})
	return true
}

// MovePlayer shifts a player delta seats (usually -1 or +1), swapping with
// the occupant. The dealer pointer follows the dealer.
func (e *Engine) MovePlayer(id string, delta int) bool {
	if !e.RegistrationOpen() {
		return false
	}
	from := e.ledger.IndexOf(id)
	to := from + delta
	if from < 0 || delta == 0 || !e.ledger.Swap(from, to) {
		return false
	}
	prevDealer := e.dealerIndex
	switch e.dealerIndex {
	case from:
		e.dealerIndex = to
	case to:
		e.dealerIndex = from
	}
	e.history.Push(movePlayerRecord{from: from, to: to, dealerIndex: prevDealer})
	return true
}

// LockStake parses and fixes the dealer stake. It returns false without
// error when the stake is already locked, and an error wrapping
// ErrInvalidStake when raw is not a finite, non-negative amount.
func (e *Engine) LockStake(raw string) (bool, error) {
	if e.locked {
		return false, nil
	}
	stake, err := money.Parse(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidStake, raw)
	}
	if stake < 0 {
		return false, fmt.Errorf("%w: %q is negative", ErrInvalidStake, raw)
	}

	e.history.Push(lockStakeRecord{stake: e.stake})
	e.stake = stake
	e.locked = true

	e.logger.Debug("Stake locked", "stake", stake)
	return true, nil
}
