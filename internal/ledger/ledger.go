// Package ledger keeps the player roster and the append-only record of
// settled hands. Player totals are a cache derived from the hand records.
package ledger

import (
	"time"

	"github.com/lox/bestia/internal/money"
)

// Player is a registered player and their running total.
type Player struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Total money.Amount `json:"total"`
}

// HandRecord is an immutable settled hand. Deltas need not sum to zero:
// the dealer stake can leave the table entirely.
type HandRecord struct {
	Base     money.Amount            `json:"base"`
	Deltas   map[string]money.Amount `json:"deltas"`
	DealerID string                  `json:"dealerId,omitempty"`
	PlayedAt time.Time               `json:"playedAt,omitzero"`
}

// Delta returns the change recorded for playerID and whether the player
// took part in the hand.
func (h HandRecord) Delta(playerID string) (money.Amount, bool) {
	d, ok := h.Deltas[playerID]
	return d, ok
}

// Sum returns the sum of every delta in the record.
func (h HandRecord) Sum() money.Amount {
	var total money.Amount
	for _, d := range h.Deltas {
		total += d
	}
	return total
}

func (h HandRecord) clone() HandRecord {
	deltas := make(map[string]money.Amount, len(h.Deltas))
	for k, v := range h.Deltas {
		deltas[k] = v
	}
	h.Deltas = deltas
	return h
}

// Ledger owns the roster and hand history. It is not safe for concurrent
// use; the engine that owns it serialises all access.
type Ledger struct {
	players []*Player
	hands   []HandRecord
}

// New returns a ledger seeded with players and hands. Totals are
// recomputed from the hands.
func New(players []Player, hands []HandRecord) *Ledger {
	l := &Ledger{
		players: make([]*Player, 0, len(players)),
		hands:   make([]HandRecord, 0, len(hands)),
	}
	for _, p := range players {
		p := p
		l.players = append(l.players, &p)
	}
	for _, h := range hands {
		l.hands = append(l.hands, h.clone())
	}
	l.RecomputeTotals()
	return l
}

// RecomputeTotals rebuilds every player's total from the hand records.
// Deltas for ids no longer in the roster are ignored.
func (l *Ledger) RecomputeTotals() {
	index := make(map[string]*Player, len(l.players))
	for _, p := range l.players {
		p.Total = 0
		index[p.ID] = p
	}
	for _, h := range l.hands {
		for id, d := range h.Deltas {
			if p, ok := index[id]; ok {
				p.Total += d
			}
		}
	}
}

// Len returns the number of registered players.
func (l *Ledger) Len() int {
	return len(l.players)
}

// Players returns a copy of the roster in seating order.
func (l *Ledger) Players() []Player {
	out := make([]Player, len(l.players))
	for i, p := range l.players {
		out[i] = *p
	}
	return out
}

// At returns the player at seat i.
func (l *Ledger) At(i int) Player {
	return *l.players[i]
}

// Player looks up a player by id.
func (l *Ledger) Player(id string) (Player, bool) {
	if i := l.IndexOf(id); i >= 0 {
		return *l.players[i], true
	}
	return Player{}, false
}

// IndexOf returns the seat of id, or -1.
func (l *Ledger) IndexOf(id string) int {
	for i, p := range l.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Name returns the player's name, or id itself when unknown.
func (l *Ledger) Name(id string) string {
	if p, ok := l.Player(id); ok {
		return p.Name
	}
	return id
}

// Add appends a player to the end of the roster.
func (l *Ledger) Add(p Player) {
	l.Insert(len(l.players), p)
}

// Insert places a player at seat i, shifting later seats.
func (l *Ledger) Insert(i int, p Player) {
	if i < 0 {
		i = 0
	}
	if i > len(l.players) {
		i = len(l.players)
	}
	l.players = append(l.players, nil)
	copy(l.players[i+1:], l.players[i:])
	l.players[i] = &p
	l.RecomputeTotals()
}

// Remove deletes a player and returns it with its former seat.
func (l *Ledger) Remove(id string) (Player, int, bool) {
	i := l.IndexOf(id)
	if i < 0 {
		return Player{}, -1, false
	}
	removed := *l.players[i]
	l.players = append(l.players[:i], l.players[i+1:]...)
	l.RecomputeTotals()
	return removed, i, true
}

// Rename changes a player's display name.
func (l *Ledger) Rename(id, name string) bool {
	i := l.IndexOf(id)
	if i < 0 {
		return false
	}
	l.players[i].Name = name
	return true
}

// Swap exchanges the players at seats i and j.
func (l *Ledger) Swap(i, j int) bool {
	if i < 0 || j < 0 || i >= len(l.players) || j >= len(l.players) {
		return false
	}
	l.players[i], l.players[j] = l.players[j], l.players[i]
	return true
}

// AppendHand records a settled hand and refreshes totals.
func (l *Ledger) AppendHand(h HandRecord) {
	l.hands = append(l.hands, h.clone())
	l.RecomputeTotals()
}

// PopHand removes the most recent hand and refreshes totals.
func (l *Ledger) PopHand() (HandRecord, bool) {
	if len(l.hands) == 0 {
		return HandRecord{}, false
	}
	last := l.hands[len(l.hands)-1]
	l.hands = l.hands[:len(l.hands)-1]
	l.RecomputeTotals()
	return last, true
}

// Hands returns a copy of the hand history, oldest first.
func (l *Ledger) Hands() []HandRecord {
	out := make([]HandRecord, len(l.hands))
	for i, h := range l.hands {
		out[i] = h.clone()
	}
	return out
}
