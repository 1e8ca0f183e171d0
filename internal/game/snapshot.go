package game

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/money"
)

// Snapshot is the persisted state of a session. The live round and the
// undo history are deliberately not part of it.
type Snapshot struct {
	Players     []ledger.Player     `json:"players"`
	Pot         money.Amount        `json:"pot"`
	Hands       []ledger.HandRecord `json:"hands"`
	Locked      bool                `json:"locked"`
	GameStake   money.Amount        `json:"gameStake"`
	DealerIndex int                 `json:"dealerIndex"`
}

// Snapshot captures the persisted state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Players:     e.ledger.Players(),
		Pot:         e.pot,
		Hands:       e.ledger.Hands(),
		Locked:      e.locked,
		GameStake:   e.stake,
		DealerIndex: e.dealerIndex,
	}
}

// FromSnapshot rebuilds an engine from persisted state. Totals are
// recomputed from the hands; the round starts idle and history empty.
func FromSnapshot(s Snapshot, opts ...Option) *Engine {
	e := New(opts...)
	e.ledger = ledger.New(s.Players, s.Hands)
	e.pot = max(s.Pot, 0)
	e.stake = max(s.GameStake, 0)
	e.locked = s.Locked
	e.dealerIndex = max(s.DealerIndex, 0)
	return e
}

// EncodeSnapshot serialises a snapshot as JSON.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s.Players == nil {
		s.Players = []ledger.Player{}
	}
	if s.Hands == nil {
		s.Hands = []ledger.HandRecord{}
	}
	return json.Marshal(s)
}

// DecodeSnapshot parses a snapshot leniently: any field that is missing or
// malformed takes its zero value, and a repeated player id keeps only its
// first entry. Only data that is not a JSON object at all is an error.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	seen := make(map[string]bool)
	for _, p := range field[[]ledger.Player](fields, "players") {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		p.Total = 0
		s.Players = append(s.Players, p)
	}
	s.Pot = field[money.Amount](fields, "pot")
	s.Hands = field[[]ledger.HandRecord](fields, "hands")
	s.Locked = field[bool](fields, "locked")
	s.GameStake = field[money.Amount](fields, "gameStake")
	s.DealerIndex = field[int](fields, "dealerIndex")

	if s.Pot < 0 {
		s.Pot = 0
	}
	if s.GameStake < 0 {
		s.GameStake = 0
	}
	if s.DealerIndex < 0 {
		s.DealerIndex = 0
	}
	for i := range s.Hands {
		if s.Hands[i].Deltas == nil {
			s.Hands[i].Deltas = map[string]money.Amount{}
		}
	}
	return s, nil
}

// field decodes one snapshot field, yielding the zero value when the key
// is missing or does not decode as T.
func field[T any](fields map[string]json.RawMessage, key string) T {
	var v T
	raw, ok := fields[key]
	if !ok {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero
	}
	return v
}
