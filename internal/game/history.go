package game

import (
	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/money"
)

// DefaultHistoryLimit bounds the undo stack.
const DefaultHistoryLimit = 200

// RecordKind names the command an undo record reverses.
type RecordKind string

const (
	KindAddPlayer       RecordKind = "add-player"
	KindRemovePlayer    RecordKind = "remove-player"
	KindRenamePlayer    RecordKind = "rename-player"
	KindMovePlayer      RecordKind = "move-player"
	KindLockStake       RecordKind = "lock-stake"
	KindStartRound      RecordKind = "start-round"
	KindSettle          RecordKind = "settle"
	KindNoContestSettle RecordKind = "no-contest-settle"
)

// Record captures the state a command overwrote so it can be restored.
type Record interface {
	Kind() RecordKind
}

type addPlayerRecord struct {
	playerID string
}

type removePlayerRecord struct {
	player      ledger.Player
	seat        int
	dealerIndex int
}

type renamePlayerRecord struct {
	playerID string
	name     string
}

type movePlayerRecord struct {
	from, to    int
	dealerIndex int
}

type lockStakeRecord struct {
	stake money.Amount
}

type startRoundRecord struct {
	pot money.Amount
}

// settleRecord covers both contested and no-contest settlements.
type settleRecord struct {
	kind        RecordKind
	appended    bool
	pot         money.Amount
	dealerIndex int
	round       Round
}

func (addPlayerRecord) Kind() RecordKind { return KindAddPlayer }
func (removePlayerRecord) Kind() RecordKind { return KindRemovePlayer }
func (renamePlayerRecord) Kind() RecordKind { return KindRenamePlayer }
func (movePlayerRecord) Kind() RecordKind { return KindMovePlayer }
func (lockStakeRecord) Kind() RecordKind { return KindLockStake }
func (startRoundRecord) Kind() RecordKind { return KindStartRound }
func (r settleRecord) Kind() RecordKind { return r.kind }

// History is a bounded LIFO of undo records. When full, the oldest record
// is discarded.
type History struct {
	limit   int
	records []Record
}

// NewHistory returns an empty history holding at most limit records.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push adds a record, evicting the oldest one when over the limit.
func (h *History) Push(r Record) {
	h.records = append(h.records, r)
	if over := len(h.records) - h.limit; over > 0 {
		h.records = append(h.records[:0], h.records[over:]...)
	}
}

// Pop removes and returns the most recent record.
func (h *History) Pop() (Record, bool) {
	if len(h.records) == 0 {
		return nil, false
	}
	last := h.records[len(h.records)-1]
	h.records[len(h.records)-1] = nil
	h.records = h.records[:len(h.records)-1]
	return last, true
}

// Peek returns the most recent record without removing it.
func (h *History) Peek() (Record, bool) {
	if len(h.records) == 0 {
		return nil, false
	}
	return h.records[len(h.records)-1], true
}

// Len returns the number of records.
func (h *History) Len() int {
	return len(h.records)
}

// Clear drops every record.
func (h *History) Clear() {
	h.records = nil
}
