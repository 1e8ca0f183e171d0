package game

import (
	"slices"

	"github.com/lox/bestia/internal/money"
)

// Slots is the number of sub-hands played in every round.
const Slots = 3

// Phase is the stage of the live round.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseParticipants
	PhaseGrouping
	PhaseWinners
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseParticipants:
		return "participants"
	case PhaseGrouping:
		return "grouping"
	case PhaseWinners:
		return "winners"
	default:
		return "unknown"
	}
}

// Group is a set of players sharing one seat for a single round.
type Group struct {
	ID        string   `json:"id"`
	MemberIDs []string `json:"memberIds"`
}

// Has reports whether playerID belongs to the group.
func (g Group) Has(playerID string) bool {
	return slices.Contains(g.MemberIDs, playerID)
}

// Round is the live round context. Participants keeps selection order and
// includes every group member. Outsiders are the players who stayed out
// when participant selection was confirmed; only they may rejoin during
// grouping. Empty winner slots are legal until settlement.
type Round struct {
	Active       bool          `json:"active"`
	Phase        Phase         `json:"phase"`
	DealerID     string        `json:"dealerId,omitempty"`
	BasePot      money.Amount  `json:"basePot"`
	Participants []string      `json:"participants"`
	Outsiders    []string      `json:"outsiders,omitempty"`
	Groups       []Group       `json:"groups"`
	Winners      [Slots]string `json:"winners"`
}

func idleRound() Round {
	return Round{Phase: PhaseIdle}
}

func (r Round) clone() Round {
	r.Participants = slices.Clone(r.Participants)
	r.Outsiders = slices.Clone(r.Outsiders)
	if r.Groups != nil {
		groups := make([]Group, len(r.Groups))
		for i, g := range r.Groups {
			groups[i] = Group{ID: g.ID, MemberIDs: slices.Clone(g.MemberIDs)}
		}
		r.Groups = groups
	}
	return r
}

// HasParticipant reports whether playerID is playing the round.
func (r Round) HasParticipant(playerID string) bool {
	return slices.Contains(r.Participants, playerID)
}

// GroupOf returns the group playerID belongs to.
func (r Round) GroupOf(playerID string) (Group, bool) {
	for _, g := range r.Groups {
		if g.Has(playerID) {
			return g, true
		}
	}
	return Group{}, false
}

// Group returns the group with the given id.
func (r Round) Group(id string) (Group, bool) {
	for _, g := range r.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// WinnersComplete reports whether every sub-hand has a winner.
func (r Round) WinnersComplete() bool {
	for _, w := range r.Winners {
		if w == "" {
			return false
		}
	}
	return true
}

// soloParticipants are participants not seated through a group.
func (r Round) soloParticipants() []string {
	var out []string
	for _, id := range r.Participants {
		if _, grouped := r.GroupOf(id); !grouped {
			out = append(out, id)
		}
	}
	return out
}

func (r *Round) addParticipant(id string) {
	if !r.HasParticipant(id) {
		r.Participants = append(r.Participants, id)
	}
}

func (r *Round) removeParticipant(id string) {
	r.Participants = slices.DeleteFunc(r.Participants, func(p string) bool { return p == id })
}
