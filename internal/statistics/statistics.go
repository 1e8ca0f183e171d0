// Package statistics summarises each player's results over the settled
// hands of a game.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/money"
)

// Statistics tracks one player's results across the hands they were
// charged or paid in.
type Statistics struct {
	PlayerID string
	Name     string

	Hands  int
	Wins   int // hands with a positive delta
	Losses int // hands with a negative delta
	Passes int // no-contest rounds where the player paid the dealer stake

	Net    money.Amount
	Best   money.Amount
	Worst  money.Amount
	sum2   float64        // Sum of squares for variance calculation
	Values []money.Amount // Every delta, for median calculation
}

// Add incorporates a hand. Hands that did not touch the player are
// ignored.
func (s *Statistics) Add(h ledger.HandRecord) {
	d, ok := h.Delta(s.PlayerID)
	if !ok {
		return
	}

	if s.Hands == 0 || d > s.Best {
		s.Best = d
	}
	if s.Hands == 0 || d < s.Worst {
		s.Worst = d
	}

	s.Hands++
	s.Net += d
	s.sum2 += d.Float() * d.Float()
	s.Values = append(s.Values, d)

	switch {
	case d > 0:
		s.Wins++
	case d < 0:
		s.Losses++
		if len(h.Deltas) == 1 && h.DealerID == s.PlayerID {
			s.Passes++
		}
	}
}

// Mean returns the average delta per hand.
func (s *Statistics) Mean() money.Amount {
	if s.Hands == 0 {
		return 0
	}
	return money.FromFloat(s.Net.Float() / float64(s.Hands))
}

// StdDev returns the sample standard deviation of the deltas
func (s *Statistics) StdDev() money.Amount {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Net.Float() / float64(s.Hands)
	variance := (s.sum2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
	if variance <= 0 {
		return 0
	}
	return money.FromFloat(math.Sqrt(variance))
}

// Median returns the median delta.
func (s *Statistics) Median() money.Amount {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]money.Amount, len(s.Values))
	copy(sorted, s.Values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	if n%2 == 0 {
		return money.FromFloat((sorted[n/2-1].Float() + sorted[n/2].Float()) / 2)
	}
	return sorted[n/2]
}

// WinRate returns the share of the player's hands that paid out.
func (s *Statistics) WinRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Hands)
}

// Validate checks the counters against each other and against the
// player's running total.
func (s *Statistics) Validate(total money.Amount) error {
	if s.Net != total {
		return fmt.Errorf("net mismatch for %s: deltas sum to %s, total is %s", s.PlayerID, s.Net, total)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)",
			len(s.Values), s.Hands)
	}
	if s.Wins+s.Losses > s.Hands {
		return fmt.Errorf("wins and losses (%d) exceed hands (%d)", s.Wins+s.Losses, s.Hands)
	}
	if s.Passes > s.Losses {
		return fmt.Errorf("passes (%d) exceed losses (%d)", s.Passes, s.Losses)
	}
	return nil
}

// ForPlayers builds statistics for every player, in roster order.
func ForPlayers(players []ledger.Player, hands []ledger.HandRecord) []*Statistics {
	out := make([]*Statistics, len(players))
	for i, p := range players {
		s := &Statistics{PlayerID: p.ID, Name: p.Name}
		for _, h := range hands {
			s.Add(h)
		}
		out[i] = s
	}
	return out
}
