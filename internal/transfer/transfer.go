// Package transfer computes the payments that settle a game.
package transfer

import (
	"sort"

	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/money"
)

// Epsilon is the largest balance treated as already settled. Totals are
// whole cents, so anything strictly below half a cent is exactly zero.
const Epsilon = money.Zero

// Transfer is a single payment from a debtor to a creditor.
type Transfer struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Amount money.Amount `json:"amount"`
}

type balance struct {
	id     string
	amount money.Amount
}

// Compute greedily matches the largest debtor with the largest creditor
// until one side runs out. It does not guarantee the minimum number of
// transfers but never produces more than len(players)-1 of them.
func Compute(players []ledger.Player) []Transfer {
	var debtors, creditors []balance
	for _, p := range players {
		switch {
		case p.Total < -Epsilon:
			debtors = append(debtors, balance{id: p.ID, amount: -p.Total})
		case p.Total > Epsilon:
			creditors = append(creditors, balance{id: p.ID, amount: p.Total})
		}
	}

	byAmount := func(s []balance) func(i, j int) bool {
		return func(i, j int) bool { return s[i].amount > s[j].amount }
	}
	sort.SliceStable(debtors, byAmount(debtors))
	sort.SliceStable(creditors, byAmount(creditors))

	var out []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amt := money.Min(debtors[i].amount, creditors[j].amount)
		if amt > 0 {
			out = append(out, Transfer{From: debtors[i].id, To: creditors[j].id, Amount: amt})
		}
		debtors[i].amount -= amt
		creditors[j].amount -= amt
		if debtors[i].amount <= Epsilon {
			i++
		}
		if creditors[j].amount <= Epsilon {
			j++
		}
	}
	return out
}

// Apply returns the balances left after performing transfers.
func Apply(players []ledger.Player, transfers []Transfer) map[string]money.Amount {
	out := make(map[string]money.Amount, len(players))
	for _, p := range players {
		out[p.ID] = p.Total
	}
	for _, t := range transfers {
		out[t.From] += t.Amount
		out[t.To] -= t.Amount
	}
	return out
}
