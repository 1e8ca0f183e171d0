// Package split divides monetary amounts fairly between beneficiaries.
package split

import (
	rand "math/rand/v2"

	"github.com/lox/bestia/internal/money"
)

// Allocator splits amounts into cent-exact shares. Cents that do not divide
// evenly are handed out one each to a random subset of beneficiaries.
type Allocator struct {
	rng *rand.Rand
}

// New returns an allocator drawing tie-breaks from rng.
func New(rng *rand.Rand) *Allocator {
	return &Allocator{rng: rng}
}

// Split divides amount between ids. Every id receives floor(amount/n) and
// exactly amount mod n of them, chosen uniformly at random, receive one
// extra cent. An empty id list yields an empty result.
func (a *Allocator) Split(amount money.Amount, ids []string) map[string]money.Amount {
	out := make(map[string]money.Amount, len(ids))
	n := int64(len(ids))
	if n == 0 {
		return out
	}

	units := amount.Cents()
	base := units / n
	remainder := units - base*n

	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	a.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for _, id := range shuffled {
		out[id] += money.Cents(base)
	}
	for i := int64(0); i < remainder; i++ {
		out[shuffled[i]]++
	}
	return out
}
