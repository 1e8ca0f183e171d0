// Package gameid generates identifiers for players and round groups.
//
// Identifiers are UUIDv7 values rendered as 26 lowercase Crockford base32
// characters, so they sort by creation time and survive a JSON round trip
// as plain strings.
package gameid

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator produces unique identifiers.
type Generator interface {
	Generate() string
}

// RandSource supplies randomness for deterministic tests.
type RandSource interface {
	IntN(n int) int
}

// UUIDv7 generates time-ordered identifiers.
type UUIDv7 struct {
	randSource RandSource
	now        func() time.Time
}

// New returns a generator backed by crypto/rand, or by randSource when it
// is non-nil.
func New(randSource RandSource) *UUIDv7 {
	return &UUIDv7{randSource: randSource, now: time.Now}
}

// Generate returns a new identifier.
func (g *UUIDv7) Generate() string {
	var uuid [16]byte

	ms := g.now().UnixMilli()
	for i := 0; i < 6; i++ {
		uuid[i] = byte(ms >> (40 - 8*i))
	}

	if g.randSource != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(g.randSource.IntN(256))
		}
	} else if _, err := rand.Read(uuid[6:]); err != nil {
		panic("gameid: failed to read random bytes: " + err.Error())
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // RFC 4122 variant

	return encoding.EncodeToString(uuid[:])
}

// Sequence yields prefix-1, prefix-2, ... and is meant for tests and
// fixtures where readable identifiers matter more than uniqueness across
// processes.
type Sequence struct {
	prefix string
	n      atomic.Int64
}

// NewSequence returns a sequential generator.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Generate returns the next identifier in the sequence.
func (s *Sequence) Generate() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1))
}

// Validate checks that id looks like a UUIDv7 identifier.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("id must be exactly 26 characters, got %d", len(id))
	}
	for i, r := range id {
		if !strings.ContainsRune(alphabet, r) {
			return fmt.Errorf("invalid character %c at position %d", r, i)
		}
	}
	raw, err := encoding.DecodeString(id)
	if err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	if raw[6]>>4 != 7 {
		return fmt.Errorf("id is not a version 7 uuid")
	}
	return nil
}
