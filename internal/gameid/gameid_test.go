package gameid

import (
	"strings"
	"testing"
	"time"

	"github.com/lox/bestia/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	id := New(nil).Generate()
	assert.Len(t, id, 26)
	assert.NoError(t, Validate(id))
}

func TestGenerateUnique(t *testing.T) {
	t.Parallel()

	g := New(nil)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := g.Generate()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateTimeSorted(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := New(randutil.New(3))

	var ids []string
	for i := 0; i < 10; i++ {
		at := base.Add(time.Duration(i) * time.Millisecond)
		g.now = func() time.Time { return at }
		ids = append(ids, g.Generate())
	}

	for i := 1; i < len(ids); i++ {
		assert.Negative(t, strings.Compare(ids[i-1], ids[i]), "ids not sorted: %s >= %s", ids[i-1], ids[i])
	}
}

func TestDeterministicRandSource(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a, b := New(randutil.New(5)), New(randutil.New(5))
	a.now = func() time.Time { return at }
	b.now = func() time.Time { return at }

	assert.Equal(t, a.Generate(), b.Generate())
}

func TestSequence(t *testing.T) {
	t.Parallel()

	s := NewSequence("p")
	assert.Equal(t, "p-1", s.Generate())
	assert.Equal(t, "p-2", s.Generate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"generated", New(nil).Generate(), false},
		{"too short", "01h5n0et5q6mt3v7ms123", true},
		{"too long", "01h5n0et5q6mt3v7ms1234abcdef", true},
		{"invalid character", "01h5n0et5q6mt3v7ms1234abcu", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.id)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
