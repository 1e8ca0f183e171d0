package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		want Amount
	}{
		{"whole", 1, 100},
		{"stake", 0.30, 30},
		{"third of a euro", 1.0 / 3, 33},
		{"two thirds", 2.0 / 3, 67},
		{"half cent rounds up", 0.125, 13},
		{"negative", -0.30, -30},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"huge saturates", 1e300, MaxAmount},
		{"huge negative saturates", -1e300, -MaxAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromFloat(tc.in))
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("dot and comma separators", func(t *testing.T) {
		a, err := Parse("0.30")
		require.NoError(t, err)
		assert.Equal(t, Cents(30), a)

		a, err = Parse(" 0,30 ")
		require.NoError(t, err)
		assert.Equal(t, Cents(30), a)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, in := range []string{"", "abc", "NaN", "Inf", "-Inf"} {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
		}
	})

	t.Run("rejects out of range", func(t *testing.T) {
		for _, in := range []string{"1e17", "-1e17", "9223372036854775807", "1e300"} {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
		}
	})

	t.Run("large values within range", func(t *testing.T) {
		a, err := Parse("1e15")
		require.NoError(t, err)
		assert.Equal(t, Cents(100_000_000_000_000_000), a)
	})

	t.Run("negative values parse", func(t *testing.T) {
		a, err := Parse("-1.5")
		require.NoError(t, err)
		assert.Equal(t, Cents(-150), a)
	})
}

func TestMulFrac(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Cents(33), Cents(100).MulFrac(1, 3))
	assert.Equal(t, Cents(67), Cents(100).MulFrac(2, 3))
	assert.Equal(t, Cents(100), Cents(100).MulFrac(3, 3))
	assert.Equal(t, Cents(83), Cents(250).MulFrac(1, 3))
	assert.Equal(t, Cents(0), Cents(1).MulFrac(1, 3))
	assert.Equal(t, Cents(1), Cents(2).MulFrac(1, 3))
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.00", Zero.String())
	assert.Equal(t, "1.30", Cents(130).String())
	assert.Equal(t, "-0.05", Cents(-5).String())
	assert.Equal(t, "12.00", Cents(1200).String())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Pot Amount `json:"pot"`
	}

	data, err := json.Marshal(wrapper{Pot: 230})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pot":2.30}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"pot":1.3}`), &w))
	assert.Equal(t, Cents(130), w.Pot)

	require.NoError(t, json.Unmarshal([]byte(`{"pot":"0,30"}`), &w))
	assert.Equal(t, Cents(30), w.Pot)

	assert.Error(t, json.Unmarshal([]byte(`{"pot":"lots"}`), &w))
}

func TestFormatter(t *testing.T) {
	t.Parallel()

	en := NewFormatter("en", "€")
	assert.Equal(t, "€ 1.30", en.Format(130))
	assert.Equal(t, "-€ 0.30", en.Format(-30))
	assert.Equal(t, "+€ 0.33", en.Signed(33))
	assert.Equal(t, "0.00", en.Number(0))

	it := NewFormatter("it", "€")
	assert.Equal(t, "1,30", it.Number(130))

	fallback := NewFormatter("not a locale!", "")
	assert.Equal(t, "2.30", fallback.Format(230))
}
