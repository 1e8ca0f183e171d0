// Package money implements cent-exact monetary amounts.
//
// Amounts are stored as int64 minor units so that splitting, summing and
// comparing never drift the way float64 arithmetic does. Conversion from
// user input or float64 rounds half-up to the nearest cent.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a signed monetary value in cents.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// MaxAmount bounds the magnitude of any parsed amount, leaving headroom for
// sums and the doubling in MulFrac without overflowing int64.
const MaxAmount Amount = math.MaxInt64 / 4

// ErrInvalidAmount is returned when input cannot be parsed as a finite amount
// within MaxAmount.
var ErrInvalidAmount = errors.New("invalid amount")

// Cents builds an amount from minor units.
func Cents(c int64) Amount {
	return Amount(c)
}

// FromFloat converts a decimal value to cents, rounding half-up.
// NaN and infinities convert to zero; values beyond MaxAmount saturate.
func FromFloat(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if math.Abs(v*100) > float64(MaxAmount) {
		if v < 0 {
			return -MaxAmount
		}
		return MaxAmount
	}
	// math.Round rounds half away from zero; shift negatives so that
	// half-cents always go up.
	if v < 0 {
		return Amount(-int64(math.Floor(-v*100 + 0.5 - 1e-9)))
	}
	return Amount(int64(math.Floor(v*100 + 0.5 + 1e-9)))
}

// Parse reads a decimal amount. Both "0.30" and "0,30" are accepted.
func Parse(s string) (Amount, error) {
	raw := strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidAmount, s)
	}
	if math.Abs(v*100) > float64(MaxAmount) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	return FromFloat(v), nil
}

// Cents returns the amount in minor units.
func (a Amount) Cents() int64 {
	return int64(a)
}

// Float returns the amount as a decimal value. Use only for display.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// IsZero reports whether the amount is exactly zero cents.
func (a Amount) IsZero() bool {
	return a == 0
}

// MulFrac returns a*num/den rounded half-up to the nearest cent.
// den must be positive and a*num non-negative.
func (a Amount) MulFrac(num, den int64) Amount {
	x := int64(a) * num
	return Amount((2*x + den) / (2 * den))
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// String formats the amount with two decimals and a '.' separator.
func (a Amount) String() string {
	sign := ""
	c := int64(a)
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}
	v, err := Parse(raw)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
