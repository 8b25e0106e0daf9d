// Package money converts between decimal amounts and stored cents.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var ErrOutOfRange = errors.New("amount must be between 0 and 92233720368547758.07")

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Cents rounds d to whole cents. Negative amounts and amounts whose cents
// do not fit in an int64 are rejected.
func Cents(d decimal.Decimal) (int64, error) {
	c := d.Shift(2).Round(0)
	if c.IsNegative() || c.GreaterThan(maxCents) {
		return 0, ErrOutOfRange
	}

	return c.IntPart(), nil
}

// Amount turns cents back into a decimal amount.
func Amount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
