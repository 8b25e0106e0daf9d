package importer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dermanow/dermanow/internal/money"
)

var (
	errEmpty    = errors.New("is empty")
	errNegative = errors.New("must not be negative")
	errFraction = errors.New("must be a whole number")
	errTooLarge = errors.New("is too large")
)

var maxInt = decimal.NewFromInt(math.MaxInt64)

// ParsePrice turns a price cell into cents. It accepts "1234.56",
// "1,234.56", "1.234,56", "12,50" and an optional RM prefix.
func ParsePrice(s string) (int64, error) {
	d, err := parseNumber(s)
	if err != nil {
		return 0, err
	}

	if d.IsNegative() {
		return 0, errNegative
	}

	cents, err := money.Cents(d)
	if err != nil {
		return 0, errTooLarge
	}

	return cents, nil
}

// ParseQuantity accepts whole numbers, also when written as "10.0".
func ParseQuantity(s string) (int64, error) {
	d, err := parseNumber(s)
	if err != nil {
		return 0, err
	}

	if !d.Equal(d.Truncate(0)) {
		return 0, errFraction
	}

	if d.IsNegative() {
		return 0, errNegative
	}

	if d.GreaterThan(maxInt) {
		return 0, errTooLarge
	}

	return d.IntPart(), nil
}

func parseNumber(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "RM"), "rm")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "\u00a0", "")

	if clean == "" {
		return decimal.Zero, errEmpty
	}

	clean = canonicalSeparators(clean)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("is not a number: %q", s)
	}

	return d, nil
}

// canonicalSeparators rewrites the number so "." is the only decimal mark.
// With both marks present the later one is decimal. A lone comma is
// decimal unless exactly three digits follow it; a lone dot is always
// decimal unless it repeats.
func canonicalSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}

		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			return strings.ReplaceAll(s, ",", "")
		}

		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}

	return s
}
