// Package money holds exact currency amounts in minor units (1/100 of the
// display unit). Menu prices and order totals never pass through float64.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Errors returned when parsing or computing amounts.
var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must be >= 0")
	ErrTooPrecise     = errors.New("amount has more than 2 decimal places")
	ErrOverflow       = errors.New("amount overflows")
)

const minorExp = 2

// Amount is a non-negative value in minor currency units.
type Amount int64

// Parse reads a decimal string such as "20", "12.5" or "7.25".
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// FromDecimal converts d to minor units without rounding.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	if !d.Equal(d.Truncate(minorExp)) {
		return 0, ErrTooPrecise
	}
	minor := d.Shift(minorExp)
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, ErrOverflow
	}
	return Amount(minor.IntPart()), nil
}

// Mul returns a*qty, failing on overflow.
func (a Amount) Mul(qty int) (Amount, error) {
	if qty < 0 {
		return 0, ErrNegativeAmount
	}
	if qty != 0 && int64(a) > math.MaxInt64/int64(qty) {
		return 0, ErrOverflow
	}
	return a * Amount(qty), nil
}

// Add returns a+b, failing on overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if int64(a) > math.MaxInt64-int64(b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Decimal returns the amount in display units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -minorExp)
}

// String renders the amount without trailing zeros ("90", "12.5"), which is
// how the Total column is written to the order medium.
func (a Amount) String() string {
	return a.Decimal().String()
}

// Fixed renders the amount with exactly two decimals ("90.00") for API responses.
func (a Amount) Fixed() string {
	return a.Decimal().StringFixed(minorExp)
}
