// Package money provides the fixed-precision monetary type used by the
// ledger and the transaction engine.
//
// Amounts are stored as an int64 count of 1/10000 units - four decimal
// places, the precision of the input format. Internal arithmetic is checked:
// Add and Sub report overflow instead of wrapping, so a single bad record
// can be rejected without poisoning the rest of the run.
//
// Parsing and rendering at the I/O boundary go through
// github.com/shopspring/decimal so that values like ".10" or "1.5" are
// accepted and rendered back at the full four-digit precision.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional decimal digits an Amount carries.
const Places = 4

// Amount is a monetary value in 1/10000 units.
//
// The zero value is zero money. Amounts may be negative: the engine allows
// available balances to go below zero on a withdrawal chargeback.
type Amount int64

// ErrOverflow is returned by Add and Sub when the result does not fit in
// the underlying representation.
var ErrOverflow = errors.New("amount overflow")

// Add returns a + b, or ErrOverflow if the sum does not fit.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%v + %v: %w", a, b, ErrOverflow)
	}
	return sum, nil
}

// Sub returns a - b, or ErrOverflow if the difference does not fit.
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, fmt.Errorf("%v - %v: %w", a, b, ErrOverflow)
	}
	return diff, nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a > 0
}

// Decimal returns the amount as a shopspring decimal at full precision.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Places)
}

// String renders the amount with exactly four fractional digits,
// e.g. Amount(15000) -> "1.5000".
func (a Amount) String() string {
	return a.Decimal().StringFixed(Places)
}

// Parse converts a plain decimal string into an Amount.
//
// Digits beyond the fourth decimal place are truncated toward zero, matching
// the precision contract of the input format ("0.00001" parses to zero).
// Values whose unit count does not fit in an int64 are rejected.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	units := d.Shift(Places).Truncate(0)
	bi := units.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("amount %q out of range: %w", s, ErrOverflow)
	}

	return Amount(bi.Int64()), nil
}
