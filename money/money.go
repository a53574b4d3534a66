/*
Package money is the monetary kernel: integer cents, basis-point rates,
one rounding rule.

PURPOSE:
  Every monetary value in the engine is an int64 number of cents and
  every rate is an int64 number of basis points (1% = 100 bps). This
  package is the only place where amounts and rates are ever multiplied
  or divided, so the rounding behavior is defined exactly once.

ROUNDING RULE:
  Round half away from zero, for positive AND negative amounts.
  decimal.Decimal.Round implements exactly this, which is why the
  kernel delegates to shopspring/decimal instead of float math.

  MulRate(1005, 500)  = round(1005 * 0.05)  = 50   (50.25 -> 50)
  MulRate(1010, 500)  = round(1010 * 0.05)  = 51   (50.50 -> 51)
  MulRate(-1010, 500) = round(-1010 * 0.05) = -51  (-50.50 -> -51)

PRECONDITIONS:
  Cents and bps are int64 throughout the engine, so a non-integer value
  cannot exist past the input boundary. CentsFromJSON is that boundary:
  it rejects any JSON number carrying a fractional part with an error
  naming the offending field and value, before the pipeline runs.

SEE ALSO:
  - canonical/: fingerprints the values this package produces
  - fiscal/normalize.go: uses SplitGross for HT/VAT splits
*/
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// BpsScale is the basis-point denominator: 10,000 bps = 100%.
const BpsScale = 10000

var bpsScale = decimal.NewFromInt(BpsScale)

// =============================================================================
// RATE ARITHMETIC
// =============================================================================

// MulRate applies a basis-point rate to an amount in cents:
// round(amount * rate / 10000), half away from zero.
func MulRate(amountCents, rateBps int64) int64 {
	product := decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromInt(rateBps)).
		Div(bpsScale)
	return product.Round(0).IntPart()
}

// SplitGross splits a tax-inclusive amount into net and tax parts for a
// basis-point rate:
//
//	net = round(gross * 10000 / (10000 + rate))
//	tax = gross - net
//
// The pair always reconciles exactly: net + tax == gross.
func SplitGross(grossCents, rateBps int64) (netCents, taxCents int64) {
	if rateBps == 0 {
		return grossCents, 0
	}
	net := decimal.NewFromInt(grossCents).
		Mul(bpsScale).
		Div(decimal.NewFromInt(BpsScale + rateBps)).
		Round(0).IntPart()
	return net, grossCents - net
}

// ScaleRatio scales an amount by an arbitrary integer ratio:
// round(amount * num / den), half away from zero. Used for household
// quotient math where the factor is not a basis-point rate.
func ScaleRatio(amountCents, num, den int64) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromInt(num)).
		Div(decimal.NewFromInt(den)).
		Round(0).IntPart()
}

// Min returns the smaller of two cent amounts.
func Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two cent amounts.
func Max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// =============================================================================
// BOUNDARY GUARD - Fail fast on non-integer cents
// =============================================================================

// NonIntegerError reports a monetary value that is not a whole number of
// cents. This is a programming or input error, never coerced.
type NonIntegerError struct {
	Field string
	Value string
}

func (e *NonIntegerError) Error() string {
	return fmt.Sprintf("non-integer monetary value for %q: %s", e.Field, e.Value)
}

// CentsFromJSON converts a JSON number into integer cents, failing fast
// on any fractional part. The field name is carried into the error so
// the caller can report the exact offending value and location.
func CentsFromJSON(field string, n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil || !d.IsInteger() {
		return 0, &NonIntegerError{Field: field, Value: n.String()}
	}
	return d.IntPart(), nil
}
