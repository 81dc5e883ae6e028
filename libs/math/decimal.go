package math

import (
	"github.com/shopspring/decimal"
)

// RoundHalfAway rounds d to an integer, halves away from zero.
func RoundHalfAway(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// MulAmount returns d*amount.
func MulAmount(d decimal.Decimal, amount Uint128) decimal.Decimal {
	return d.Mul(amount.Decimal())
}

// IntegerProduct returns d*amount, which must be integral and fit a Uint128.
// A fractional product returns ErrNonInteger and a product that does not fit
// returns ErrOverflowUint128.
func IntegerProduct(d decimal.Decimal, amount Uint128) (Uint128, error) {
	return Uint128FromDecimal(MulAmount(d, amount))
}

// RoundedProduct returns round_half_away(d*amount).
func RoundedProduct(d decimal.Decimal, amount Uint128) (Uint128, error) {
	return Uint128FromDecimal(RoundHalfAway(MulAmount(d, amount)))
}

// RoundedRatio returns round_half_away(num*mul/den) without an intermediate
// truncation.
func RoundedRatio(num, mul, den Uint128) (Uint128, error) {
	if den.IsZero() {
		return Uint128{}, ErrDivideByZero
	}
	n := num.Decimal().Mul(mul.Decimal())
	return Uint128FromDecimal(n.DivRound(den.Decimal(), 0))
}

// ExceedsPrecision reports whether d carries more than precision decimal
// places.
func ExceedsPrecision(d decimal.Decimal, precision uint32) bool {
	return !d.Shift(int32(precision)).IsInteger()
}
