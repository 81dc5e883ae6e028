package math

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundedProduct(t *testing.T) {
	testCases := []struct {
		rate   string
		amount uint64
		want   string
	}{
		{"0.01", 149, "1"},
		{"0.01", 150, "2"},
		{"0.10", 200, "20"},
		{"0.10", 5, "1"},
		{"0.10", 4, "0"},
		{"0", 1000, "0"},
	}
	for _, tc := range testCases {
		got, err := RoundedProduct(decimal.RequireFromString(tc.rate), NewUint128(tc.amount))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.String(), "%s x %d", tc.rate, tc.amount)
	}
}

func TestIntegerProduct(t *testing.T) {
	p, err := IntegerProduct(decimal.RequireFromString("2.5"), NewUint128(100))
	require.NoError(t, err)
	assert.Equal(t, "250", p.String())

	_, err = IntegerProduct(decimal.RequireFromString("2.5"), NewUint128(3))
	assert.ErrorIs(t, err, ErrNonInteger)

	_, err = IntegerProduct(decimal.RequireFromString("2"), maxU128())
	assert.ErrorIs(t, err, ErrOverflowUint128)
}

func TestRoundedRatio(t *testing.T) {
	testCases := []struct {
		num, mul, den uint64
		want          string
	}{
		{100, 500, 1000, "50"},
		{100, 10, 1000, "1"},
		{10, 50, 100, "5"},
		{10, 45, 100, "5"},
		{10, 44, 100, "4"},
		{20, 100, 200, "10"},
	}
	for _, tc := range testCases {
		got, err := RoundedRatio(NewUint128(tc.num), NewUint128(tc.mul), NewUint128(tc.den))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.String())
	}

	_, err := RoundedRatio(NewUint128(1), NewUint128(1), ZeroUint128())
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestExceedsPrecision(t *testing.T) {
	testCases := []struct {
		price     string
		precision uint32
		want      bool
	}{
		{"1", 0, false},
		{"1.5", 0, true},
		{"1.5", 1, false},
		{"1.25", 1, true},
		{"1.250", 2, false},
		{"0.000000000000000001", 18, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ExceedsPrecision(decimal.RequireFromString(tc.price), tc.precision), tc.price)
	}
}
