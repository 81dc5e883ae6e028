package math

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrOverflowUint128 = errors.New("uint128 overflow")
var ErrUnderflowUint128 = errors.New("uint128 underflow")
var ErrDivideByZero = errors.New("division by zero")
var ErrNonInteger = errors.New("value is not an integer")
var ErrNegative = errors.New("value is negative")

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Uint128 is an unsigned 128-bit integer. The zero value is 0.
// It encodes to JSON as a decimal string and accepts either a string or a
// bare number when decoding.
type Uint128 struct {
	hi, lo uint64
}

// ZeroUint128 returns 0.
func ZeroUint128() Uint128 { return Uint128{} }

// NewUint128 returns v as a Uint128.
func NewUint128(v uint64) Uint128 { return Uint128{lo: v} }

// ParseUint128 parses a base 10 string.
func ParseUint128(s string) (Uint128, error) {
	b, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return Uint128{}, fmt.Errorf("invalid uint128 %q", s)
	}
	return Uint128FromBig(b)
}

// MustParseUint128 is like ParseUint128 but panics on error.
func MustParseUint128(s string) Uint128 {
	u, err := ParseUint128(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Uint128FromBig converts b, which must be in [0, 2^128).
func Uint128FromBig(b *big.Int) (Uint128, error) {
	if b.Sign() < 0 {
		return Uint128{}, ErrNegative
	}
	if b.Cmp(maxUint128) > 0 {
		return Uint128{}, ErrOverflowUint128
	}
	lo := new(big.Int).And(b, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(b, 64)
	return Uint128{hi: hi.Uint64(), lo: lo.Uint64()}, nil
}

// Uint128FromDecimal converts an integral, non-negative decimal.
func Uint128FromDecimal(d decimal.Decimal) (Uint128, error) {
	if d.IsNegative() {
		return Uint128{}, ErrNegative
	}
	if !d.IsInteger() {
		return Uint128{}, ErrNonInteger
	}
	return Uint128FromBig(d.BigInt())
}

// Big returns u as a new big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.lo))
}

// Decimal returns u as an integral decimal.
func (u Uint128) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(u.Big(), 0)
}

// Uint64 returns u as a uint64 and whether it fits.
func (u Uint128) Uint64() (uint64, bool) {
	return u.lo, u.hi == 0
}

func (u Uint128) IsZero() bool { return u.hi == 0 && u.lo == 0 }

// Cmp returns -1, 0 or +1 like big.Int.Cmp.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.hi < v.hi:
		return -1
	case u.hi > v.hi:
		return 1
	case u.lo < v.lo:
		return -1
	case u.lo > v.lo:
		return 1
	}
	return 0
}

func (u Uint128) Equal(v Uint128) bool { return u == v }
func (u Uint128) LT(v Uint128) bool    { return u.Cmp(v) < 0 }
func (u Uint128) GT(v Uint128) bool    { return u.Cmp(v) > 0 }
func (u Uint128) LTE(v Uint128) bool   { return u.Cmp(v) <= 0 }
func (u Uint128) GTE(v Uint128) bool   { return u.Cmp(v) >= 0 }

// Add returns u+v or ErrOverflowUint128.
func (u Uint128) Add(v Uint128) (Uint128, error) {
	lo, carry := bits.Add64(u.lo, v.lo, 0)
	hi, carry := bits.Add64(u.hi, v.hi, carry)
	if carry != 0 {
		return Uint128{}, ErrOverflowUint128
	}
	return Uint128{hi: hi, lo: lo}, nil
}

// Sub returns u-v or ErrUnderflowUint128.
func (u Uint128) Sub(v Uint128) (Uint128, error) {
	lo, borrow := bits.Sub64(u.lo, v.lo, 0)
	hi, borrow := bits.Sub64(u.hi, v.hi, borrow)
	if borrow != 0 {
		return Uint128{}, ErrUnderflowUint128
	}
	return Uint128{hi: hi, lo: lo}, nil
}

// SaturatingSub returns u-v, or 0 when v > u.
func (u Uint128) SaturatingSub(v Uint128) Uint128 {
	r, err := u.Sub(v)
	if err != nil {
		return Uint128{}
	}
	return r
}

// Mul returns u*v or ErrOverflowUint128.
func (u Uint128) Mul(v Uint128) (Uint128, error) {
	if u.hi != 0 && v.hi != 0 {
		return Uint128{}, ErrOverflowUint128
	}
	hi, lo := bits.Mul64(u.lo, v.lo)
	c1hi, c1 := bits.Mul64(u.hi, v.lo)
	c2hi, c2 := bits.Mul64(u.lo, v.hi)
	if c1hi != 0 || c2hi != 0 {
		return Uint128{}, ErrOverflowUint128
	}
	var carry uint64
	hi, carry = bits.Add64(hi, c1, 0)
	if carry != 0 {
		return Uint128{}, ErrOverflowUint128
	}
	hi, carry = bits.Add64(hi, c2, 0)
	if carry != 0 {
		return Uint128{}, ErrOverflowUint128
	}
	return Uint128{hi: hi, lo: lo}, nil
}

// QuoRem returns u/v and u%v.
func (u Uint128) QuoRem(v Uint128) (q, r Uint128, err error) {
	if v.IsZero() {
		return Uint128{}, Uint128{}, ErrDivideByZero
	}
	if u.hi == 0 && v.hi == 0 {
		return Uint128{lo: u.lo / v.lo}, Uint128{lo: u.lo % v.lo}, nil
	}
	bq, br := new(big.Int).QuoRem(u.Big(), v.Big(), new(big.Int))
	q, _ = Uint128FromBig(bq)
	r, _ = Uint128FromBig(br)
	return q, r, nil
}

// IsMultipleOf reports whether v divides u. Zero divides nothing.
func (u Uint128) IsMultipleOf(v Uint128) bool {
	_, r, err := u.QuoRem(v)
	return err == nil && r.IsZero()
}

// Min returns the smaller of u and v.
func Min(u, v Uint128) Uint128 {
	if u.LTE(v) {
		return u
	}
	return v
}

func (u Uint128) String() string {
	if u.hi == 0 {
		return fmt.Sprintf("%d", u.lo)
	}
	return u.Big().String()
}

func (u Uint128) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

func (u *Uint128) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*u = Uint128{}
		return nil
	}
	v, err := ParseUint128(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
