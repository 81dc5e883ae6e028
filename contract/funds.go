package contract

import (
	"errors"

	"github.com/shopspring/decimal"

	tmmath "github.com/tendermint/ats/libs/math"
	"github.com/tendermint/ats/types"
)

// escrow checks that the caller committed amount to the contract. Restricted
// denoms cannot be sent by the caller, so none may be attached and a marker
// transfer into the contract is emitted instead.
func (c *Contract) escrow(env Env, info Info, res *types.Response, amount types.Coin) error {
	restricted, err := c.markers.IsRestricted(amount.Denom)
	if err != nil {
		return err
	}
	if restricted {
		if types.HasFunds(info.Funds) {
			return types.ErrSentFundsOrderMismatch
		}
		res.AddTransfer(types.NewTransfer(true, amount, env.ContractAddress, info.Sender, env.ContractAddress))
		return nil
	}
	if !types.FundsEqual(info.Funds, amount) {
		return types.ErrSentFundsOrderMismatch
	}
	return nil
}

// pay emits a transfer of amount out of the contract to addr.
func (c *Contract) pay(env Env, res *types.Response, amount types.Coin, to string) error {
	restricted, err := c.markers.IsRestricted(amount.Denom)
	if err != nil {
		return err
	}
	res.AddTransfer(types.NewTransfer(restricted, amount, to, env.ContractAddress, env.ContractAddress))
	return nil
}

// parsePrice parses a strictly positive price with at most precision
// decimal places.
func parsePrice(s string, precision uint32, field string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(s)
	if err != nil || !p.IsPositive() || tmmath.ExceedsPrecision(p, precision) {
		return decimal.Decimal{}, types.NewErrInvalidFields(field)
	}
	return p, nil
}

// total returns price*size, which must be an integer that fits an amount.
func total(price decimal.Decimal, size tmmath.Uint128) (tmmath.Uint128, error) {
	t, err := tmmath.IntegerProduct(price, size)
	switch {
	case errors.Is(err, tmmath.ErrNonInteger):
		return tmmath.Uint128{}, types.ErrNonIntegerTotal
	case errors.Is(err, tmmath.ErrOverflowUint128):
		return tmmath.Uint128{}, types.ErrTotalOverflow
	}
	return t, err
}

// feeFor returns round_half_away(rate*amount).
func feeFor(rate decimal.Decimal, amount tmmath.Uint128) (tmmath.Uint128, error) {
	fee, err := tmmath.RoundedProduct(rate, amount)
	if errors.Is(err, tmmath.ErrOverflowUint128) {
		return tmmath.Uint128{}, types.ErrTotalOverflow
	}
	return fee, err
}

// bidFeeFor returns the part of a bid's original fee attributable to quote,
// round_half_away(fee*quote/original_quote).
func bidFeeFor(bid *types.BidOrder, quote tmmath.Uint128) (tmmath.Uint128, error) {
	if bid.Fee == nil || bid.Quote.Amount.IsZero() {
		return tmmath.ZeroUint128(), nil
	}
	fee, err := tmmath.RoundedRatio(bid.Fee.Amount, quote, bid.Quote.Amount)
	if errors.Is(err, tmmath.ErrOverflowUint128) {
		return tmmath.Uint128{}, types.ErrTotalOverflow
	}
	return fee, err
}

// checkSize requires size to be a non-zero multiple of increment no larger
// than limit.
func checkSize(size, increment, limit tmmath.Uint128) bool {
	return !size.IsZero() && size.IsMultipleOf(increment) && size.LTE(limit)
}
