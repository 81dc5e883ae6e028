package contract

import (
	"github.com/shopspring/decimal"

	tmmath "github.com/tendermint/ats/libs/math"
	"github.com/tendermint/ats/types"
)

func (c *Contract) executeMatch(env Env, info Info, ci *types.ContractInfo, msg *types.ExecuteMatch) (*types.Response, error) {
	if types.HasFunds(info.Funds) {
		return nil, types.ErrExecuteWithFunds
	}
	if !ci.IsExecutor(info.Sender) {
		return nil, types.ErrUnauthorized
	}

	ask, err := c.getAsk(msg.AskID)
	if err != nil {
		return nil, err
	}
	bid, err := c.getBid(msg.BidID)
	if err != nil {
		return nil, err
	}

	if ask.Quote != bid.Quote.Denom {
		return nil, types.ErrUnsupportedQuoteDenom
	}

	askPrice, err := parsePrice(ask.Price, types.MaxPricePrecision, "AskOrder.price")
	if err != nil {
		return nil, err
	}
	bidPrice, err := bid.PriceDecimal()
	if err != nil {
		return nil, types.NewErrInvalidFields("BidOrder.price")
	}
	price, err := parsePrice(msg.Price, types.MaxPricePrecision, "ExecuteMsg.price")
	if err != nil {
		return nil, err
	}

	switch askPrice.Cmp(bidPrice) {
	case -1:
		if !price.Equal(askPrice) && !price.Equal(bidPrice) {
			return nil, types.ErrInvalidExecutePrice
		}
	case 0:
		if !price.Equal(askPrice) {
			return nil, types.ErrInvalidExecutePrice
		}
	default:
		return nil, types.ErrAskBidPriceMismatch
	}

	size := msg.Size
	remainingBase := bid.RemainingBase()
	if size.GT(ask.Size) || size.GT(remainingBase) || !size.IsMultipleOf(ci.SizeIncrement) {
		return nil, types.ErrInvalidExecuteSize
	}

	if ask.Class.IsPending() {
		return nil, types.ErrAskOrderNotReady{CurrentStatus: ask.Class.Convertible.String()}
	}

	gross, err := total(price, size)
	if err != nil {
		return nil, err
	}

	// ask fee is taken out of the proceeds
	askFee := tmmath.ZeroUint128()
	if ci.AskFeeInfo != nil {
		rate, err := ci.AskFeeInfo.RateDecimal()
		if err != nil {
			return nil, err
		}
		if askFee, err = feeFor(rate, gross); err != nil {
			return nil, err
		}
		askFee = tmmath.Min(askFee, gross)
	}
	net := gross.SaturatingSub(askFee)

	// bid fee is the escrowed fee attributable to the gross amount
	bidFee, err := bidFeeFor(bid, gross)
	if err != nil {
		return nil, err
	}
	bidFee = tmmath.Min(bidFee, bid.RemainingFee())
	if !bidFee.IsZero() && ci.BidFeeInfo == nil {
		return nil, types.ErrBidFeeAccountMissing
	}

	quoteRefund, feeRefund, err := matchRefund(bid, bidPrice, price, size, gross, bidFee)
	if err != nil {
		return nil, err
	}

	if err := bid.Apply(types.BidAction{Kind: types.BidActionFill, Base: size, Quote: gross, Fee: bidFee}); err != nil {
		return nil, err
	}
	if err := bid.Apply(types.BidAction{Kind: types.BidActionRefund, Quote: quoteRefund, Fee: feeRefund}); err != nil {
		return nil, err
	}

	quote := func(amount tmmath.Uint128) types.Coin {
		return types.Coin{Denom: bid.Quote.Denom, Amount: amount}
	}

	res := types.NewResponse()
	if ci.AskFeeInfo != nil {
		if err := c.pay(env, res, quote(askFee), ci.AskFeeInfo.Account); err != nil {
			return nil, err
		}
	}
	if ci.BidFeeInfo != nil {
		if err := c.pay(env, res, quote(bidFee), ci.BidFeeInfo.Account); err != nil {
			return nil, err
		}
	}

	if ready := ask.Class.Ready(); ready != nil {
		converted := types.Coin{Denom: ready.ConvertedBase.Denom, Amount: size}
		if err := c.pay(env, res, converted, bid.Owner); err != nil {
			return nil, err
		}
		if err := c.pay(env, res, types.Coin{Denom: ask.Base, Amount: size}, ready.Approver); err != nil {
			return nil, err
		}
		if err := c.pay(env, res, quote(net), ready.Approver); err != nil {
			return nil, err
		}
	} else {
		if err := c.pay(env, res, quote(net), ask.Owner); err != nil {
			return nil, err
		}
		if err := c.pay(env, res, types.Coin{Denom: ask.Base, Amount: size}, bid.Owner); err != nil {
			return nil, err
		}
	}

	if err := c.pay(env, res, quote(quoteRefund), bid.Owner); err != nil {
		return nil, err
	}
	if err := c.pay(env, res, quote(feeRefund), bid.Owner); err != nil {
		return nil, err
	}

	ask.Size = ask.Size.SaturatingSub(size)
	if ready := ask.Class.Ready(); ready != nil {
		ready.ConvertedBase.Amount = ask.Size
	}
	if ask.Size.IsZero() {
		c.store.DeleteAsk(ask.ID)
	} else if err := c.store.SetAsk(ask); err != nil {
		return nil, err
	}

	if bid.IsFilled() {
		c.store.DeleteBid(bid.ID)
	} else if err := c.store.SetBid(bid); err != nil {
		return nil, err
	}

	if v, ok := size.Uint64(); ok {
		c.metrics.MatchedBase.Add(float64(v))
	}

	res.AddAttribute("action", types.ActionExecute).
		AddAttribute("ask_id", ask.ID).
		AddAttribute("bid_id", bid.ID).
		AddAttribute("base", bid.Base.Denom).
		AddAttribute("quote", ask.Quote).
		AddAttribute("price", msg.Price).
		AddAttribute("size", size.String()).
		AddAttribute("ask_fee", askFee.String()).
		AddAttribute("bid_fee", bidFee.String())
	return res, nil
}

// matchRefund returns the quote and fee released to the bidder by a fill of
// size at price. A fill that completes the bid releases everything left in
// escrow; otherwise a fill below the bid price releases the price
// improvement and the fee charged on it.
func matchRefund(
	bid *types.BidOrder,
	bidPrice, price decimal.Decimal,
	size, gross, bidFee tmmath.Uint128,
) (quote, fee tmmath.Uint128, err error) {
	remainingQuote := bid.RemainingQuote().SaturatingSub(gross)
	remainingFee := bid.RemainingFee().SaturatingSub(bidFee)
	if size.Equal(bid.RemainingBase()) {
		return remainingQuote, remainingFee, nil
	}
	if !price.LessThan(bidPrice) {
		return tmmath.ZeroUint128(), tmmath.ZeroUint128(), nil
	}

	atBid, err := total(bidPrice, size)
	if err != nil {
		return quote, fee, err
	}
	quote = tmmath.Min(atBid.SaturatingSub(gross), remainingQuote)

	feeAtBid, err := bidFeeFor(bid, atBid)
	if err != nil {
		return quote, fee, err
	}
	feeAtGross, err := bidFeeFor(bid, gross)
	if err != nil {
		return quote, fee, err
	}
	fee = tmmath.Min(feeAtBid.SaturatingSub(feeAtGross), remainingFee)
	return quote, fee, nil
}
