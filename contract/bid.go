package contract

import (
	"fmt"
	"strconv"

	tmmath "github.com/tendermint/ats/libs/math"
	"github.com/tendermint/ats/types"
)

func (c *Contract) createBid(env Env, info Info, ci *types.ContractInfo, msg *types.CreateBid) (*types.Response, error) {
	price, err := parsePrice(msg.Price, ci.Precision(), "price")
	if err != nil {
		return nil, err
	}
	if !msg.Size.IsMultipleOf(ci.SizeIncrement) {
		return nil, types.NewErrInvalidFields("size")
	}

	quoteTotal, err := total(price, msg.Size)
	if err != nil {
		return nil, err
	}
	if !msg.QuoteSize.Equal(quoteTotal) {
		return nil, types.ErrSentFundsOrderMismatch
	}
	if !ci.SupportsQuote(msg.Quote) {
		return nil, types.ErrUnsupportedQuoteDenom
	}
	if msg.Base != ci.BaseDenom {
		return nil, types.ErrInconvertibleBaseDenom
	}

	ok, err := hasAttributes(c.attributes, info.Sender, ci.BidRequiredAttributes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrUnauthorized
	}

	fee, err := expectedBidFee(ci, quoteTotal, msg.Fee)
	if err != nil {
		return nil, err
	}

	escrowed := quoteTotal
	if fee != nil {
		if escrowed, err = escrowed.Add(fee.Amount); err != nil {
			return nil, types.ErrTotalOverflow
		}
	}

	res := types.NewResponse()
	if err := c.escrow(env, info, res, types.Coin{Denom: msg.Quote, Amount: escrowed}); err != nil {
		return nil, err
	}

	exists, err := c.store.HasBid(msg.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, types.NewErrInvalidFields("id")
	}

	bid := &types.BidOrder{
		ID:    msg.ID,
		Owner: info.Sender,
		Base:  types.Coin{Denom: msg.Base, Amount: msg.Size},
		Quote: types.Coin{Denom: msg.Quote, Amount: quoteTotal},
		Price: msg.Price,
	}
	if fee != nil {
		bid.Fee = &types.Coin{Denom: msg.Quote, Amount: fee.Amount}
	}
	if err := c.store.SetBid(bid); err != nil {
		return nil, err
	}

	feeAttr := "None"
	if bid.Fee != nil {
		feeAttr = bid.Fee.String()
	}
	res.AddAttribute("action", types.ActionCreateBid).
		AddAttribute("base", bid.Base.Denom).
		AddAttribute("id", bid.ID).
		AddAttribute("fee", feeAttr).
		AddAttribute("price", bid.Price).
		AddAttribute("quote", bid.Quote.Denom).
		AddAttribute("quote_size", bid.Quote.Amount.String()).
		AddAttribute("size", bid.Base.Amount.String())
	return res, nil
}

// expectedBidFee checks the fee supplied with a bid against
// round_half_away(bid_fee_rate*total). A zero expected fee must not be
// supplied. The returned coin is nil when no fee is escrowed.
func expectedBidFee(ci *types.ContractInfo, quoteTotal tmmath.Uint128, supplied *tmmath.Uint128) (*types.Coin, error) {
	if ci.BidFeeInfo == nil {
		if supplied != nil {
			return nil, types.ErrInvalidFeeSize{FeeRate: "0"}
		}
		return nil, nil
	}

	rate, err := ci.BidFeeInfo.RateDecimal()
	if err != nil {
		return nil, fmt.Errorf("bid fee rate: %w", err)
	}
	expected, err := feeFor(rate, quoteTotal)
	if err != nil {
		return nil, err
	}

	switch {
	case expected.IsZero() && supplied == nil:
		return nil, nil
	case expected.IsZero(), supplied == nil, !supplied.Equal(expected):
		return nil, types.ErrInvalidFeeSize{FeeRate: ci.BidFeeInfo.Rate}
	}
	return &types.Coin{Amount: expected}, nil
}

// reverseBid cancels, expires or rejects size of a bid, or all of what
// remains when size is nil. Cancel is reserved to the owner, the others to
// executors.
func (c *Contract) reverseBid(
	env Env,
	info Info,
	ci *types.ContractInfo,
	action string,
	id string,
	size *tmmath.Uint128,
) (*types.Response, error) {
	if types.HasFunds(info.Funds) {
		if action == types.ActionCancelBid {
			return nil, types.ErrCancelWithFunds
		}
		return nil, types.ErrExpireWithFunds
	}
	if action != types.ActionCancelBid && !ci.IsExecutor(info.Sender) {
		return nil, types.ErrUnauthorized
	}

	bid, err := c.getBid(id)
	if err != nil {
		return nil, err
	}
	if action == types.ActionCancelBid && bid.Owner != info.Sender {
		return nil, types.ErrUnauthorized
	}

	remainingBase := bid.RemainingBase()
	reverseSize := remainingBase
	if size != nil {
		reverseSize = *size
	}
	if !checkSize(reverseSize, ci.SizeIncrement, remainingBase) {
		return nil, types.NewErrInvalidFields("size")
	}

	quoteRefund, feeRefund, err := bidRefund(bid, reverseSize)
	if err != nil {
		return nil, err
	}

	if err := bid.Apply(types.BidAction{
		Kind:  types.BidActionReject,
		Base:  reverseSize,
		Quote: quoteRefund,
		Fee:   feeRefund,
	}); err != nil {
		return nil, err
	}

	res := types.NewResponse()
	if err := c.pay(env, res, types.Coin{Denom: bid.Quote.Denom, Amount: quoteRefund}, bid.Owner); err != nil {
		return nil, err
	}
	if err := c.pay(env, res, types.Coin{Denom: bid.Quote.Denom, Amount: feeRefund}, bid.Owner); err != nil {
		return nil, err
	}

	open := !bid.IsFilled()
	if open {
		if err := c.store.SetBid(bid); err != nil {
			return nil, err
		}
	} else {
		c.store.DeleteBid(bid.ID)
	}

	res.AddAttribute("action", action).
		AddAttribute("id", bid.ID).
		AddAttribute("reverse_size", reverseSize.String()).
		AddAttribute("order_open", strconv.FormatBool(open))
	return res, nil
}

// bidRefund returns the quote and fee released by reversing size of a bid.
// Reversing everything that remains releases the whole remaining escrow.
func bidRefund(bid *types.BidOrder, size tmmath.Uint128) (quote, fee tmmath.Uint128, err error) {
	remainingQuote := bid.RemainingQuote()
	remainingFee := bid.RemainingFee()
	if size.Equal(bid.RemainingBase()) {
		return remainingQuote, remainingFee, nil
	}

	price, err := bid.PriceDecimal()
	if err != nil {
		return quote, fee, err
	}
	if quote, err = total(price, size); err != nil {
		return quote, fee, err
	}
	if quote.GT(remainingQuote) {
		return quote, fee, types.ErrInvalidExecuteSize
	}

	required, err := bidFeeFor(bid, remainingQuote.SaturatingSub(quote))
	if err != nil {
		return quote, fee, err
	}
	return quote, remainingFee.SaturatingSub(required), nil
}
