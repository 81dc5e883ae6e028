package types

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	tmmath "github.com/tendermint/ats/libs/math"
)

// BidOrder is the escrow record of an outstanding bid. Base, Quote and Fee
// hold the original amounts; the accumulators tally what has since been
// filled, rejected or refunded.
type BidOrder struct {
	ID               string         `json:"id"`
	Owner            string         `json:"owner"`
	Base             Coin           `json:"base"`
	Quote            Coin           `json:"quote"`
	Price            string         `json:"price"`
	Fee              *Coin          `json:"fee,omitempty"`
	AccumulatedBase  tmmath.Uint128 `json:"accumulated_base"`
	AccumulatedQuote tmmath.Uint128 `json:"accumulated_quote"`
	AccumulatedFee   tmmath.Uint128 `json:"accumulated_fee"`
}

func (b *BidOrder) RemainingBase() tmmath.Uint128 {
	return b.Base.Amount.SaturatingSub(b.AccumulatedBase)
}

func (b *BidOrder) RemainingQuote() tmmath.Uint128 {
	return b.Quote.Amount.SaturatingSub(b.AccumulatedQuote)
}

// RemainingFee is zero for bids without a fee.
func (b *BidOrder) RemainingFee() tmmath.Uint128 {
	if b.Fee == nil {
		return tmmath.ZeroUint128()
	}
	return b.Fee.Amount.SaturatingSub(b.AccumulatedFee)
}

// OriginalFee is zero for bids without a fee.
func (b *BidOrder) OriginalFee() tmmath.Uint128 {
	if b.Fee == nil {
		return tmmath.ZeroUint128()
	}
	return b.Fee.Amount
}

// IsFilled reports whether no base remains to be bought.
func (b *BidOrder) IsFilled() bool {
	return b.RemainingBase().IsZero()
}

// BidAction advances a bid's accumulators.
type BidAction struct {
	Kind  BidActionKind
	Base  tmmath.Uint128
	Quote tmmath.Uint128
	Fee   tmmath.Uint128
}

type BidActionKind int

const (
	BidActionFill BidActionKind = iota
	BidActionRefund
	BidActionReject
)

func (k BidActionKind) String() string {
	switch k {
	case BidActionFill:
		return "fill"
	case BidActionRefund:
		return "refund"
	case BidActionReject:
		return "reject"
	}
	return "unknown"
}

var ErrBidOverdrawn = errors.New("bid action exceeds the original order")

// Apply adds the action's amounts to the accumulators. It fails without
// mutating the bid if any accumulator would exceed its original amount.
func (b *BidOrder) Apply(a BidAction) error {
	base, err := b.AccumulatedBase.Add(a.Base)
	if err != nil {
		return err
	}
	quote, err := b.AccumulatedQuote.Add(a.Quote)
	if err != nil {
		return err
	}
	fee, err := b.AccumulatedFee.Add(a.Fee)
	if err != nil {
		return err
	}
	if base.GT(b.Base.Amount) || quote.GT(b.Quote.Amount) || fee.GT(b.OriginalFee()) {
		return fmt.Errorf("%s %s/%s/%s: %w", a.Kind, a.Base, a.Quote, a.Fee, ErrBidOverdrawn)
	}
	b.AccumulatedBase, b.AccumulatedQuote, b.AccumulatedFee = base, quote, fee
	return nil
}

// BidOrderLegacy is the bid shape stored before 0.15.0.
type BidOrderLegacy struct {
	ID    string         `json:"id"`
	Owner string         `json:"owner"`
	Base  string         `json:"base"`
	Quote Coin           `json:"quote"`
	Price tmmath.Uint128 `json:"price"`
	Size  tmmath.Uint128 `json:"size"`
}

// Upgrade converts the record with zeroed accumulators and no fee.
func (l BidOrderLegacy) Upgrade() BidOrder {
	return BidOrder{
		ID:    l.ID,
		Owner: l.Owner,
		Base:  Coin{Denom: l.Base, Amount: l.Size},
		Quote: l.Quote,
		Price: l.Price.String(),
	}
}

// PriceDecimal parses Price.
func (b *BidOrder) PriceDecimal() (decimal.Decimal, error) {
	p, err := decimal.NewFromString(b.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("bid %q price: %w", b.ID, err)
	}
	return p, nil
}
