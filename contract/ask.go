package contract

import (
	"strconv"

	tmmath "github.com/tendermint/ats/libs/math"
	"github.com/tendermint/ats/types"
)

func (c *Contract) createAsk(env Env, info Info, ci *types.ContractInfo, msg *types.CreateAsk) (*types.Response, error) {
	if msg.Base != ci.BaseDenom && !ci.IsConvertible(msg.Base) {
		return nil, types.ErrInconvertibleBaseDenom
	}

	res := types.NewResponse()
	if err := c.escrow(env, info, res, types.Coin{Denom: msg.Base, Amount: msg.Size}); err != nil {
		return nil, err
	}

	if !ci.SupportsQuote(msg.Quote) {
		return nil, types.ErrUnsupportedQuoteDenom
	}
	if !msg.Size.IsMultipleOf(ci.SizeIncrement) {
		return nil, types.NewErrInvalidFields("size")
	}
	if _, err := parsePrice(msg.Price, ci.Precision(), "price"); err != nil {
		return nil, err
	}

	ok, err := hasAttributes(c.attributes, info.Sender, ci.AskRequiredAttributes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrUnauthorized
	}

	exists, err := c.store.HasAsk(msg.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, types.NewErrInvalidFields("id")
	}

	ask := &types.AskOrder{
		ID:    msg.ID,
		Owner: info.Sender,
		Class: types.BasicClass(),
		Base:  msg.Base,
		Quote: msg.Quote,
		Price: msg.Price,
		Size:  msg.Size,
	}
	if msg.Base != ci.BaseDenom {
		ask.Class = types.PendingClass()
	}
	if err := c.store.SetAsk(ask); err != nil {
		return nil, err
	}

	class, err := types.MarshalJSON(ask.Class)
	if err != nil {
		return nil, err
	}
	res.AddAttribute("action", types.ActionCreateAsk).
		AddAttribute("id", ask.ID).
		AddAttribute("class", string(class)).
		AddAttribute("target_base", ci.BaseDenom).
		AddAttribute("base", ask.Base).
		AddAttribute("quote", ask.Quote).
		AddAttribute("price", ask.Price).
		AddAttribute("size", ask.Size.String())
	return res, nil
}

func (c *Contract) approveAsk(env Env, info Info, ci *types.ContractInfo, msg *types.ApproveAsk) (*types.Response, error) {
	if !ci.IsApprover(info.Sender) {
		return nil, types.ErrUnauthorized
	}

	res := types.NewResponse()
	converted := types.Coin{Denom: msg.Base, Amount: msg.Size}
	if err := c.escrow(env, info, res, converted); err != nil {
		return nil, err
	}

	ask, err := c.getAsk(msg.ID)
	if err != nil {
		return nil, err
	}
	switch {
	case ask.Class.IsBasic():
		return nil, types.ErrInconvertibleBaseDenom
	case ask.Class.Ready() != nil:
		return nil, types.ErrAskOrderReady{Approver: ask.Class.Ready().Approver}
	}
	if !msg.Size.Equal(ask.Size) || msg.Base != ci.BaseDenom {
		return nil, types.ErrSentFundsOrderMismatch
	}

	ask.Class = types.ReadyClass(info.Sender, converted)
	if err := c.store.SetAsk(ask); err != nil {
		return nil, err
	}

	class, err := types.MarshalJSON(ask.Class)
	if err != nil {
		return nil, err
	}
	res.AddAttribute("action", types.ActionApproveAsk).
		AddAttribute("id", ask.ID).
		AddAttribute("class", string(class)).
		AddAttribute("quote", ask.Quote).
		AddAttribute("price", ask.Price).
		AddAttribute("size", ask.Size.String())
	return res, nil
}

func (c *Contract) cancelAsk(env Env, info Info, id string) (*types.Response, error) {
	if types.HasFunds(info.Funds) {
		return nil, types.ErrCancelWithFunds
	}

	ask, err := c.getAsk(id)
	if err != nil {
		return nil, err
	}
	if ask.Owner != info.Sender {
		return nil, types.ErrUnauthorized
	}

	c.store.DeleteAsk(ask.ID)

	res := types.NewResponse()
	if err := c.refundAsk(env, res, ask, ask.Size); err != nil {
		return nil, err
	}
	res.AddAttribute("action", types.ActionCancelAsk).
		AddAttribute("id", ask.ID)
	return res, nil
}

// reverseAsk expires or rejects size of an ask, or all of it when size is
// nil.
func (c *Contract) reverseAsk(
	env Env,
	info Info,
	ci *types.ContractInfo,
	action string,
	id string,
	size *tmmath.Uint128,
) (*types.Response, error) {
	if types.HasFunds(info.Funds) {
		return nil, types.ErrExpireWithFunds
	}
	if !ci.IsExecutor(info.Sender) {
		return nil, types.ErrUnauthorized
	}

	ask, err := c.getAsk(id)
	if err != nil {
		return nil, err
	}

	reverseSize := ask.Size
	if size != nil {
		reverseSize = *size
	}
	if !checkSize(reverseSize, ci.SizeIncrement, ask.Size) {
		return nil, types.NewErrInvalidFields("size")
	}

	res := types.NewResponse()
	if err := c.refundAsk(env, res, ask, reverseSize); err != nil {
		return nil, err
	}

	ask.Size = ask.Size.SaturatingSub(reverseSize)
	if ready := ask.Class.Ready(); ready != nil {
		ready.ConvertedBase.Amount = ask.Size
	}
	open := !ask.Size.IsZero()
	if open {
		if err := c.store.SetAsk(ask); err != nil {
			return nil, err
		}
	} else {
		c.store.DeleteAsk(ask.ID)
	}

	res.AddAttribute("action", action).
		AddAttribute("id", ask.ID).
		AddAttribute("reverse_size", reverseSize.String()).
		AddAttribute("order_open", strconv.FormatBool(open))
	return res, nil
}

// refundAsk returns size of the escrowed base to the owner and, for an
// approved convertible, size of the converted base to the approver.
func (c *Contract) refundAsk(env Env, res *types.Response, ask *types.AskOrder, size tmmath.Uint128) error {
	if err := c.pay(env, res, types.Coin{Denom: ask.Base, Amount: size}, ask.Owner); err != nil {
		return err
	}
	if ready := ask.Class.Ready(); ready != nil {
		converted := types.Coin{Denom: ready.ConvertedBase.Denom, Amount: size}
		if err := c.pay(env, res, converted, ready.Approver); err != nil {
			return err
		}
	}
	return nil
}
