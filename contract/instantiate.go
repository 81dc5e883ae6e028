package contract

import (
	"github.com/tendermint/ats/types"
)

func (c *Contract) instantiate(env Env, info Info, msg types.InstantiateMsg) (*types.Response, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	// size_increment mod 10^price_precision == 0
	scale := types.PrecisionScale(uint32(msg.PricePrecisionUint64()))
	if !msg.SizeIncrement.IsMultipleOf(scale) {
		return nil, types.ErrInvalidPricePrecisionSizePair
	}

	ci := &types.ContractInfo{
		Name:                  msg.Name,
		BindName:              msg.BindName,
		BaseDenom:             msg.BaseDenom,
		ConvertibleBaseDenoms: orEmpty(msg.ConvertibleBaseDenoms),
		SupportedQuoteDenoms:  msg.SupportedQuoteDenoms,
		Approvers:             orEmpty(msg.Approvers),
		Executors:             msg.Executors,
		AskFeeInfo:            msg.AskFeeInfo(),
		BidFeeInfo:            msg.BidFeeInfo(),
		AskRequiredAttributes: orEmpty(msg.AskRequiredAttributes),
		BidRequiredAttributes: orEmpty(msg.BidRequiredAttributes),
		PricePrecision:        msg.PricePrecision,
		SizeIncrement:         msg.SizeIncrement,
	}
	if err := c.store.SetContractInfo(ci); err != nil {
		return nil, err
	}
	if err := c.store.SetVersionInfo(currentVersionInfo()); err != nil {
		return nil, err
	}

	c.logger.Info("instantiated market",
		"name", ci.Name,
		"base_denom", ci.BaseDenom,
		"sender", info.Sender,
		"height", env.BlockHeight,
	)

	return types.NewResponse().AddAttribute("action", types.ActionInit), nil
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
