package contract

import (
	"github.com/tendermint/ats/types"
)

// Query returns the JSON encoding of the requested record.
func (c *Contract) Query(env Env, msg types.QueryMsg) ([]byte, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	var (
		record interface{}
		err    error
	)
	switch {
	case msg.GetAsk != nil:
		record, err = c.getAsk(msg.GetAsk.ID)
	case msg.GetBid != nil:
		record, err = c.getBid(msg.GetBid.ID)
	case msg.GetContractInfo != nil:
		record, err = c.contractInfo()
	case msg.GetVersionInfo != nil:
		record, err = c.versionInfo()
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("query", "height", env.BlockHeight)
	return types.MarshalJSON(record)
}

func (c *Contract) versionInfo() (*types.VersionInfo, error) {
	vi, err := c.storedVersion()
	if err != nil {
		return nil, err
	}
	if vi == nil {
		return nil, types.ErrContractNotInstantiated
	}
	return vi, nil
}
