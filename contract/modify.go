package contract

import (
	"sort"

	goversion "github.com/hashicorp/go-version"

	"github.com/tendermint/ats/types"
	"github.com/tendermint/ats/version"
)

var modifyContractMinVersion = goversion.Must(goversion.NewVersion(version.ModifyContractMinVersion))

// modifyContract updates contract parameters. While orders exist the
// parameters they were created under are frozen: required attributes and
// fee rates of a side with orders cannot change, and approvers can only be
// added.
func (c *Contract) modifyContract(info Info, ci *types.ContractInfo, msg *types.ModifyContract) (*types.Response, error) {
	if !ci.IsExecutor(info.Sender) {
		return nil, types.ErrUnauthorized
	}

	if err := c.requireVersion(modifyContractMinVersion); err != nil {
		return nil, err
	}

	hasAsks, err := c.store.HasAsks()
	if err != nil {
		return nil, err
	}
	hasBids, err := c.store.HasBids()
	if err != nil {
		return nil, err
	}

	var invalid []string
	updated := *ci

	if msg.Approvers != nil {
		if (hasAsks || hasBids) && !types.IsSubset(ci.Approvers, msg.Approvers) {
			invalid = append(invalid, "approvers")
		}
		updated.Approvers = msg.Approvers
	}
	if msg.Executors != nil {
		updated.Executors = msg.Executors
	}

	if fee, ok := types.NewFeeInfo(msg.AskFeeRate, msg.AskFeeAccount); ok {
		if hasAsks && !ci.AskFeeInfo.SameRate(fee) {
			invalid = append(invalid, "ask_fee")
		}
		updated.AskFeeInfo = fee
	}
	if fee, ok := types.NewFeeInfo(msg.BidFeeRate, msg.BidFeeAccount); ok {
		if hasBids && !ci.BidFeeInfo.SameRate(fee) {
			invalid = append(invalid, "bid_fee")
		}
		updated.BidFeeInfo = fee
	}

	if msg.AskRequiredAttributes != nil {
		if hasAsks && !sameSet(ci.AskRequiredAttributes, msg.AskRequiredAttributes) {
			invalid = append(invalid, "ask_required_attributes")
		}
		updated.AskRequiredAttributes = msg.AskRequiredAttributes
	}
	if msg.BidRequiredAttributes != nil {
		if hasBids && !sameSet(ci.BidRequiredAttributes, msg.BidRequiredAttributes) {
			invalid = append(invalid, "bid_required_attributes")
		}
		updated.BidRequiredAttributes = msg.BidRequiredAttributes
	}

	if len(invalid) > 0 {
		return nil, types.NewErrInvalidFields(invalid...)
	}

	if err := c.store.SetContractInfo(&updated); err != nil {
		return nil, err
	}

	c.logger.Info("modified contract", "sender", info.Sender)

	return types.NewResponse().AddAttribute("action", types.ActionModifyContract), nil
}

// requireVersion fails unless the store was last written by min or later.
func (c *Contract) requireVersion(min *goversion.Version) error {
	vi, err := c.storedVersion()
	if err != nil {
		return err
	}
	if vi == nil {
		return types.ErrUnsupportedUpgrade{SourceVersion: unknownVersion, TargetVersion: version.ATSSemVer}
	}
	v, err := goversion.NewVersion(vi.Version)
	if err != nil || v.LessThan(min) {
		return types.ErrUnsupportedUpgrade{SourceVersion: vi.Version, TargetVersion: version.ATSSemVer}
	}
	return nil
}

func sameSet(a, b []string) bool {
	x := dedupe(a)
	y := dedupe(b)
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func dedupe(list []string) []string {
	out := append([]string(nil), list...)
	sort.Strings(out)
	j := 0
	for i, s := range out {
		if i > 0 && s == out[j-1] {
			continue
		}
		out[j] = s
		j++
	}
	return out[:j]
}
