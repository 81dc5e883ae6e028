package contract

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"

	"github.com/tendermint/ats/store"
	"github.com/tendermint/ats/types"
	"github.com/tendermint/ats/version"
)

const unknownVersion = "UNKNOWN"

// Stored contract info shapes, by the version that wrote them.
var (
	legacyConstraint     = mustConstraint("< 0.15.0")
	contractV1Constraint = mustConstraint(">= 0.15.0, < 0.15.2")
	contractV2Constraint = mustConstraint(">= 0.15.2, < 0.16.0")
)

func mustConstraint(c string) goversion.Constraints {
	constraints, err := goversion.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraints
}

// migrate brings a store written by any earlier version to the current
// record shapes, applies the message overrides and records the running
// version. Running it on a current store with an empty message writes
// nothing.
func (c *Contract) migrate(env Env, msg types.MigrateMsg) (*types.Response, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	stored, err := c.storedVersion()
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, types.ErrUnsupportedUpgrade{SourceVersion: unknownVersion, TargetVersion: version.ATSSemVer}
	}
	source, err := goversion.NewVersion(stored.Version)
	if err != nil {
		return nil, types.ErrUnsupportedUpgrade{SourceVersion: stored.Version, TargetVersion: version.ATSSemVer}
	}
	target := goversion.Must(goversion.NewVersion(version.ATSSemVer))
	if stored.Definition != version.Definition || source.GreaterThan(target) {
		return nil, types.ErrUnsupportedUpgrade{SourceVersion: stored.Version, TargetVersion: version.ATSSemVer}
	}

	ci, firstIssuer, err := c.upgradeContractInfo(source)
	if err != nil {
		return nil, err
	}

	legacy := legacyConstraint.Check(source)
	if err := c.relocateAsks(ci, legacy, firstIssuer); err != nil {
		return nil, err
	}
	if err := c.relocateBids(legacy); err != nil {
		return nil, err
	}

	applyMigrateOverrides(ci, msg)

	if err := c.store.SetContractInfo(ci); err != nil {
		return nil, err
	}
	if err := c.store.SetVersionInfo(currentVersionInfo()); err != nil {
		return nil, err
	}

	c.logger.Info("migrated contract",
		"source_version", stored.Version,
		"target_version", version.ATSSemVer,
		"height", env.BlockHeight,
	)

	return types.NewResponse().
		AddAttribute("action", types.ActionMigrate).
		AddAttribute("source_version", stored.Version).
		AddAttribute("target_version", version.ATSSemVer), nil
}

// upgradeContractInfo decodes the stored contract info in the shape written
// by source. It also returns the first legacy issuer, which becomes the
// approver of legacy approved asks.
func (c *Contract) upgradeContractInfo(source *goversion.Version) (*types.ContractInfo, string, error) {
	var ci types.ContractInfo
	firstIssuer := ""

	switch {
	case legacyConstraint.Check(source):
		var legacy types.ContractInfoLegacy
		if err := c.store.LoadContractInfoAs(&legacy); err != nil {
			return nil, "", err
		}
		ci = legacy.Upgrade()
		if len(legacy.Issuers) > 0 {
			firstIssuer = legacy.Issuers[0]
		}
	case contractV1Constraint.Check(source):
		var v1 types.ContractInfoV1
		if err := c.store.LoadContractInfoAs(&v1); err != nil {
			return nil, "", err
		}
		ci = v1.Upgrade()
	case contractV2Constraint.Check(source):
		var v2 types.ContractInfoV2
		if err := c.store.LoadContractInfoAs(&v2); err != nil {
			return nil, "", err
		}
		ci = v2.Upgrade()
	default:
		if err := c.store.LoadContractInfoAs(&ci); err != nil {
			return nil, "", err
		}
	}
	return &ci, firstIssuer, nil
}

// relocateAsks moves asks out of the legacy namespace.
func (c *Contract) relocateAsks(ci *types.ContractInfo, legacy bool, approver string) error {
	records, err := c.store.LegacyRecords(store.LegacyNamespaceAsk)
	if err != nil {
		return err
	}
	for _, r := range records {
		var ask types.AskOrder
		if legacy {
			var old types.AskOrderLegacy
			if err := types.UnmarshalJSON(r.Value, &old); err != nil {
				return fmt.Errorf("legacy ask %q: %w", r.ID, err)
			}
			ask = old.Upgrade(ci.BaseDenom, approver)
		} else if err := types.UnmarshalJSON(r.Value, &ask); err != nil {
			return fmt.Errorf("legacy ask %q: %w", r.ID, err)
		}
		if err := c.store.SetAsk(&ask); err != nil {
			return err
		}
		c.store.DeleteLegacyRecord(store.LegacyNamespaceAsk, r.ID)
	}
	return nil
}

// relocateBids moves bids out of the legacy namespace.
func (c *Contract) relocateBids(legacy bool) error {
	records, err := c.store.LegacyRecords(store.LegacyNamespaceBid)
	if err != nil {
		return err
	}
	for _, r := range records {
		var bid types.BidOrder
		if legacy {
			var old types.BidOrderLegacy
			if err := types.UnmarshalJSON(r.Value, &old); err != nil {
				return fmt.Errorf("legacy bid %q: %w", r.ID, err)
			}
			bid = old.Upgrade()
		} else if err := types.UnmarshalJSON(r.Value, &bid); err != nil {
			return fmt.Errorf("legacy bid %q: %w", r.ID, err)
		}
		if err := c.store.SetBid(&bid); err != nil {
			return err
		}
		c.store.DeleteLegacyRecord(store.LegacyNamespaceBid, r.ID)
	}
	return nil
}

func applyMigrateOverrides(ci *types.ContractInfo, msg types.MigrateMsg) {
	if msg.Approvers != nil {
		ci.Approvers = msg.Approvers
	}
	if fee, ok := types.NewFeeInfo(msg.AskFeeRate, msg.AskFeeAccount); ok {
		ci.AskFeeInfo = fee
	}
	if fee, ok := types.NewFeeInfo(msg.BidFeeRate, msg.BidFeeAccount); ok {
		ci.BidFeeInfo = fee
	}
	if msg.AskRequiredAttributes != nil {
		ci.AskRequiredAttributes = msg.AskRequiredAttributes
	}
	if msg.BidRequiredAttributes != nil {
		ci.BidRequiredAttributes = msg.BidRequiredAttributes
	}
	if ci.ConvertibleBaseDenoms == nil {
		ci.ConvertibleBaseDenoms = []string{}
	}
	if ci.Approvers == nil {
		ci.Approvers = []string{}
	}
}
