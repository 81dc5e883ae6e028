package types

import (
	"github.com/shopspring/decimal"

	tmmath "github.com/tendermint/ats/libs/math"
)

// FeeInfo names the account collecting a fee and the rate applied to gross
// proceeds.
type FeeInfo struct {
	Account string `json:"account"`
	Rate    string `json:"rate"`
}

// RateDecimal parses Rate.
func (f FeeInfo) RateDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(f.Rate)
}

// SameRate reports whether f and o carry numerically equal rates. Either
// side may be nil.
func (f *FeeInfo) SameRate(o *FeeInfo) bool {
	if f == nil || o == nil {
		return f == nil && o == nil
	}
	a, errA := f.RateDecimal()
	b, errB := o.RateDecimal()
	if errA != nil || errB != nil {
		return f.Rate == o.Rate
	}
	return a.Equal(b)
}

// ContractInfo is the per-market configuration singleton.
type ContractInfo struct {
	Name                  string         `json:"name"`
	BindName              string         `json:"bind_name,omitempty"`
	BaseDenom             string         `json:"base_denom"`
	ConvertibleBaseDenoms []string       `json:"convertible_base_denoms"`
	SupportedQuoteDenoms  []string       `json:"supported_quote_denoms"`
	Approvers             []string       `json:"approvers"`
	Executors             []string       `json:"executors"`
	AskFeeInfo            *FeeInfo       `json:"ask_fee_info"`
	BidFeeInfo            *FeeInfo       `json:"bid_fee_info"`
	AskRequiredAttributes []string       `json:"ask_required_attributes"`
	BidRequiredAttributes []string       `json:"bid_required_attributes"`
	PricePrecision        tmmath.Uint128 `json:"price_precision"`
	SizeIncrement         tmmath.Uint128 `json:"size_increment"`
}

func (ci *ContractInfo) IsApprover(addr string) bool { return contains(ci.Approvers, addr) }
func (ci *ContractInfo) IsExecutor(addr string) bool { return contains(ci.Executors, addr) }

// IsConvertible reports whether denom may be offered as a convertible ask
// base.
func (ci *ContractInfo) IsConvertible(denom string) bool {
	return contains(ci.ConvertibleBaseDenoms, denom)
}

// SupportsQuote reports whether denom is an accepted quote denomination.
func (ci *ContractInfo) SupportsQuote(denom string) bool {
	return contains(ci.SupportedQuoteDenoms, denom)
}

// Precision returns the price precision. Validation bounds it to 18.
func (ci *ContractInfo) Precision() uint32 {
	p, ok := ci.PricePrecision.Uint64()
	if !ok || p > 18 {
		return 18
	}
	return uint32(p)
}

// ContractInfoLegacy is the shape stored before 0.15.0. Version tracking
// lived inside the record and approvers were called issuers.
type ContractInfoLegacy struct {
	Name                  string         `json:"name"`
	Definition            string         `json:"definition"`
	Version               string         `json:"version"`
	BindName              string         `json:"bind_name"`
	BaseDenom             string         `json:"base_denom"`
	ConvertibleBaseDenoms []string       `json:"convertible_base_denoms"`
	SupportedQuoteDenoms  []string       `json:"supported_quote_denoms"`
	Executors             []string       `json:"executors"`
	Issuers               []string       `json:"issuers"`
	AskRequiredAttributes []string       `json:"ask_required_attributes"`
	BidRequiredAttributes []string       `json:"bid_required_attributes"`
	PricePrecision        tmmath.Uint128 `json:"price_precision"`
	SizeIncrement         tmmath.Uint128 `json:"size_increment"`
}

// Upgrade converts the record. Issuers become approvers.
func (l ContractInfoLegacy) Upgrade() ContractInfo {
	return ContractInfo{
		Name:                  l.Name,
		BindName:              l.BindName,
		BaseDenom:             l.BaseDenom,
		ConvertibleBaseDenoms: l.ConvertibleBaseDenoms,
		SupportedQuoteDenoms:  l.SupportedQuoteDenoms,
		Approvers:             l.Issuers,
		Executors:             l.Executors,
		AskRequiredAttributes: l.AskRequiredAttributes,
		BidRequiredAttributes: l.BidRequiredAttributes,
		PricePrecision:        l.PricePrecision,
		SizeIncrement:         l.SizeIncrement,
	}
}

// ContractInfoV1 is the shape stored by 0.15.0 and 0.15.1.
type ContractInfoV1 struct {
	Name                  string         `json:"name"`
	BindName              string         `json:"bind_name"`
	BaseDenom             string         `json:"base_denom"`
	ConvertibleBaseDenoms []string       `json:"convertible_base_denoms"`
	SupportedQuoteDenoms  []string       `json:"supported_quote_denoms"`
	Approvers             []string       `json:"approvers"`
	Executors             []string       `json:"executors"`
	AskRequiredAttributes []string       `json:"ask_required_attributes"`
	BidRequiredAttributes []string       `json:"bid_required_attributes"`
	PricePrecision        tmmath.Uint128 `json:"price_precision"`
	SizeIncrement         tmmath.Uint128 `json:"size_increment"`
}

func (v ContractInfoV1) Upgrade() ContractInfo {
	return ContractInfo{
		Name:                  v.Name,
		BindName:              v.BindName,
		BaseDenom:             v.BaseDenom,
		ConvertibleBaseDenoms: v.ConvertibleBaseDenoms,
		SupportedQuoteDenoms:  v.SupportedQuoteDenoms,
		Approvers:             v.Approvers,
		Executors:             v.Executors,
		AskRequiredAttributes: v.AskRequiredAttributes,
		BidRequiredAttributes: v.BidRequiredAttributes,
		PricePrecision:        v.PricePrecision,
		SizeIncrement:         v.SizeIncrement,
	}
}

// ContractInfoV2 is the shape stored from 0.15.2 until fees were split per
// side. Its single fee applied to bids.
type ContractInfoV2 struct {
	ContractInfoV1
	FeeRate    *string `json:"fee_rate"`
	FeeAccount *string `json:"fee_account"`
}

func (v ContractInfoV2) Upgrade() ContractInfo {
	ci := v.ContractInfoV1.Upgrade()
	if v.FeeRate != nil && v.FeeAccount != nil && *v.FeeRate != "" && *v.FeeAccount != "" {
		ci.BidFeeInfo = &FeeInfo{Account: *v.FeeAccount, Rate: *v.FeeRate}
	}
	return ci
}

// VersionInfo records the definition and semantic version that last wrote
// the store.
type VersionInfo struct {
	Definition string `json:"definition"`
	Version    string `json:"version"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// IsSubset reports whether every element of sub is in set.
func IsSubset(sub, set []string) bool {
	for _, s := range sub {
		if !contains(set, s) {
			return false
		}
	}
	return true
}
