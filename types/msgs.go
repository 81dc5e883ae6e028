package types

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	tmmath "github.com/tendermint/ats/libs/math"
)

// Action names used for dispatch and in the "action" response attribute.
const (
	ActionInit           = "init"
	ActionCreateAsk      = "create_ask"
	ActionCreateBid      = "create_bid"
	ActionApproveAsk     = "approve_ask"
	ActionCancelAsk      = "cancel_ask"
	ActionCancelBid      = "cancel_bid"
	ActionExpireAsk      = "expire_ask"
	ActionExpireBid      = "expire_bid"
	ActionRejectAsk      = "reject_ask"
	ActionRejectBid      = "reject_bid"
	ActionExecute        = "execute"
	ActionModifyContract = "modify_contract"
	ActionMigrate        = "migrate"
)

// MaxPricePrecision bounds InstantiateMsg.PricePrecision.
const MaxPricePrecision = 18

var ErrEmptyMsg = errors.New("message must set exactly one operation")

// IsHyphenatedUUID reports whether s is a UUID in canonical lowercase
// hyphenated form.
func IsHyphenatedUUID(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id.String() == s
}

//-----------------------------------------------------------------------------
// Instantiate

// InstantiateMsg configures a new market.
type InstantiateMsg struct {
	Name                  string         `json:"name"`
	BindName              string         `json:"bind_name,omitempty"`
	BaseDenom             string         `json:"base_denom"`
	ConvertibleBaseDenoms []string       `json:"convertible_base_denoms"`
	SupportedQuoteDenoms  []string       `json:"supported_quote_denoms"`
	Approvers             []string       `json:"approvers"`
	Executors             []string       `json:"executors"`
	AskFeeRate            string         `json:"ask_fee_rate,omitempty"`
	AskFeeAccount         string         `json:"ask_fee_account,omitempty"`
	BidFeeRate            string         `json:"bid_fee_rate,omitempty"`
	BidFeeAccount         string         `json:"bid_fee_account,omitempty"`
	AskRequiredAttributes []string       `json:"ask_required_attributes"`
	BidRequiredAttributes []string       `json:"bid_required_attributes"`
	PricePrecision        tmmath.Uint128 `json:"price_precision"`
	SizeIncrement         tmmath.Uint128 `json:"size_increment"`
}

// ValidateBasic performs stateless validation.
func (m InstantiateMsg) ValidateBasic() error {
	var invalid fieldErrors
	if m.Name == "" {
		invalid.add("name")
	}
	if m.BaseDenom == "" {
		invalid.add("base_denom")
	}
	if len(m.SupportedQuoteDenoms) == 0 {
		invalid.add("supported_quote_denoms")
	}
	if len(m.Executors) == 0 {
		invalid.add("executors")
	}
	if m.PricePrecision.GT(tmmath.NewUint128(MaxPricePrecision)) {
		invalid.add("price_precision")
	}
	if m.SizeIncrement.IsZero() {
		invalid.add("size_increment")
	}
	validateFeePair(&invalid, "ask_fee", strPtr(m.AskFeeRate), strPtr(m.AskFeeAccount), true)
	validateFeePair(&invalid, "bid_fee", strPtr(m.BidFeeRate), strPtr(m.BidFeeAccount), true)
	return invalid.err()
}

// AskFeeInfo returns the configured ask fee, nil when unset.
func (m InstantiateMsg) AskFeeInfo() *FeeInfo { return newFeeInfo(m.AskFeeRate, m.AskFeeAccount) }

// BidFeeInfo returns the configured bid fee, nil when unset.
func (m InstantiateMsg) BidFeeInfo() *FeeInfo { return newFeeInfo(m.BidFeeRate, m.BidFeeAccount) }

//-----------------------------------------------------------------------------
// Execute

// ExecuteMsg is a discriminated union; exactly one field must be set.
type ExecuteMsg struct {
	CreateAsk      *CreateAsk      `json:"create_ask,omitempty"`
	CreateBid      *CreateBid      `json:"create_bid,omitempty"`
	ApproveAsk     *ApproveAsk     `json:"approve_ask,omitempty"`
	CancelAsk      *OrderRef       `json:"cancel_ask,omitempty"`
	CancelBid      *OrderRef       `json:"cancel_bid,omitempty"`
	ExpireAsk      *OrderRef       `json:"expire_ask,omitempty"`
	ExpireBid      *OrderRef       `json:"expire_bid,omitempty"`
	RejectAsk      *RejectOrder    `json:"reject_ask,omitempty"`
	RejectBid      *RejectOrder    `json:"reject_bid,omitempty"`
	ExecuteMatch   *ExecuteMatch   `json:"execute_match,omitempty"`
	ModifyContract *ModifyContract `json:"modify_contract,omitempty"`
}

type validator interface {
	ValidateBasic() error
}

func (m ExecuteMsg) variants() []struct {
	action string
	msg    validator
	set    bool
} {
	return []struct {
		action string
		msg    validator
		set    bool
	}{
		{ActionCreateAsk, m.CreateAsk, m.CreateAsk != nil},
		{ActionCreateBid, m.CreateBid, m.CreateBid != nil},
		{ActionApproveAsk, m.ApproveAsk, m.ApproveAsk != nil},
		{ActionCancelAsk, m.CancelAsk, m.CancelAsk != nil},
		{ActionCancelBid, m.CancelBid, m.CancelBid != nil},
		{ActionExpireAsk, m.ExpireAsk, m.ExpireAsk != nil},
		{ActionExpireBid, m.ExpireBid, m.ExpireBid != nil},
		{ActionRejectAsk, m.RejectAsk, m.RejectAsk != nil},
		{ActionRejectBid, m.RejectBid, m.RejectBid != nil},
		{ActionExecute, m.ExecuteMatch, m.ExecuteMatch != nil},
		{ActionModifyContract, m.ModifyContract, m.ModifyContract != nil},
	}
}

// Action names the operation carried by the message, or "" when the message
// does not set exactly one.
func (m ExecuteMsg) Action() string {
	action := ""
	for _, v := range m.variants() {
		if !v.set {
			continue
		}
		if action != "" {
			return ""
		}
		action = v.action
	}
	return action
}

// ValidateBasic checks the union and the selected operation.
func (m ExecuteMsg) ValidateBasic() error {
	action := m.Action()
	if action == "" {
		return ErrEmptyMsg
	}
	for _, v := range m.variants() {
		if v.set {
			return v.msg.ValidateBasic()
		}
	}
	return ErrEmptyMsg
}

// CreateAsk offers Size of Base for Quote at Price.
type CreateAsk struct {
	ID    string         `json:"id"`
	Base  string         `json:"base"`
	Quote string         `json:"quote"`
	Price string         `json:"price"`
	Size  tmmath.Uint128 `json:"size"`
}

func (m *CreateAsk) ValidateBasic() error {
	var invalid fieldErrors
	if !IsHyphenatedUUID(m.ID) {
		invalid.add("id")
	}
	if m.Base == "" {
		invalid.add("base")
	}
	if m.Quote == "" {
		invalid.add("quote")
	}
	if m.Price == "" {
		invalid.add("price")
	}
	if m.Size.IsZero() {
		invalid.add("size")
	}
	return invalid.err()
}

// CreateBid offers QuoteSize of Quote for Size of Base at Price. Fee, when
// set, is an amount of Quote.
type CreateBid struct {
	ID        string          `json:"id"`
	Base      string          `json:"base"`
	Price     string          `json:"price"`
	Size      tmmath.Uint128  `json:"size"`
	Quote     string          `json:"quote"`
	QuoteSize tmmath.Uint128  `json:"quote_size"`
	Fee       *tmmath.Uint128 `json:"fee,omitempty"`
}

func (m *CreateBid) ValidateBasic() error {
	var invalid fieldErrors
	if !IsHyphenatedUUID(m.ID) {
		invalid.add("id")
	}
	if m.Base == "" {
		invalid.add("base")
	}
	if m.Price == "" {
		invalid.add("price")
	}
	if m.Size.IsZero() {
		invalid.add("size")
	}
	if m.Quote == "" {
		invalid.add("quote")
	}
	if m.QuoteSize.IsZero() {
		invalid.add("quote_size")
	}
	if m.Fee != nil && m.Fee.IsZero() {
		invalid.add("fee")
	}
	return invalid.err()
}

// ApproveAsk converts a pending convertible ask; the approver escrows Size
// of Base, which must be the contract base denom.
type ApproveAsk struct {
	ID   string         `json:"id"`
	Base string         `json:"base"`
	Size tmmath.Uint128 `json:"size"`
}

func (m *ApproveAsk) ValidateBasic() error {
	var invalid fieldErrors
	if !IsHyphenatedUUID(m.ID) {
		invalid.add("id")
	}
	if m.Base == "" {
		invalid.add("base")
	}
	if m.Size.IsZero() {
		invalid.add("size")
	}
	return invalid.err()
}

// OrderRef references an order by id. Unhyphenated legacy ids are accepted
// and looked up verbatim.
type OrderRef struct {
	ID string `json:"id"`
}

func (m *OrderRef) ValidateBasic() error {
	if m.ID == "" {
		return NewErrInvalidFields("id")
	}
	return nil
}

// RejectOrder rejects Size of an order, or all of it when Size is nil.
type RejectOrder struct {
	ID   string          `json:"id"`
	Size *tmmath.Uint128 `json:"size,omitempty"`
}

func (m *RejectOrder) ValidateBasic() error {
	var invalid fieldErrors
	if m.ID == "" {
		invalid.add("id")
	}
	if m.Size != nil && m.Size.IsZero() {
		invalid.add("size")
	}
	return invalid.err()
}

// ExecuteMatch settles Size between an ask and a bid at Price.
type ExecuteMatch struct {
	AskID string         `json:"ask_id"`
	BidID string         `json:"bid_id"`
	Price string         `json:"price"`
	Size  tmmath.Uint128 `json:"size"`
}

func (m *ExecuteMatch) ValidateBasic() error {
	var invalid fieldErrors
	if !IsHyphenatedUUID(m.AskID) {
		invalid.add("ask_id")
	}
	if !IsHyphenatedUUID(m.BidID) {
		invalid.add("bid_id")
	}
	if m.Price == "" {
		invalid.add("price")
	} else if p, err := decimal.NewFromString(m.Price); err != nil || !p.IsPositive() {
		invalid.add("price")
	}
	if m.Size.IsZero() {
		invalid.add("size")
	}
	return invalid.err()
}

// ModifyContract updates contract parameters. Nil fields are left unchanged.
// Fee rate and account are set together; both empty removes the fee.
type ModifyContract struct {
	Approvers             []string `json:"approvers,omitempty"`
	Executors             []string `json:"executors,omitempty"`
	AskFeeRate            *string  `json:"ask_fee_rate,omitempty"`
	AskFeeAccount         *string  `json:"ask_fee_account,omitempty"`
	BidFeeRate            *string  `json:"bid_fee_rate,omitempty"`
	BidFeeAccount         *string  `json:"bid_fee_account,omitempty"`
	AskRequiredAttributes []string `json:"ask_required_attributes,omitempty"`
	BidRequiredAttributes []string `json:"bid_required_attributes,omitempty"`
}

func (m *ModifyContract) ValidateBasic() error {
	var invalid fieldErrors
	if m.Approvers != nil && len(m.Approvers) == 0 {
		invalid.add("approvers_empty")
	}
	if m.Executors != nil && len(m.Executors) == 0 {
		invalid.add("executors_empty")
	}
	validateFeePair(&invalid, "ask_fee", m.AskFeeRate, m.AskFeeAccount, false)
	validateFeePair(&invalid, "bid_fee", m.BidFeeRate, m.BidFeeAccount, false)
	if err := invalid.err(); err != nil {
		return err
	}
	if m.isEmpty() {
		return NewErrInvalidFields("*")
	}
	return nil
}

func (m *ModifyContract) isEmpty() bool {
	return m.Approvers == nil && m.Executors == nil &&
		m.AskFeeRate == nil && m.AskFeeAccount == nil &&
		m.BidFeeRate == nil && m.BidFeeAccount == nil &&
		m.AskRequiredAttributes == nil && m.BidRequiredAttributes == nil
}

//-----------------------------------------------------------------------------
// Query

// QueryMsg is a discriminated union; exactly one field must be set.
type QueryMsg struct {
	GetAsk          *OrderRef `json:"get_ask,omitempty"`
	GetBid          *OrderRef `json:"get_bid,omitempty"`
	GetContractInfo *struct{} `json:"get_contract_info,omitempty"`
	GetVersionInfo  *struct{} `json:"get_version_info,omitempty"`
}

func (m QueryMsg) ValidateBasic() error {
	set := 0
	for _, ok := range []bool{m.GetAsk != nil, m.GetBid != nil, m.GetContractInfo != nil, m.GetVersionInfo != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return ErrEmptyMsg
	}
	switch {
	case m.GetAsk != nil:
		return m.GetAsk.ValidateBasic()
	case m.GetBid != nil:
		return m.GetBid.ValidateBasic()
	}
	return nil
}

//-----------------------------------------------------------------------------
// Migrate

// MigrateMsg optionally overrides contract parameters while upgrading.
type MigrateMsg struct {
	Approvers             []string `json:"approvers,omitempty"`
	AskFeeRate            *string  `json:"ask_fee_rate,omitempty"`
	AskFeeAccount         *string  `json:"ask_fee_account,omitempty"`
	BidFeeRate            *string  `json:"bid_fee_rate,omitempty"`
	BidFeeAccount         *string  `json:"bid_fee_account,omitempty"`
	AskRequiredAttributes []string `json:"ask_required_attributes,omitempty"`
	BidRequiredAttributes []string `json:"bid_required_attributes,omitempty"`
}

func (m MigrateMsg) ValidateBasic() error {
	var invalid fieldErrors
	if m.Approvers != nil && len(m.Approvers) == 0 {
		invalid.add("approvers")
	}
	validateFeePair(&invalid, "ask_fee", m.AskFeeRate, m.AskFeeAccount, false)
	validateFeePair(&invalid, "bid_fee", m.BidFeeRate, m.BidFeeAccount, false)
	return invalid.err()
}

//-----------------------------------------------------------------------------
// helpers

// validateFeePair requires rate and account to be set together. With
// emptyIsUnset, a pair of empty strings means no fee; otherwise it requests
// removal and is equally valid. A rate must parse as a non-negative decimal.
func validateFeePair(invalid *fieldErrors, name string, rate, account *string, emptyIsUnset bool) {
	rateSet := rate != nil && (*rate != "" || !emptyIsUnset)
	accountSet := account != nil && (*account != "" || !emptyIsUnset)
	if rateSet != accountSet {
		invalid.add(name)
		return
	}
	if !rateSet {
		return
	}
	if (*rate == "") != (*account == "") {
		invalid.add(name)
		return
	}
	if *rate == "" {
		return
	}
	d, err := decimal.NewFromString(*rate)
	if err != nil || d.IsNegative() {
		invalid.add(name + "_rate")
	}
}

func newFeeInfo(rate, account string) *FeeInfo {
	if rate == "" && account == "" {
		return nil
	}
	return &FeeInfo{Account: account, Rate: rate}
}

// NewFeeInfo returns the fee described by an optional rate/account pair and
// whether the pair was present. A present pair of empty strings yields nil.
func NewFeeInfo(rate, account *string) (*FeeInfo, bool) {
	if rate == nil || account == nil {
		return nil, false
	}
	return newFeeInfo(*rate, *account), true
}

func strPtr(s string) *string { return &s }

// PricePrecisionUint64 returns the price precision, which ValidateBasic
// bounds by MaxPricePrecision.
func (m InstantiateMsg) PricePrecisionUint64() uint64 {
	p, ok := m.PricePrecision.Uint64()
	if !ok || p > MaxPricePrecision {
		return MaxPricePrecision
	}
	return p
}

// PrecisionScale returns 10^precision.
func PrecisionScale(precision uint32) tmmath.Uint128 {
	scale := uint64(1)
	for i := uint32(0); i < precision && i < MaxPricePrecision; i++ {
		scale *= 10
	}
	return tmmath.NewUint128(scale)
}
