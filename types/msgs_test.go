package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tmmath "github.com/tendermint/ats/libs/math"
)

const (
	hyphenatedID   = "ab5f5a62-f6fc-46d1-aa84-51ccc51ec367"
	unhyphenatedID = "ab5f5a62f6fc46d1aa8451ccc51ec367"
)

func requireInvalidFields(t *testing.T, err error, fields ...string) {
	t.Helper()
	var invalid ErrInvalidFields
	require.True(t, errors.As(err, &invalid), "expected ErrInvalidFields, got %v", err)
	assert.Equal(t, fields, invalid.Fields)
}

func TestIsHyphenatedUUID(t *testing.T) {
	assert.True(t, IsHyphenatedUUID(hyphenatedID))
	assert.False(t, IsHyphenatedUUID(unhyphenatedID))
	assert.False(t, IsHyphenatedUUID("AB5F5A62-F6FC-46D1-AA84-51CCC51EC367"))
	assert.False(t, IsHyphenatedUUID("BAD_INPUT"))
	assert.False(t, IsHyphenatedUUID(""))
}

func validInstantiate() InstantiateMsg {
	return InstantiateMsg{
		Name:                 "contract_name",
		BaseDenom:            "base_1",
		SupportedQuoteDenoms: []string{"quote_1"},
		Executors:            []string{"exec_1"},
		PricePrecision:       tmmath.NewUint128(2),
		SizeIncrement:        tmmath.NewUint128(100),
	}
}

func TestInstantiateMsgValidateBasic(t *testing.T) {
	testCases := map[string]struct {
		malleate func(*InstantiateMsg)
		fields   []string
	}{
		"valid": {func(*InstantiateMsg) {}, nil},
		"missing everything": {func(m *InstantiateMsg) {
			*m = InstantiateMsg{PricePrecision: tmmath.NewUint128(19)}
		}, []string{"name", "base_denom", "supported_quote_denoms", "executors", "price_precision", "size_increment"}},
		"fee rate without account": {func(m *InstantiateMsg) {
			m.AskFeeRate = "0.01"
		}, []string{"ask_fee"}},
		"fee account without rate": {func(m *InstantiateMsg) {
			m.BidFeeAccount = "fee_acct"
		}, []string{"bid_fee"}},
		"negative fee rate": {func(m *InstantiateMsg) {
			m.BidFeeRate, m.BidFeeAccount = "-0.1", "fee_acct"
		}, []string{"bid_fee_rate"}},
		"unparsable fee rate": {func(m *InstantiateMsg) {
			m.AskFeeRate, m.AskFeeAccount = "ten", "fee_acct"
		}, []string{"ask_fee_rate"}},
		"complete fees": {func(m *InstantiateMsg) {
			m.AskFeeRate, m.AskFeeAccount = "0.01", "ask_acct"
			m.BidFeeRate, m.BidFeeAccount = "0.10", "bid_acct"
		}, nil},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			msg := validInstantiate()
			tc.malleate(&msg)
			err := msg.ValidateBasic()
			if tc.fields == nil {
				require.NoError(t, err)
				return
			}
			requireInvalidFields(t, err, tc.fields...)
		})
	}

	msg := validInstantiate()
	assert.Nil(t, msg.AskFeeInfo())
	msg.AskFeeRate, msg.AskFeeAccount = "0.01", "ask_acct"
	assert.Equal(t, &FeeInfo{Account: "ask_acct", Rate: "0.01"}, msg.AskFeeInfo())
}

func TestExecuteMsgValidateBasic(t *testing.T) {
	size := tmmath.NewUint128(100)
	zero := tmmath.ZeroUint128()
	testCases := map[string]struct {
		msg    ExecuteMsg
		err    error
		fields []string
	}{
		"empty": {msg: ExecuteMsg{}, err: ErrEmptyMsg},
		"two operations": {msg: ExecuteMsg{
			CancelAsk: &OrderRef{ID: hyphenatedID},
			CancelBid: &OrderRef{ID: hyphenatedID},
		}, err: ErrEmptyMsg},
		"create ask valid": {msg: ExecuteMsg{CreateAsk: &CreateAsk{
			ID: hyphenatedID, Base: "base_1", Quote: "quote_1", Price: "2", Size: size,
		}}},
		"create ask unhyphenated": {msg: ExecuteMsg{CreateAsk: &CreateAsk{
			ID: unhyphenatedID, Base: "base_1", Quote: "quote_1", Price: "2", Size: size,
		}}, fields: []string{"id"}},
		"create ask empty": {msg: ExecuteMsg{CreateAsk: &CreateAsk{}},
			fields: []string{"id", "base", "quote", "price", "size"}},
		"create bid empty": {msg: ExecuteMsg{CreateBid: &CreateBid{Fee: &zero}},
			fields: []string{"id", "base", "price", "size", "quote", "quote_size", "fee"}},
		"approve ask unhyphenated": {msg: ExecuteMsg{ApproveAsk: &ApproveAsk{
			ID: unhyphenatedID, Base: "base_1", Size: size,
		}}, fields: []string{"id"}},
		"cancel legacy id": {msg: ExecuteMsg{CancelBid: &OrderRef{ID: unhyphenatedID}}},
		"expire empty id":  {msg: ExecuteMsg{ExpireAsk: &OrderRef{}}, fields: []string{"id"}},
		"reject zero size": {msg: ExecuteMsg{RejectBid: &RejectOrder{ID: unhyphenatedID, Size: &zero}},
			fields: []string{"size"}},
		"match unhyphenated ids": {msg: ExecuteMsg{ExecuteMatch: &ExecuteMatch{
			AskID: unhyphenatedID, BidID: unhyphenatedID, Price: "2", Size: size,
		}}, fields: []string{"ask_id", "bid_id"}},
		"match bad price": {msg: ExecuteMsg{ExecuteMatch: &ExecuteMatch{
			AskID: hyphenatedID, BidID: hyphenatedID, Price: "-1", Size: size,
		}}, fields: []string{"price"}},
		"modify nothing": {msg: ExecuteMsg{ModifyContract: &ModifyContract{}}, fields: []string{"*"}},
		"modify empty rosters": {msg: ExecuteMsg{ModifyContract: &ModifyContract{
			Approvers: []string{}, Executors: []string{},
		}}, fields: []string{"approvers_empty", "executors_empty"}},
		"modify half a fee": {msg: ExecuteMsg{ModifyContract: &ModifyContract{
			BidFeeAccount: strPtr("acct"),
		}}, fields: []string{"bid_fee"}},
		"modify remove fee": {msg: ExecuteMsg{ModifyContract: &ModifyContract{
			AskFeeRate: strPtr(""), AskFeeAccount: strPtr(""),
		}}},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			err := tc.msg.ValidateBasic()
			switch {
			case tc.err != nil:
				require.ErrorIs(t, err, tc.err)
			case tc.fields != nil:
				requireInvalidFields(t, err, tc.fields...)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestExecuteMsgDecode(t *testing.T) {
	var msg ExecuteMsg
	require.NoError(t, UnmarshalJSON([]byte(`{"create_bid":{
		"id":"ab5f5a62-f6fc-46d1-aa84-51ccc51ec367","base":"base_1","price":"2",
		"size":"100","quote":"quote_1","quote_size":"200","fee":"20"}}`), &msg))
	require.Equal(t, ActionCreateBid, msg.Action())
	require.NotNil(t, msg.CreateBid.Fee)
	assert.Equal(t, "20", msg.CreateBid.Fee.String())
	assert.Equal(t, "200", msg.CreateBid.QuoteSize.String())
}

func TestQueryAndMigrateMsgValidateBasic(t *testing.T) {
	require.ErrorIs(t, QueryMsg{}.ValidateBasic(), ErrEmptyMsg)
	require.NoError(t, QueryMsg{GetContractInfo: &struct{}{}}.ValidateBasic())
	requireInvalidFields(t, QueryMsg{GetAsk: &OrderRef{}}.ValidateBasic(), "id")

	require.NoError(t, MigrateMsg{}.ValidateBasic())
	requireInvalidFields(t, MigrateMsg{Approvers: []string{}}.ValidateBasic(), "approvers")
	requireInvalidFields(t, MigrateMsg{AskFeeRate: strPtr("0.1")}.ValidateBasic(), "ask_fee")
}

func TestDecodeTx(t *testing.T) {
	tx, err := DecodeTx([]byte(`{"sender":"seller","funds":[{"denom":"base_1","amount":"100"}],
		"execute":{"cancel_ask":{"id":"ab5f5a62-f6fc-46d1-aa84-51ccc51ec367"}}}`))
	require.NoError(t, err)
	assert.Equal(t, ActionCancelAsk, tx.Action())
	assert.Equal(t, []Coin{NewCoin(100, "base_1")}, tx.Funds)

	_, err = DecodeTx([]byte(`{"sender":"seller"}`))
	require.ErrorIs(t, err, ErrMalformedTx)
	_, err = DecodeTx([]byte(`not json`))
	require.ErrorIs(t, err, ErrMalformedTx)

	tx, err = DecodeTx([]byte(`{"sender":"admin","migrate":{}}`))
	require.NoError(t, err)
	assert.Equal(t, ActionMigrate, tx.Action())
}
