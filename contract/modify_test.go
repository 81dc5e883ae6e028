package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/ats/types"
	"github.com/tendermint/ats/version"
)

func modifyMsg(m types.ModifyContract) types.ExecuteMsg {
	return types.ExecuteMsg{ModifyContract: &m}
}

func loadContractInfo(t *testing.T, c *Contract) *types.ContractInfo {
	t.Helper()
	ci, err := c.Store().GetContractInfo()
	require.NoError(t, err)
	return ci
}

func TestModifyContractWithoutOrders(t *testing.T) {
	c := setupContract(t, feeInstantiateMsg("0.01", "0.10", 100))

	res := mustExecute(t, c, executor, nil, modifyMsg(types.ModifyContract{
		Approvers:             []string{"approver_2"},
		Executors:             []string{"exec_2"},
		AskFeeRate:            sp(""),
		AskFeeAccount:         sp(""),
		BidFeeRate:            sp("0.2"),
		BidFeeAccount:         sp("acct_C"),
		AskRequiredAttributes: []string{"ask.kyc"},
		BidRequiredAttributes: []string{"bid.kyc"},
	}))
	assert.Equal(t, []types.Attribute{attr("action", "modify_contract")}, res.Attributes)
	assert.Empty(t, res.Transfers)

	ci := loadContractInfo(t, c)
	assert.Equal(t, []string{"approver_2"}, ci.Approvers)
	assert.Equal(t, []string{"exec_2"}, ci.Executors)
	assert.Nil(t, ci.AskFeeInfo)
	assert.Equal(t, &types.FeeInfo{Account: "acct_C", Rate: "0.2"}, ci.BidFeeInfo)
	assert.Equal(t, []string{"ask.kyc"}, ci.AskRequiredAttributes)
	assert.Equal(t, []string{"bid.kyc"}, ci.BidRequiredAttributes)

	// the previous executor lost its role
	_, err := execute(c, executor, nil, modifyMsg(types.ModifyContract{Executors: []string{executor}}))
	assert.Equal(t, types.ErrUnauthorized, err)
}

func TestModifyContractWithBids(t *testing.T) {
	setup := func(t *testing.T) *Contract {
		c := setupContract(t, feeInstantiateMsg("", "0.10", 100))
		mustExecute(t, c, bidder, coins(220, "quote_1"), createBidMsg(hyphenatedBidID, "2", 100, 200, up(20)))
		return c
	}

	testCases := map[string]struct {
		msg types.ModifyContract
		err error
	}{
		"bid attributes frozen": {
			types.ModifyContract{BidRequiredAttributes: []string{"bid.kyc"}},
			types.NewErrInvalidFields("bid_required_attributes"),
		},
		"unchanged bid attributes": {
			types.ModifyContract{BidRequiredAttributes: []string{}},
			nil,
		},
		"equal rate new account": {
			types.ModifyContract{BidFeeRate: sp("0.1"), BidFeeAccount: sp("acct_C")},
			nil,
		},
		"rate change": {
			types.ModifyContract{BidFeeRate: sp("0.2"), BidFeeAccount: sp("acct_B")},
			types.NewErrInvalidFields("bid_fee"),
		},
		"fee removal": {
			types.ModifyContract{BidFeeRate: sp(""), BidFeeAccount: sp("")},
			types.NewErrInvalidFields("bid_fee"),
		},
		"ask side is free": {
			types.ModifyContract{
				AskFeeRate:            sp("0.05"),
				AskFeeAccount:         sp("acct_A"),
				AskRequiredAttributes: []string{"ask.kyc"},
			},
			nil,
		},
		"approvers extended": {
			types.ModifyContract{Approvers: []string{approver, "approver_2"}},
			nil,
		},
		"approvers replaced": {
			types.ModifyContract{Approvers: []string{"approver_2"}},
			types.NewErrInvalidFields("approvers"),
		},
		"several frozen fields": {
			types.ModifyContract{
				Approvers:             []string{"approver_2"},
				BidRequiredAttributes: []string{"bid.kyc"},
			},
			types.NewErrInvalidFields("approvers", "bid_required_attributes"),
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			c := setup(t)
			before := loadContractInfo(t, c)
			_, err := execute(c, executor, nil, modifyMsg(tc.msg))
			if tc.err != nil {
				assert.Equal(t, tc.err, err)
				assert.Equal(t, before, loadContractInfo(t, c))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestModifyContractWithAsks(t *testing.T) {
	setup := func(t *testing.T, askRate string) *Contract {
		c := setupContract(t, feeInstantiateMsg(askRate, "", 100))
		mustExecute(t, c, asker, coins(100, "base_1"), createAskMsg(hyphenatedAskID, "base_1", "2", 100))
		return c
	}

	testCases := map[string]struct {
		askRate string
		msg     types.ModifyContract
		err     error
	}{
		"ask attributes frozen": {
			"0.01",
			types.ModifyContract{AskRequiredAttributes: []string{"ask.kyc"}},
			types.NewErrInvalidFields("ask_required_attributes"),
		},
		"unchanged ask attributes": {
			"0.01",
			types.ModifyContract{AskRequiredAttributes: []string{}},
			nil,
		},
		"equal rate new account": {
			"0.01",
			types.ModifyContract{AskFeeRate: sp("0.010"), AskFeeAccount: sp("acct_C")},
			nil,
		},
		"rate change": {
			"0.01",
			types.ModifyContract{AskFeeRate: sp("0.02"), AskFeeAccount: sp("acct_A")},
			types.NewErrInvalidFields("ask_fee"),
		},
		"fee removal": {
			"0.01",
			types.ModifyContract{AskFeeRate: sp(""), AskFeeAccount: sp("")},
			types.NewErrInvalidFields("ask_fee"),
		},
		"fee added": {
			"",
			types.ModifyContract{AskFeeRate: sp("0.01"), AskFeeAccount: sp("acct_A")},
			types.NewErrInvalidFields("ask_fee"),
		},
		"bid side is free": {
			"0.01",
			types.ModifyContract{
				BidFeeRate:            sp("0.2"),
				BidFeeAccount:         sp("acct_B"),
				BidRequiredAttributes: []string{"bid.kyc"},
			},
			nil,
		},
		"approvers replaced": {
			"0.01",
			types.ModifyContract{Approvers: []string{"approver_2"}},
			types.NewErrInvalidFields("approvers"),
		},
		"several frozen fields": {
			"0.01",
			types.ModifyContract{
				AskFeeRate:            sp("0.02"),
				AskFeeAccount:         sp("acct_A"),
				AskRequiredAttributes: []string{"ask.kyc"},
			},
			types.NewErrInvalidFields("ask_fee", "ask_required_attributes"),
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			c := setup(t, tc.askRate)
			before := loadContractInfo(t, c)
			_, err := execute(c, executor, nil, modifyMsg(tc.msg))
			if tc.err != nil {
				assert.Equal(t, tc.err, err)
				assert.Equal(t, before, loadContractInfo(t, c))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestModifyContractAskFeeWithOnlyBids(t *testing.T) {
	c := setupContract(t, feeInstantiateMsg("0.01", "0.10", 100))
	mustExecute(t, c, bidder, coins(220, "quote_1"), createBidMsg(hyphenatedBidID, "2", 100, 200, up(20)))

	mustExecute(t, c, executor, nil, modifyMsg(types.ModifyContract{AskFeeRate: sp("0.05"), AskFeeAccount: sp("acct_C")}))
	assert.Equal(t, &types.FeeInfo{Account: "acct_C", Rate: "0.05"}, loadContractInfo(t, c).AskFeeInfo)

	mustExecute(t, c, executor, nil, modifyMsg(types.ModifyContract{AskFeeRate: sp(""), AskFeeAccount: sp("")}))
	assert.Nil(t, loadContractInfo(t, c).AskFeeInfo)
}

func TestModifyContractEqualRateKeepsNewAccount(t *testing.T) {
	c := setupContract(t, feeInstantiateMsg("", "0.10", 100))
	mustExecute(t, c, bidder, coins(220, "quote_1"), createBidMsg(hyphenatedBidID, "2", 100, 200, up(20)))

	mustExecute(t, c, executor, nil, modifyMsg(types.ModifyContract{BidFeeRate: sp("0.1"), BidFeeAccount: sp("acct_C")}))
	assert.Equal(t, &types.FeeInfo{Account: "acct_C", Rate: "0.1"}, loadContractInfo(t, c).BidFeeInfo)
}

func TestModifyContractErrors(t *testing.T) {
	c := setupContract(t, defaultInstantiateMsg())

	_, err := execute(c, asker, nil, modifyMsg(types.ModifyContract{Executors: []string{asker}}))
	assert.Equal(t, types.ErrUnauthorized, err)

	_, err = execute(c, executor, nil, modifyMsg(types.ModifyContract{}))
	assert.Equal(t, types.NewErrInvalidFields("*"), err)

	_, err = execute(c, executor, nil, modifyMsg(types.ModifyContract{Approvers: []string{}}))
	assert.Equal(t, types.NewErrInvalidFields("approvers_empty"), err)

	_, err = execute(c, executor, nil, modifyMsg(types.ModifyContract{BidFeeRate: sp("0.1")}))
	assert.Equal(t, types.NewErrInvalidFields("bid_fee"), err)
}

func TestModifyContractStoredVersionGate(t *testing.T) {
	c := setupContract(t, defaultInstantiateMsg())
	require.NoError(t, c.Store().SetVersionInfo(&types.VersionInfo{Definition: version.Definition, Version: "0.16.1"}))
	require.NoError(t, c.Store().Commit())

	_, err := execute(c, executor, nil, modifyMsg(types.ModifyContract{Executors: []string{"exec_2"}}))
	assert.Equal(t, types.ErrUnsupportedUpgrade{SourceVersion: "0.16.1", TargetVersion: version.ATSSemVer}, err)

	require.NoError(t, c.Store().SetVersionInfo(&types.VersionInfo{Definition: version.Definition, Version: "0.16.2"}))
	require.NoError(t, c.Store().Commit())
	mustExecute(t, c, executor, nil, modifyMsg(types.ModifyContract{Executors: []string{"exec_2"}}))
}
