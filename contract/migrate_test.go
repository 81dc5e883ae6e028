package contract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	tmmath "github.com/tendermint/ats/libs/math"
	"github.com/tendermint/ats/store"
	"github.com/tendermint/ats/types"
	"github.com/tendermint/ats/version"
)

var uint128Comparer = cmp.Comparer(func(a, b tmmath.Uint128) bool { return a.Equal(b) })

// dbSnapshot copies every key/value pair in db.
func dbSnapshot(t *testing.T, db dbm.DB) map[string]string {
	t.Helper()
	it, err := db.Iterator(nil, nil)
	require.NoError(t, err)
	defer it.Close()

	snapshot := make(map[string]string)
	for ; it.Valid(); it.Next() {
		snapshot[string(it.Key())] = string(it.Value())
	}
	require.NoError(t, it.Error())
	return snapshot
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	bz, err := types.MarshalJSON(v)
	require.NoError(t, err)
	return bz
}

// legacyContract writes a store the way versions before 0.15.0 did: version
// tracking inside the contract info, issuers instead of approvers and orders
// in length-prefixed buckets.
func legacyContract(t *testing.T) (*Contract, dbm.DB) {
	t.Helper()
	db := dbm.NewMemDB()
	c := New(db)
	st := c.Store()

	st.SetRawContractInfo(mustMarshal(t, types.ContractInfoLegacy{
		Name:                  "contract_name",
		Definition:            version.Definition,
		Version:               "0.14.0",
		BindName:              "contract_bind_name",
		BaseDenom:             "base_denom",
		ConvertibleBaseDenoms: []string{"con_base_1"},
		SupportedQuoteDenoms:  []string{"quote_1"},
		Executors:             []string{executor},
		Issuers:               []string{"issuer_1", "issuer_2"},
		AskRequiredAttributes: []string{},
		BidRequiredAttributes: []string{},
		PricePrecision:        u(0),
		SizeIncrement:         u(1),
	}))
	st.SetLegacyRecord(store.LegacyNamespaceAsk, unhyphenatedAskID, []byte(`{
		"id": "`+unhyphenatedAskID+`",
		"owner": "asker",
		"class": {"Convertible": {"status": "Ready"}},
		"base": {"denom": "con_base_1", "amount": "100"},
		"quote": "quote_1",
		"price": "2",
		"size": "100"
	}`))
	st.SetLegacyRecord(store.LegacyNamespaceAsk, hyphenatedAskID, mustMarshal(t, types.AskOrderLegacy{
		ID:    hyphenatedAskID,
		Owner: asker,
		Class: types.BasicClass(),
		Base:  types.NewCoin(50, "base_denom"),
		Quote: "quote_1",
		Price: u(3),
		Size:  u(50),
	}))
	st.SetLegacyRecord(store.LegacyNamespaceBid, unhyphenatedBidID, mustMarshal(t, types.BidOrderLegacy{
		ID:    unhyphenatedBidID,
		Owner: bidder,
		Base:  "base_denom",
		Quote: types.NewCoin(200, "quote_1"),
		Price: u(2),
		Size:  u(100),
	}))
	require.NoError(t, st.Commit())
	return c, db
}

func TestMigrateLegacy(t *testing.T) {
	c, _ := legacyContract(t)

	res, err := c.Migrate(testEnv(), types.MigrateMsg{})
	require.NoError(t, err)
	assert.Equal(t, []types.Attribute{
		attr("action", "migrate"),
		attr("source_version", "0.14.0"),
		attr("target_version", version.ATSSemVer),
	}, res.Attributes)
	assert.Empty(t, res.Transfers)

	ci := loadContractInfo(t, c)
	wantCI := &types.ContractInfo{
		Name:                  "contract_name",
		BindName:              "contract_bind_name",
		BaseDenom:             "base_denom",
		ConvertibleBaseDenoms: []string{"con_base_1"},
		SupportedQuoteDenoms:  []string{"quote_1"},
		Approvers:             []string{"issuer_1", "issuer_2"},
		Executors:             []string{executor},
		AskRequiredAttributes: []string{},
		BidRequiredAttributes: []string{},
		PricePrecision:        u(0),
		SizeIncrement:         u(1),
	}
	if diff := cmp.Diff(wantCI, ci, uint128Comparer); diff != "" {
		t.Errorf("contract info mismatch (-want +got):\n%s", diff)
	}

	vi, err := c.Store().GetVersionInfo()
	require.NoError(t, err)
	assert.Equal(t, &types.VersionInfo{Definition: version.Definition, Version: version.ATSSemVer}, vi)

	ready, err := c.Store().GetAsk(unhyphenatedAskID)
	require.NoError(t, err)
	wantReady := &types.AskOrder{
		ID:    unhyphenatedAskID,
		Owner: asker,
		Class: types.ReadyClass("issuer_1", types.NewCoin(100, "base_denom")),
		Base:  "con_base_1",
		Quote: "quote_1",
		Price: "2",
		Size:  u(100),
	}
	if diff := cmp.Diff(wantReady, ready, uint128Comparer); diff != "" {
		t.Errorf("ready ask mismatch (-want +got):\n%s", diff)
	}

	basic, err := c.Store().GetAsk(hyphenatedAskID)
	require.NoError(t, err)
	assert.True(t, basic.Class.IsBasic())
	assert.Equal(t, "base_denom", basic.Base)
	assert.Equal(t, "3", basic.Price)
	assert.Equal(t, u(50), basic.Size)

	bid, err := c.Store().GetBid(unhyphenatedBidID)
	require.NoError(t, err)
	wantBid := &types.BidOrder{
		ID:    unhyphenatedBidID,
		Owner: bidder,
		Base:  types.NewCoin(100, "base_denom"),
		Quote: types.NewCoin(200, "quote_1"),
		Price: "2",
	}
	if diff := cmp.Diff(wantBid, bid, uint128Comparer); diff != "" {
		t.Errorf("bid mismatch (-want +got):\n%s", diff)
	}

	for _, ns := range []string{store.LegacyNamespaceAsk, store.LegacyNamespaceBid} {
		records, err := c.Store().LegacyRecords(ns)
		require.NoError(t, err)
		assert.Empty(t, records, ns)
	}
}

func TestMigrateLegacyOrdersRemainUsable(t *testing.T) {
	c, _ := legacyContract(t)
	_, err := c.Migrate(testEnv(), types.MigrateMsg{})
	require.NoError(t, err)

	// unhyphenated ids are looked up verbatim on the reversal paths
	res := mustExecute(t, c, executor, nil, types.ExecuteMsg{ExpireAsk: &types.OrderRef{ID: unhyphenatedAskID}})
	assert.Equal(t, []types.Transfer{
		bankSend(asker, 100, "con_base_1"),
		bankSend("issuer_1", 100, "base_denom"),
	}, res.Transfers)
	requireAskGone(t, c, unhyphenatedAskID)

	res = mustExecute(t, c, bidder, nil, types.ExecuteMsg{CancelBid: &types.OrderRef{ID: unhyphenatedBidID}})
	assert.Equal(t, []types.Transfer{bankSend(bidder, 200, "quote_1")}, res.Transfers)
	requireBidGone(t, c, unhyphenatedBidID)

	mustExecute(t, c, bidder, coins(150, "quote_1"), types.ExecuteMsg{CreateBid: &types.CreateBid{
		ID: hyphenatedBidID, Base: "base_denom", Price: "3", Size: u(50), Quote: "quote_1", QuoteSize: u(150),
	}})
	res = mustExecute(t, c, executor, nil, matchMsg(hyphenatedAskID, hyphenatedBidID, "3", 50))
	assert.Equal(t, []types.Transfer{
		bankSend(asker, 150, "quote_1"),
		bankSend(bidder, 50, "base_denom"),
	}, res.Transfers)
}

func TestMigrateIdempotent(t *testing.T) {
	t.Run("current store", func(t *testing.T) {
		db := dbm.NewMemDB()
		c := New(db)
		_, err := c.Instantiate(testEnv(), Info{Sender: "instantiator"}, defaultInstantiateMsg())
		require.NoError(t, err)
		mustExecute(t, c, asker, coins(100, "base_1"), createAskMsg(hyphenatedAskID, "base_1", "2", 100))

		before := dbSnapshot(t, db)
		_, err = c.Migrate(testEnv(), types.MigrateMsg{})
		require.NoError(t, err)
		assert.Equal(t, before, dbSnapshot(t, db))
	})

	t.Run("legacy store", func(t *testing.T) {
		c, db := legacyContract(t)
		_, err := c.Migrate(testEnv(), types.MigrateMsg{})
		require.NoError(t, err)

		before := dbSnapshot(t, db)
		_, err = c.Migrate(testEnv(), types.MigrateMsg{})
		require.NoError(t, err)
		assert.Equal(t, before, dbSnapshot(t, db))
	})
}

func TestMigrateContractInfoShapes(t *testing.T) {
	v1 := types.ContractInfoV1{
		Name:                  "contract_name",
		BindName:              "contract_bind_name",
		BaseDenom:             "base_1",
		ConvertibleBaseDenoms: []string{},
		SupportedQuoteDenoms:  []string{"quote_1"},
		Approvers:             []string{approver},
		Executors:             []string{executor},
		AskRequiredAttributes: []string{},
		BidRequiredAttributes: []string{},
		PricePrecision:        u(2),
		SizeIncrement:         u(100),
	}
	want := types.ContractInfo{
		Name:                  "contract_name",
		BindName:              "contract_bind_name",
		BaseDenom:             "base_1",
		ConvertibleBaseDenoms: []string{},
		SupportedQuoteDenoms:  []string{"quote_1"},
		Approvers:             []string{approver},
		Executors:             []string{executor},
		AskRequiredAttributes: []string{},
		BidRequiredAttributes: []string{},
		PricePrecision:        u(2),
		SizeIncrement:         u(100),
	}
	withBidFee := want
	withBidFee.BidFeeInfo = &types.FeeInfo{Account: "acct_B", Rate: "0.01"}

	testCases := []struct {
		msg     string
		version string
		stored  interface{}
		want    types.ContractInfo
	}{
		{"v1", "0.15.1", v1, want},
		{"v2 without fee", "0.15.2", types.ContractInfoV2{ContractInfoV1: v1}, want},
		{"v2 with fee", "0.15.3", types.ContractInfoV2{ContractInfoV1: v1, FeeRate: sp("0.01"), FeeAccount: sp("acct_B")}, withBidFee},
		{"current", "0.16.2", want, want},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.msg, func(t *testing.T) {
			c := New(dbm.NewMemDB())
			st := c.Store()
			st.SetRawContractInfo(mustMarshal(t, tc.stored))
			require.NoError(t, st.SetVersionInfo(&types.VersionInfo{Definition: version.Definition, Version: tc.version}))
			// a current-shape bid left in its bucket by 0.15.x
			st.SetLegacyRecord(store.LegacyNamespaceBid, hyphenatedBidID, mustMarshal(t, types.BidOrder{
				ID:    hyphenatedBidID,
				Owner: bidder,
				Base:  types.NewCoin(100, "base_1"),
				Quote: types.NewCoin(200, "quote_1"),
				Price: "2",
			}))
			require.NoError(t, st.Commit())

			res, err := c.Migrate(testEnv(), types.MigrateMsg{})
			require.NoError(t, err)
			assert.Equal(t, attr("source_version", tc.version), res.Attributes[1])

			if diff := cmp.Diff(&tc.want, loadContractInfo(t, c), uint128Comparer); diff != "" {
				t.Errorf("contract info mismatch (-want +got):\n%s", diff)
			}
			ok, err := st.HasBid(hyphenatedBidID)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestMigrateOverrides(t *testing.T) {
	c := setupContract(t, defaultInstantiateMsg())

	_, err := c.Migrate(testEnv(), types.MigrateMsg{
		Approvers:             []string{"approver_2"},
		BidFeeRate:            sp("0.05"),
		BidFeeAccount:         sp("acct_B"),
		AskRequiredAttributes: []string{"ask.kyc"},
	})
	require.NoError(t, err)

	ci := loadContractInfo(t, c)
	assert.Equal(t, []string{"approver_2"}, ci.Approvers)
	assert.Nil(t, ci.AskFeeInfo)
	assert.Equal(t, &types.FeeInfo{Account: "acct_B", Rate: "0.05"}, ci.BidFeeInfo)
	assert.Equal(t, []string{"ask.kyc"}, ci.AskRequiredAttributes)
	assert.Equal(t, []string{}, ci.BidRequiredAttributes)

	_, err = c.Migrate(testEnv(), types.MigrateMsg{BidFeeRate: sp(""), BidFeeAccount: sp("")})
	require.NoError(t, err)
	assert.Nil(t, loadContractInfo(t, c).BidFeeInfo)

	_, err = c.Migrate(testEnv(), types.MigrateMsg{Approvers: []string{}})
	assert.Equal(t, types.NewErrInvalidFields("approvers"), err)
}

func TestMigrateUnsupported(t *testing.T) {
	testCases := []struct {
		msg   string
		setup func(t *testing.T, st *store.Store)
		err   error
	}{
		{
			"empty store",
			func(t *testing.T, st *store.Store) {},
			types.ErrUnsupportedUpgrade{SourceVersion: unknownVersion, TargetVersion: version.ATSSemVer},
		},
		{
			"no recorded version",
			func(t *testing.T, st *store.Store) {
				st.SetRawContractInfo(mustMarshal(t, types.ContractInfoLegacy{Name: "contract_name"}))
			},
			types.ErrUnsupportedUpgrade{SourceVersion: unknownVersion, TargetVersion: version.ATSSemVer},
		},
		{
			"newer version",
			func(t *testing.T, st *store.Store) {
				require.NoError(t, st.SetVersionInfo(&types.VersionInfo{Definition: version.Definition, Version: "99.0.0"}))
			},
			types.ErrUnsupportedUpgrade{SourceVersion: "99.0.0", TargetVersion: version.ATSSemVer},
		},
		{
			"other definition",
			func(t *testing.T, st *store.Store) {
				require.NoError(t, st.SetVersionInfo(&types.VersionInfo{Definition: "other-contract", Version: "0.15.0"}))
			},
			types.ErrUnsupportedUpgrade{SourceVersion: "0.15.0", TargetVersion: version.ATSSemVer},
		},
		{
			"unparsable version",
			func(t *testing.T, st *store.Store) {
				require.NoError(t, st.SetVersionInfo(&types.VersionInfo{Definition: version.Definition, Version: "latest"}))
			},
			types.ErrUnsupportedUpgrade{SourceVersion: "latest", TargetVersion: version.ATSSemVer},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.msg, func(t *testing.T) {
			db := dbm.NewMemDB()
			c := New(db)
			tc.setup(t, c.Store())
			require.NoError(t, c.Store().Commit())
			before := dbSnapshot(t, db)

			_, err := c.Migrate(testEnv(), types.MigrateMsg{})
			assert.Equal(t, tc.err, err)
			assert.Equal(t, before, dbSnapshot(t, db))
		})
	}
}
