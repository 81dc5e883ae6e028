package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	tmmath "github.com/tendermint/ats/libs/math"
	"github.com/tendermint/ats/types"
)

const (
	hyphenatedAskID   = "ab5f5a62-f6fc-46d1-aa84-51ccc51ec367"
	unhyphenatedAskID = "ab5f5a62f6fc46d1aa8451ccc51ec367"
	hyphenatedBidID   = "c13f8888-ca43-4a64-ab1b-1ca8d60aa49b"
	unhyphenatedBidID = "c13f8888ca434a64ab1b1ca8d60aa49b"

	contractAddress = "contract_address"
	asker           = "asker"
	bidder          = "bidder"
	approver        = "approver_1"
	executor        = "exec_1"
)

func testEnv() Env {
	return Env{
		ContractAddress: contractAddress,
		BlockHeight:     12345,
		BlockTime:       time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func u(v uint64) tmmath.Uint128 {
	return tmmath.NewUint128(v)
}

func up(v uint64) *tmmath.Uint128 {
	x := tmmath.NewUint128(v)
	return &x
}

func sp(s string) *string {
	return &s
}

func coins(amount uint64, denom string) []types.Coin {
	return []types.Coin{types.NewCoin(amount, denom)}
}

func bankSend(to string, amount uint64, denom string) types.Transfer {
	return types.Transfer{Kind: types.TransferBankSend, To: to, Amount: types.NewCoin(amount, denom)}
}

func markerTransfer(to, from string, amount uint64, denom string) types.Transfer {
	return types.Transfer{
		Kind:   types.TransferMarker,
		To:     to,
		From:   from,
		Admin:  contractAddress,
		Amount: types.NewCoin(amount, denom),
	}
}

func defaultInstantiateMsg() types.InstantiateMsg {
	return types.InstantiateMsg{
		Name:                  "contract_name",
		BindName:              "contract_bind_name",
		BaseDenom:             "base_1",
		ConvertibleBaseDenoms: []string{},
		SupportedQuoteDenoms:  []string{"quote_1", "quote_2"},
		Approvers:             []string{approver},
		Executors:             []string{executor},
		AskRequiredAttributes: []string{},
		BidRequiredAttributes: []string{},
		PricePrecision:        u(0),
		SizeIncrement:         u(100),
	}
}

func setupContract(t *testing.T, msg types.InstantiateMsg, opts ...Option) *Contract {
	t.Helper()
	c := New(dbm.NewMemDB(), opts...)
	_, err := c.Instantiate(testEnv(), Info{Sender: "instantiator"}, msg)
	require.NoError(t, err)
	return c
}

func execute(c *Contract, sender string, funds []types.Coin, msg types.ExecuteMsg) (*types.Response, error) {
	return c.Execute(testEnv(), Info{Sender: sender, Funds: funds}, msg)
}

func mustExecute(t *testing.T, c *Contract, sender string, funds []types.Coin, msg types.ExecuteMsg) *types.Response {
	t.Helper()
	res, err := execute(c, sender, funds, msg)
	require.NoError(t, err)
	return res
}

func createAskMsg(id, base string, price string, size uint64) types.ExecuteMsg {
	return types.ExecuteMsg{CreateAsk: &types.CreateAsk{
		ID:    id,
		Base:  base,
		Quote: "quote_1",
		Price: price,
		Size:  u(size),
	}}
}

func createBidMsg(id, price string, size, quoteSize uint64, fee *tmmath.Uint128) types.ExecuteMsg {
	return types.ExecuteMsg{CreateBid: &types.CreateBid{
		ID:        id,
		Base:      "base_1",
		Price:     price,
		Size:      u(size),
		Quote:     "quote_1",
		QuoteSize: u(quoteSize),
		Fee:       fee,
	}}
}

func matchMsg(askID, bidID, price string, size uint64) types.ExecuteMsg {
	return types.ExecuteMsg{ExecuteMatch: &types.ExecuteMatch{
		AskID: askID,
		BidID: bidID,
		Price: price,
		Size:  u(size),
	}}
}

func attr(key, value string) types.Attribute {
	return types.Attribute{Key: key, Value: value}
}

func requireAskGone(t *testing.T, c *Contract, id string) {
	t.Helper()
	ok, err := c.Store().HasAsk(id)
	require.NoError(t, err)
	require.False(t, ok, "ask %s should be removed", id)
}

func requireBidGone(t *testing.T, c *Contract, id string) {
	t.Helper()
	ok, err := c.Store().HasBid(id)
	require.NoError(t, err)
	require.False(t, ok, "bid %s should be removed", id)
}
