package contract

import (
	"errors"
	"time"

	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/ats/libs/log"
	"github.com/tendermint/ats/store"
	"github.com/tendermint/ats/types"
	"github.com/tendermint/ats/version"
)

// Env is the block context of a transition.
type Env struct {
	// ContractAddress is the account holding escrowed funds. It signs
	// restricted-marker transfers as administrator.
	ContractAddress string
	BlockHeight     int64
	BlockTime       time.Time
}

// Info identifies the caller of a transition and the funds it attached.
type Info struct {
	Sender string
	Funds  []types.Coin
}

// Option sets an optional parameter on the Contract.
type Option func(*Contract)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Contract) { c.logger = logger }
}

// WithMetrics sets the metrics. Defaults to NopMetrics.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Contract) { c.metrics = metrics }
}

// WithMarkerQuerier sets the restricted marker source. By default no denom
// is restricted.
func WithMarkerQuerier(q MarkerQuerier) Option {
	return func(c *Contract) { c.markers = q }
}

// WithAttributeQuerier sets the account attribute source. By default no
// account holds any attribute.
func WithAttributeQuerier(q AttributeQuerier) Option {
	return func(c *Contract) { c.attributes = q }
}

/*
Contract is the order book engine of a single market.

Each entry point is one atomic transition: on success every buffered store
write is committed and the response lists the transfers the host must carry
out; on error nothing is written. Contract is not safe for concurrent use;
the host serializes transitions.
*/
type Contract struct {
	store      *store.Store
	markers    MarkerQuerier
	attributes AttributeQuerier
	logger     log.Logger
	metrics    *Metrics
}

// New returns a Contract persisting to db.
func New(db dbm.DB, opts ...Option) *Contract {
	c := &Contract{
		store:      store.NewStore(db),
		markers:    NewStaticMarkers(),
		attributes: NewStaticAttributes(),
		logger:     log.NewNopLogger(),
		metrics:    NopMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the contract's store.
func (c *Contract) Store() *store.Store {
	return c.store
}

// Instantiate configures the market and records the running version.
func (c *Contract) Instantiate(env Env, info Info, msg types.InstantiateMsg) (*types.Response, error) {
	res, err := c.instantiate(env, info, msg)
	return c.finish(types.ActionInit, res, err)
}

// Execute runs a single order book operation.
func (c *Contract) Execute(env Env, info Info, msg types.ExecuteMsg) (*types.Response, error) {
	res, err := c.execute(env, info, msg)
	return c.finish(msg.Action(), res, err)
}

// Migrate upgrades the stored state to the running version.
func (c *Contract) Migrate(env Env, msg types.MigrateMsg) (*types.Response, error) {
	res, err := c.migrate(env, msg)
	return c.finish(types.ActionMigrate, res, err)
}

func (c *Contract) execute(env Env, info Info, msg types.ExecuteMsg) (*types.Response, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	ci, err := c.contractInfo()
	if err != nil {
		return nil, err
	}

	switch {
	case msg.CreateAsk != nil:
		return c.createAsk(env, info, ci, msg.CreateAsk)
	case msg.CreateBid != nil:
		return c.createBid(env, info, ci, msg.CreateBid)
	case msg.ApproveAsk != nil:
		return c.approveAsk(env, info, ci, msg.ApproveAsk)
	case msg.CancelAsk != nil:
		return c.cancelAsk(env, info, msg.CancelAsk.ID)
	case msg.CancelBid != nil:
		return c.reverseBid(env, info, ci, types.ActionCancelBid, msg.CancelBid.ID, nil)
	case msg.ExpireAsk != nil:
		return c.reverseAsk(env, info, ci, types.ActionExpireAsk, msg.ExpireAsk.ID, nil)
	case msg.ExpireBid != nil:
		return c.reverseBid(env, info, ci, types.ActionExpireBid, msg.ExpireBid.ID, nil)
	case msg.RejectAsk != nil:
		return c.reverseAsk(env, info, ci, types.ActionRejectAsk, msg.RejectAsk.ID, msg.RejectAsk.Size)
	case msg.RejectBid != nil:
		return c.reverseBid(env, info, ci, types.ActionRejectBid, msg.RejectBid.ID, msg.RejectBid.Size)
	case msg.ExecuteMatch != nil:
		return c.executeMatch(env, info, ci, msg.ExecuteMatch)
	case msg.ModifyContract != nil:
		return c.modifyContract(info, ci, msg.ModifyContract)
	}
	return nil, types.ErrEmptyMsg
}

// finish commits or discards the buffered writes of a transition.
func (c *Contract) finish(action string, res *types.Response, err error) (*types.Response, error) {
	if err == nil {
		err = c.store.Commit()
	}
	if err != nil {
		c.store.Discard()
		c.metrics.OperationFailures.With("action", action).Add(1)
		c.logger.Debug("transition failed", "action", action, "err", err)
		return nil, err
	}

	c.metrics.Operations.With("action", action).Add(1)
	c.updateOrderGauges()
	c.logger.Debug("transition executed", "action", action, "transfers", len(res.Transfers))
	return res, nil
}

func (c *Contract) updateOrderGauges() {
	asks, bids, err := c.store.OrderCounts()
	if err != nil {
		c.logger.Error("failed to count orders", "err", err)
		return
	}
	c.metrics.OpenAsks.Set(float64(asks))
	c.metrics.OpenBids.Set(float64(bids))
}

func (c *Contract) contractInfo() (*types.ContractInfo, error) {
	ci, err := c.store.GetContractInfo()
	if errors.Is(err, store.ErrNotFound) {
		return nil, types.ErrContractNotInstantiated
	}
	return ci, err
}

// storedVersion returns the version that last wrote the store. Stores
// written before version info was split out carry it in the contract info.
func (c *Contract) storedVersion() (*types.VersionInfo, error) {
	vi, err := c.store.GetVersionInfoIfAny()
	if err != nil || vi != nil {
		return vi, err
	}

	var legacy types.ContractInfoLegacy
	err = c.store.LoadContractInfoAs(&legacy)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	case legacy.Version == "":
		return nil, nil
	}
	return &types.VersionInfo{Definition: legacy.Definition, Version: legacy.Version}, nil
}

func currentVersionInfo() *types.VersionInfo {
	return &types.VersionInfo{Definition: version.Definition, Version: version.ATSSemVer}
}

func loadOrderFailed(err error) error {
	return types.ErrLoadOrderFailed{Err: err}
}

func (c *Contract) getAsk(id string) (*types.AskOrder, error) {
	ask, err := c.store.GetAsk(id)
	if err != nil {
		return nil, loadOrderFailed(err)
	}
	return ask, nil
}

// getBid loads a bid, failing with ErrBidOrderNotFound when none is stored
// under id.
func (c *Contract) getBid(id string) (*types.BidOrder, error) {
	bid, err := c.store.GetBid(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, types.ErrBidOrderNotFound
	} else if err != nil {
		return nil, loadOrderFailed(err)
	}
	return bid, nil
}
