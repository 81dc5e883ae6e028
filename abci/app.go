package abci

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	abcitypes "github.com/tendermint/tendermint/abci/types"

	"github.com/tendermint/ats/contract"
	"github.com/tendermint/ats/libs/log"
	"github.com/tendermint/ats/types"
	"github.com/tendermint/ats/version"
)

const (
	// QueryPath is the only path served by Query. The request data is a
	// JSON QueryMsg.
	QueryPath = "/ats"

	// DefaultContractAddress holds escrowed funds when no address is
	// configured.
	DefaultContractAddress = "ats_contract"

	EventTypeContract = "wasm"
	EventTypeTransfer = "transfer"

	appVersion uint64 = 1
)

var errUnknownPath = errors.New("unknown query path")

// TxRecord is a successful transition delivered in a block.
type TxRecord struct {
	Height   int64
	Index    uint32
	Sender   string
	Action   string
	Response *types.Response
	Time     time.Time
}

// EventSink receives the successful transitions of each committed block.
type EventSink interface {
	IndexBlock(height int64, records []TxRecord) error
}

// Option sets an optional parameter on the Application.
type Option func(*Application)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(app *Application) { app.logger = logger }
}

// WithEventSink forwards committed transitions to sink.
func WithEventSink(sink EventSink) Option {
	return func(app *Application) { app.sink = sink }
}

// WithContractAddress sets the account holding escrowed funds.
func WithContractAddress(addr string) Option {
	return func(app *Application) { app.contractAddress = addr }
}

// WithMigrateAdmin sets the only sender allowed to submit migrate txs. With
// no admin, migrate txs are rejected.
func WithMigrateAdmin(admin string) Option {
	return func(app *Application) { app.migrateAdmin = admin }
}

var _ abcitypes.Application = (*Application)(nil)

// Application serves a single market over ABCI. Every DeliverTx is one
// transition of the engine; Commit chains the hashes of the block's
// successful txs into the app hash.
type Application struct {
	abcitypes.BaseApplication

	mu              sync.Mutex
	logger          log.Logger
	contract        *contract.Contract
	sink            EventSink
	contractAddress string
	migrateAdmin    string

	state    State
	header   contract.Env
	txIndex  uint32
	txHashes [][]byte
	records  []TxRecord
}

// NewApplication returns an Application driving c. The chain state is
// persisted alongside the contract's records.
func NewApplication(c *contract.Contract, opts ...Option) (*Application, error) {
	app := &Application{
		logger:          log.NewNopLogger(),
		contract:        c,
		contractAddress: DefaultContractAddress,
	}
	for _, opt := range opts {
		opt(app)
	}

	state, err := loadState(c.Store().DB())
	if err != nil {
		return nil, err
	}
	app.state = state
	app.header = contract.Env{ContractAddress: app.contractAddress, BlockHeight: state.Height}
	return app, nil
}

// State returns the last committed chain state.
func (app *Application) State() State {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.state
}

// Info implements ABCI.
func (app *Application) Info(req abcitypes.RequestInfo) abcitypes.ResponseInfo {
	app.mu.Lock()
	defer app.mu.Unlock()

	return abcitypes.ResponseInfo{
		Data:             version.Definition,
		Version:          version.Version,
		AppVersion:       appVersion,
		LastBlockHeight:  app.state.Height,
		LastBlockAppHash: app.state.AppHash,
	}
}

// InitChain implements ABCI. The app state carries the GenesisState that
// instantiates the market.
func (app *Application) InitChain(req abcitypes.RequestInitChain) abcitypes.ResponseInitChain {
	app.mu.Lock()
	defer app.mu.Unlock()

	if len(req.AppStateBytes) == 0 {
		app.logger.Info("no app state in genesis, market left uninstantiated")
		return abcitypes.ResponseInitChain{}
	}

	var genesis types.GenesisState
	if err := types.UnmarshalJSON(req.AppStateBytes, &genesis); err != nil {
		panic(fmt.Errorf("decode genesis app state: %w", err))
	}
	env := contract.Env{
		ContractAddress: app.contractAddress,
		BlockHeight:     req.InitialHeight,
		BlockTime:       req.Time,
	}
	if _, err := app.contract.Instantiate(env, contract.Info{Sender: genesis.Sender}, genesis.Contract); err != nil {
		panic(fmt.Errorf("instantiate market: %w", err))
	}

	app.logger.Info("instantiated market", "name", genesis.Contract.Name, "base", genesis.Contract.BaseDenom)
	return abcitypes.ResponseInitChain{AppHash: app.state.AppHash}
}

// CheckTx implements ABCI. Only stateless validation is performed.
func (app *Application) CheckTx(req abcitypes.RequestCheckTx) abcitypes.ResponseCheckTx {
	if _, err := types.DecodeTx(req.Tx); err != nil {
		return abcitypes.ResponseCheckTx{Code: ErrorCode(err), Codespace: Codespace, Log: err.Error()}
	}
	return abcitypes.ResponseCheckTx{Code: CodeTypeOK, GasWanted: 1}
}

// BeginBlock implements ABCI.
func (app *Application) BeginBlock(req abcitypes.RequestBeginBlock) abcitypes.ResponseBeginBlock {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.header = contract.Env{
		ContractAddress: app.contractAddress,
		BlockHeight:     req.Header.Height,
		BlockTime:       req.Header.Time,
	}
	app.txIndex = 0
	app.txHashes = nil
	app.records = nil
	return abcitypes.ResponseBeginBlock{}
}

// DeliverTx implements ABCI.
func (app *Application) DeliverTx(req abcitypes.RequestDeliverTx) abcitypes.ResponseDeliverTx {
	app.mu.Lock()
	defer app.mu.Unlock()

	index := app.txIndex
	app.txIndex++

	tx, err := types.DecodeTx(req.Tx)
	if err != nil {
		return app.deliverError("", err)
	}

	res, err := app.deliver(tx)
	if err != nil {
		return app.deliverError(tx.Action(), err)
	}

	data, err := types.MarshalJSON(res)
	if err != nil {
		return app.deliverError(tx.Action(), err)
	}

	txHash := sha256.Sum256(req.Tx)
	app.txHashes = append(app.txHashes, txHash[:])
	app.records = append(app.records, TxRecord{
		Height:   app.header.BlockHeight,
		Index:    index,
		Sender:   tx.Sender,
		Action:   res.Action(),
		Response: res,
		Time:     app.header.BlockTime,
	})

	return abcitypes.ResponseDeliverTx{
		Code:   CodeTypeOK,
		Data:   data,
		Events: responseEvents(res),
	}
}

func (app *Application) deliver(tx *types.Tx) (*types.Response, error) {
	if tx.Migrate != nil {
		if app.migrateAdmin == "" || tx.Sender != app.migrateAdmin {
			return nil, types.ErrUnauthorized
		}
		return app.contract.Migrate(app.header, *tx.Migrate)
	}
	return app.contract.Execute(app.header, contract.Info{Sender: tx.Sender, Funds: tx.Funds}, *tx.Execute)
}

func (app *Application) deliverError(action string, err error) abcitypes.ResponseDeliverTx {
	code := ErrorCode(err)
	if code == CodeTypeInternalError {
		app.logger.Error("transition failed", "action", action, "height", app.header.BlockHeight, "err", err)
	} else {
		app.logger.Debug("transition rejected", "action", action, "height", app.header.BlockHeight, "err", err)
	}
	return abcitypes.ResponseDeliverTx{Code: code, Codespace: Codespace, Log: err.Error()}
}

// Commit implements ABCI.
func (app *Application) Commit() abcitypes.ResponseCommit {
	app.mu.Lock()
	defer app.mu.Unlock()

	height := app.header.BlockHeight
	if height <= app.state.Height {
		height = app.state.Height + 1
	}
	state := State{Height: height, AppHash: nextAppHash(app.state.AppHash, app.txHashes)}
	if err := saveState(app.contract.Store().DB(), state); err != nil {
		panic(err)
	}
	app.state = state

	if app.sink != nil && len(app.records) > 0 {
		if err := app.sink.IndexBlock(height, app.records); err != nil {
			app.logger.Error("failed to index block", "height", height, "err", err)
		}
	}
	app.txHashes = nil
	app.records = nil

	return abcitypes.ResponseCommit{Data: state.AppHash}
}

// Query implements ABCI.
func (app *Application) Query(req abcitypes.RequestQuery) abcitypes.ResponseQuery {
	app.mu.Lock()
	defer app.mu.Unlock()

	res := abcitypes.ResponseQuery{Height: app.state.Height, Key: req.Data}
	if req.Path != QueryPath {
		res.Code, res.Codespace, res.Log = CodeTypeUnknownRequest, Codespace, errUnknownPath.Error()
		return res
	}

	var msg types.QueryMsg
	if err := types.UnmarshalJSON(req.Data, &msg); err != nil {
		res.Code, res.Codespace, res.Log = CodeTypeEncodingError, Codespace, err.Error()
		return res
	}
	value, err := app.contract.Query(app.header, msg)
	if err != nil {
		res.Code, res.Codespace, res.Log = ErrorCode(err), Codespace, err.Error()
		return res
	}
	res.Value = value
	return res
}

// responseEvents renders the attributes as a single contract event and each
// transfer as its own event.
func responseEvents(res *types.Response) []abcitypes.Event {
	events := make([]abcitypes.Event, 0, 1+len(res.Transfers))

	attrs := make([]abcitypes.EventAttribute, 0, len(res.Attributes))
	for _, a := range res.Attributes {
		attrs = append(attrs, abcitypes.EventAttribute{Key: []byte(a.Key), Value: []byte(a.Value), Index: true})
	}
	events = append(events, abcitypes.Event{Type: EventTypeContract, Attributes: attrs})

	for _, t := range res.Transfers {
		attrs := []abcitypes.EventAttribute{
			{Key: []byte("kind"), Value: []byte(t.Kind)},
			{Key: []byte("recipient"), Value: []byte(t.To), Index: true},
			{Key: []byte("amount"), Value: []byte(t.Amount.String())},
		}
		if t.From != "" {
			attrs = append(attrs, abcitypes.EventAttribute{Key: []byte("sender"), Value: []byte(t.From)})
		}
		if t.Admin != "" {
			attrs = append(attrs, abcitypes.EventAttribute{Key: []byte("admin"), Value: []byte(t.Admin)})
		}
		events = append(events, abcitypes.Event{Type: EventTypeTransfer, Attributes: attrs})
	}
	return events
}
