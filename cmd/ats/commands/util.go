package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	abcitypes "github.com/tendermint/tendermint/abci/types"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/ats/abci"
	"github.com/tendermint/ats/contract"
	"github.com/tendermint/ats/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const dbName = "ats"

// openDB opens the node's database using the configured backend.
func openDB() (dbm.DB, error) {
	db, err := dbm.NewDB(dbName, dbm.BackendType(config.DBBackend), config.DBDir())
	if err != nil {
		return nil, fmt.Errorf("open %s database in %s: %w", config.DBBackend, config.DBDir(), err)
	}
	return db, nil
}

// newContract builds the engine over db with the configured host adapters.
func newContract(db dbm.DB, metrics *contract.Metrics) *contract.Contract {
	attributes := contract.NewStaticAttributes()
	for addr, names := range config.ABCI.AttributeGrants {
		attributes.Grant(addr, names...)
	}

	return contract.New(db,
		contract.WithLogger(logger.With("module", "contract")),
		contract.WithMetrics(metrics),
		contract.WithMarkerQuerier(contract.NewStaticMarkers(config.ABCI.RestrictedMarkers...)),
		contract.WithAttributeQuerier(attributes),
	)
}

// newApplication wraps c in the ABCI application configured by the node
// config.
func newApplication(c *contract.Contract, opts ...abci.Option) (*abci.Application, error) {
	opts = append([]abci.Option{
		abci.WithLogger(logger.With("module", "abci")),
		abci.WithContractAddress(config.ABCI.ContractAddress),
		abci.WithMigrateAdmin(config.ABCI.MigrateAdmin),
	}, opts...)
	return abci.NewApplication(c, opts...)
}

// openOfflineApp opens the database and returns an application for running
// transactions without a consensus engine. A fresh store is instantiated
// from the genesis file when one exists. The returned closer releases the
// database.
func openOfflineApp() (*abci.Application, func() error, error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	app, err := newApplication(newContract(db, contract.NopMetrics()))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := initFromGenesis(app); err != nil {
		db.Close()
		return nil, nil, err
	}
	return app, db.Close, nil
}

func initFromGenesis(app *abci.Application) error {
	if app.State().Height > 0 {
		return nil
	}
	res := app.Query(abcitypes.RequestQuery{Path: abci.QueryPath, Data: []byte(`{"get_contract_info":{}}`)})
	if res.Code != abci.CodeTypeNotInstantiated {
		return nil
	}

	bz, err := os.ReadFile(config.GenesisFile())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	if err := checkGenesis(bz); err != nil {
		return err
	}
	app.InitChain(abcitypes.RequestInitChain{
		Time:          time.Now().UTC(),
		ChainId:       config.ChainID,
		InitialHeight: 1,
		AppStateBytes: bz,
	})
	logger.Info("instantiated market from genesis file", "path", config.GenesisFile())
	return nil
}

func checkGenesis(bz []byte) error {
	var genesis types.GenesisState
	if err := types.UnmarshalJSON(bz, &genesis); err != nil {
		return fmt.Errorf("decode genesis file: %w", err)
	}
	if err := genesis.Contract.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid market in genesis file: %w", err)
	}
	return nil
}

// TxResult is the printed outcome of an offline transaction.
type TxResult struct {
	Height  int64               `json:"height"`
	Code    uint32              `json:"code"`
	Log     string              `json:"log,omitempty"`
	Data    jsoniter.RawMessage `json:"data,omitempty"`
	AppHash string              `json:"app_hash"`
}

// runBlock delivers tx in a block of its own on top of the last committed
// state and commits it.
func runBlock(app *abci.Application, tx []byte) TxResult {
	height := app.State().Height + 1
	app.BeginBlock(abcitypes.RequestBeginBlock{Header: tmproto.Header{
		ChainID: config.ChainID,
		Height:  height,
		Time:    time.Now().UTC(),
	}})
	res := app.DeliverTx(abcitypes.RequestDeliverTx{Tx: tx})
	app.EndBlock(abcitypes.RequestEndBlock{Height: height})
	commit := app.Commit()

	return TxResult{
		Height:  height,
		Code:    res.Code,
		Log:     res.Log,
		Data:    res.Data,
		AppHash: fmt.Sprintf("%X", commit.Data),
	}
}

// readArg returns args[0], or the contents of the file it names when
// prefixed with '@'.
func readArg(args []string) ([]byte, error) {
	if len(args) != 1 {
		return nil, errors.New("expected exactly one JSON argument")
	}
	arg := args[0]
	if len(arg) > 0 && arg[0] == '@' {
		return os.ReadFile(arg[1:])
	}
	return []byte(arg), nil
}

func printJSON(w io.Writer, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bz))
	return err
}
