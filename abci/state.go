package abci

import (
	"crypto/sha256"
	"fmt"

	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/ats/types"
)

var stateKey = []byte("abci_state")

// State is the application's view of the chain: the last committed height
// and the app hash reported for it.
type State struct {
	Height  int64  `json:"height"`
	AppHash []byte `json:"app_hash"`
}

func loadState(db dbm.DB) (State, error) {
	var state State
	bz, err := db.Get(stateKey)
	if err != nil {
		return state, fmt.Errorf("load abci state: %w", err)
	}
	if len(bz) == 0 {
		return state, nil
	}
	if err := types.UnmarshalJSON(bz, &state); err != nil {
		return state, fmt.Errorf("decode abci state: %w", err)
	}
	return state, nil
}

func saveState(db dbm.DB, state State) error {
	bz, err := types.MarshalJSON(state)
	if err != nil {
		return err
	}
	if err := db.SetSync(stateKey, bz); err != nil {
		return fmt.Errorf("save abci state: %w", err)
	}
	return nil
}

// nextAppHash chains the hashes of a block's successful txs onto the
// previous app hash. A block without successful txs leaves it unchanged.
func nextAppHash(prev []byte, txHashes [][]byte) []byte {
	if len(txHashes) == 0 {
		return prev
	}
	h := sha256.New()
	h.Write(prev)
	for _, txHash := range txHashes {
		h.Write(txHash)
	}
	return h.Sum(nil)
}
