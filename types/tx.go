package types

import (
	"errors"
	"fmt"
)

// Tx is the envelope a host submits for one transition: the sender, the
// funds it attached and exactly one of an execute or migrate message.
type Tx struct {
	Sender  string      `json:"sender"`
	Funds   []Coin      `json:"funds,omitempty"`
	Execute *ExecuteMsg `json:"execute,omitempty"`
	Migrate *MigrateMsg `json:"migrate,omitempty"`
}

var ErrMalformedTx = errors.New("malformed tx")

// DecodeTx parses and statelessly validates a tx.
func DecodeTx(bz []byte) (*Tx, error) {
	tx := new(Tx)
	if err := json.Unmarshal(bz, tx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTx, err)
	}
	if err := tx.ValidateBasic(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Encode returns the canonical JSON encoding.
func (tx *Tx) Encode() ([]byte, error) {
	return json.Marshal(tx)
}

func (tx *Tx) ValidateBasic() error {
	if tx.Sender == "" {
		return fmt.Errorf("%w: missing sender", ErrMalformedTx)
	}
	if (tx.Execute == nil) == (tx.Migrate == nil) {
		return fmt.Errorf("%w: exactly one of execute or migrate must be set", ErrMalformedTx)
	}
	if tx.Execute != nil {
		return tx.Execute.ValidateBasic()
	}
	return tx.Migrate.ValidateBasic()
}

// Action names the transition the tx requests.
func (tx *Tx) Action() string {
	if tx.Migrate != nil {
		return ActionMigrate
	}
	return tx.Execute.Action()
}

// GenesisState is carried in the chain's app state and instantiates the
// market at genesis.
type GenesisState struct {
	Sender   string         `json:"sender"`
	Contract InstantiateMsg `json:"contract"`
}
