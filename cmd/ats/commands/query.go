package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	abcitypes "github.com/tendermint/tendermint/abci/types"

	"github.com/tendermint/ats/abci"
)

// QueryCmd answers a query message from the local store.
var QueryCmd = &cobra.Command{
	Use:   "query [msg-json | @file]",
	Short: "Query the local store",
	Example: `ats query '{"get_contract_info":{}}'
ats query '{"get_ask":{"id":"ab5f5a62-f6fc-46d1-aa84-51ccc51ec367"}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bz, err := readArg(args)
		if err != nil {
			return err
		}

		app, closeDB, err := openOfflineApp()
		if err != nil {
			return err
		}
		defer closeDB()

		res := app.Query(abcitypes.RequestQuery{Path: abci.QueryPath, Data: bz})
		if res.Code != abci.CodeTypeOK {
			return txError{code: res.Code, log: res.Log}
		}

		var value interface{}
		if err := json.Unmarshal(res.Value, &value); err != nil {
			return fmt.Errorf("decode query response: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), value)
	},
}
