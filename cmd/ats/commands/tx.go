package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/ats/abci"
	"github.com/tendermint/ats/types"
)

var (
	txSender string
	txFunds  string
)

// ExecuteCmd applies one execute message to the local store in a block of
// its own.
var ExecuteCmd = &cobra.Command{
	Use:   "execute [msg-json | @file]",
	Short: "Run an execute message against the local store",
	Example: `ats execute --sender asker --funds 100base_1 \
  '{"create_ask":{"id":"ab5f5a62-f6fc-46d1-aa84-51ccc51ec367","base":"base_1","quote":"quote_1","price":"2","size":"100"}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bz, err := readArg(args)
		if err != nil {
			return err
		}
		var msg types.ExecuteMsg
		if err := types.UnmarshalJSON(bz, &msg); err != nil {
			return fmt.Errorf("decode execute message: %w", err)
		}
		funds, err := types.ParseCoins(txFunds)
		if err != nil {
			return err
		}
		return deliverOffline(cmd, &types.Tx{Sender: txSender, Funds: funds, Execute: &msg})
	},
}

// MigrateCmd migrates the local store to the current contract version.
var MigrateCmd = &cobra.Command{
	Use:   "migrate [msg-json | @file]",
	Short: "Migrate the local store to the current contract version",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var msg types.MigrateMsg
		if len(args) == 1 {
			bz, err := readArg(args)
			if err != nil {
				return err
			}
			if err := types.UnmarshalJSON(bz, &msg); err != nil {
				return fmt.Errorf("decode migrate message: %w", err)
			}
		}
		sender := txSender
		if sender == "" {
			sender = config.ABCI.MigrateAdmin
		}
		return deliverOffline(cmd, &types.Tx{Sender: sender, Migrate: &msg})
	},
}

func init() {
	ExecuteCmd.Flags().StringVar(&txSender, "sender", "", "account submitting the message")
	ExecuteCmd.Flags().StringVar(&txFunds, "funds", "", "comma separated coins sent with the message, e.g. 100quote_1")
	MigrateCmd.Flags().StringVar(&txSender, "sender", "", "migrate admin (defaults to abci.migrate_admin)")
}

func deliverOffline(cmd *cobra.Command, tx *types.Tx) error {
	bz, err := tx.Encode()
	if err != nil {
		return err
	}

	app, closeDB, err := openOfflineApp()
	if err != nil {
		return err
	}
	defer closeDB()

	res := runBlock(app, bz)
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if res.Code != abci.CodeTypeOK {
		return txError{code: res.Code, log: res.Log}
	}
	return nil
}

// txError reports a rejected transaction. The ABCI code doubles as the
// process exit code.
type txError struct {
	code uint32
	log  string
}

func (e txError) Error() string {
	return fmt.Sprintf("transaction rejected with code %d: %s", e.code, e.log)
}

func (e txError) ExitCode() int {
	return int(e.code)
}
