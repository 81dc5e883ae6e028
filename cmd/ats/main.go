package main

import (
	"os"
	"path/filepath"

	cmd "github.com/tendermint/ats/cmd/ats/commands"
	"github.com/tendermint/ats/config"
	"github.com/tendermint/ats/libs/cli"
)

func main() {
	rootCmd := cmd.RootCmd
	rootCmd.AddCommand(
		cmd.InitFilesCmd,
		cmd.ExecuteCmd,
		cmd.MigrateCmd,
		cmd.QueryCmd,
		cmd.StartCmd,
		cmd.VersionCmd,
	)

	exec := cli.PrepareBaseCmd(rootCmd, cli.EnvPrefix, os.ExpandEnv(filepath.Join("$HOME", config.DefaultATSDir)))
	if err := exec.Execute(); err != nil {
		panic(err)
	}
}
