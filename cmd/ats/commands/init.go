package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/creachadair/atomicfile"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cfg "github.com/tendermint/ats/config"
	"github.com/tendermint/ats/types"
)

// InitFilesCmd initializes a fresh ATS home directory.
var InitFilesCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the config file and the genesis market",
	RunE:  initFiles,
}

var (
	marketFile    string
	genesisSender string
)

func init() {
	InitFilesCmd.Flags().StringVar(&marketFile, "market", "", "YAML file describing the market to instantiate")
	InitFilesCmd.Flags().StringVar(&genesisSender, "sender", "genesis", "account instantiating the market")
}

func initFiles(cmd *cobra.Command, args []string) error {
	return initFilesWithConfig(cmd.Context(), config)
}

func initFilesWithConfig(ctx context.Context, config *cfg.Config) error {
	configFile := cfg.ConfigFile(config.RootDir)
	if _, err := os.Stat(configFile); err == nil {
		if err := cfg.UpgradeConfigFile(ctx, configFile); err != nil {
			return err
		}
		logger.Info("Upgraded config file", "path", configFile)
	} else {
		if err := cfg.WriteConfigFile(configFile, config); err != nil {
			return err
		}
		logger.Info("Wrote config file", "path", configFile)
	}

	genFile := config.GenesisFile()
	if _, err := os.Stat(genFile); err == nil {
		logger.Info("Found genesis file", "path", genFile)
		return nil
	}
	if marketFile == "" {
		return errors.New("--market is required to generate the genesis file")
	}

	market, err := loadMarket(marketFile)
	if err != nil {
		return err
	}
	genesis := types.GenesisState{Sender: genesisSender, Contract: market}
	bz, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		return err
	}
	if _, err := atomicfile.WriteAll(genFile, bytes.NewReader(bz), 0644); err != nil {
		return err
	}
	logger.Info("Generated genesis file", "path", genFile, "market", market.Name)
	return nil
}

// loadMarket reads an InstantiateMsg from a YAML document. Keys are the
// message's JSON field names.
func loadMarket(path string) (types.InstantiateMsg, error) {
	var msg types.InstantiateMsg

	bz, err := os.ReadFile(path)
	if err != nil {
		return msg, err
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(bz, &doc); err != nil {
		return msg, fmt.Errorf("parse market file %s: %w", path, err)
	}
	// The YAML tree is re-encoded so the message's JSON decoding rules
	// apply unchanged.
	js, err := json.Marshal(doc)
	if err != nil {
		return msg, err
	}
	if err := types.UnmarshalJSON(js, &msg); err != nil {
		return msg, fmt.Errorf("decode market file %s: %w", path, err)
	}
	if err := msg.ValidateBasic(); err != nil {
		return msg, fmt.Errorf("invalid market in %s: %w", path, err)
	}
	return msg, nil
}
