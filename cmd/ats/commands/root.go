package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cfg "github.com/tendermint/ats/config"
	"github.com/tendermint/ats/libs/log"
)

var (
	config = cfg.DefaultConfig()
	logger = log.MustNewDefaultLogger(log.LogFormatPlain, log.LogLevelInfo)
)

func init() {
	registerFlagsRootCmd(RootCmd)
}

func registerFlagsRootCmd(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log_level", config.LogLevel, "log level")
	cmd.PersistentFlags().String("log_format", config.LogFormat, "log format (plain|json)")
}

// ParseConfig retrieves the default environment configuration,
// sets up the ATS root and ensures that the root exists
func ParseConfig() (*cfg.Config, error) {
	conf := cfg.DefaultConfig()
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}
	conf.SetRoot(conf.RootDir)
	if err := cfg.EnsureRoot(conf.RootDir); err != nil {
		return nil, err
	}
	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCmd is the root command for the ats node.
var RootCmd = &cobra.Command{
	Use:   "ats",
	Short: "Escrow-backed ask/bid matching engine served over ABCI",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if cmd.Name() == VersionCmd.Name() {
			return nil
		}

		config, err = ParseConfig()
		if err != nil {
			return err
		}

		if path := config.LogFilePath(); path != "" {
			logger, err = log.NewFileLogger(config.LogFormat, config.LogLevel, path)
		} else {
			logger, err = log.NewDefaultLogger(config.LogFormat, config.LogLevel)
		}
		if err != nil {
			return err
		}

		logger = logger.With("module", "main")
		return nil
	},
}
