package config

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	// DefaultLogLevel defines a default log level as INFO.
	DefaultLogLevel = "info"

	// DBBackendGoLevelDB and DBBackendMemDB are the tm-db backends a node
	// can be configured with.
	DBBackendGoLevelDB = "goleveldb"
	DBBackendMemDB     = "memdb"

	// TransportSocket and TransportGRPC are the ABCI server transports.
	TransportSocket = "socket"
	TransportGRPC   = "grpc"
)

// NOTE: libs/cli must know to look in the config dir!
var (
	DefaultATSDir    = ".ats"
	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultConfigFileName  = "config.toml"
	defaultGenesisJSONName = "genesis.json"

	defaultConfigFilePath  = filepath.Join(defaultConfigDir, defaultConfigFileName)
	defaultGenesisJSONPath = filepath.Join(defaultConfigDir, defaultGenesisJSONName)
)

// Config defines the top level configuration for an ATS node
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	// Options for services
	ABCI            *ABCIConfig            `mapstructure:"abci"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
	PSQL            *PSQLConfig            `mapstructure:"psql"`
}

// DefaultConfig returns a default configuration for an ATS node
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		ABCI:            DefaultABCIConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
		PSQL:            DefaultPSQLConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing
func TestConfig() *Config {
	return &Config{
		BaseConfig:      TestBaseConfig(),
		ABCI:            TestABCIConfig(),
		Instrumentation: TestInstrumentationConfig(),
		PSQL:            DefaultPSQLConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.ABCI.ValidateBasic(); err != nil {
		return errors.Wrap(err, "Error in [abci] section")
	}
	if err := cfg.PSQL.ValidateBasic(); err != nil {
		return errors.Wrap(err, "Error in [psql] section")
	}
	return errors.Wrap(
		cfg.Instrumentation.ValidateBasic(),
		"Error in [instrumentation] section",
	)
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration for an ATS node
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// The ID of the chain the market runs on, stamped on indexed events
	ChainID string `mapstructure:"chain_id"`

	// Path to the JSON file containing the genesis market definition
	Genesis string `mapstructure:"genesis_file"`

	// Database backend: goleveldb | memdb
	DBBackend string `mapstructure:"db_backend"`

	// Database directory
	DBPath string `mapstructure:"db_dir"`

	// Output level for logging
	LogLevel string `mapstructure:"log_level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log_format"`

	// Optional path of a size-rotated log file written alongside stderr
	LogFile string `mapstructure:"log_file"`
}

// DefaultBaseConfig returns a default base configuration for an ATS node
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		ChainID:   "ats-chain",
		Genesis:   defaultGenesisJSONPath,
		DBBackend: DBBackendGoLevelDB,
		DBPath:    defaultDataDir,
		LogLevel:  DefaultLogLevel,
		LogFormat: LogFormatPlain,
	}
}

// TestBaseConfig returns a base configuration for testing an ATS node
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.ChainID = "ats-test"
	cfg.DBBackend = DBBackendMemDB
	return cfg
}

// GenesisFile returns the full path to the genesis.json file
func (cfg BaseConfig) GenesisFile() string {
	return rootify(cfg.Genesis, cfg.RootDir)
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// LogFilePath returns the full path to the log file, or "" when file
// logging is disabled.
func (cfg BaseConfig) LogFilePath() string {
	if cfg.LogFile == "" {
		return ""
	}
	return rootify(cfg.LogFile, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return errors.New("unknown log_format (must be 'plain' or 'json')")
	}
	switch cfg.DBBackend {
	case DBBackendGoLevelDB, DBBackendMemDB:
	default:
		return fmt.Errorf("unknown db_backend %q (must be %q or %q)", cfg.DBBackend, DBBackendGoLevelDB, DBBackendMemDB)
	}
	if cfg.ChainID == "" {
		return errors.New("chain_id can't be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// ABCIConfig

// ABCIConfig defines how the market is served to the consensus engine.
type ABCIConfig struct {
	// TCP or UNIX socket address the ABCI server listens on
	ListenAddress string `mapstructure:"laddr"`

	// Transport protocol: socket | grpc
	Transport string `mapstructure:"transport"`

	// Account holding escrowed funds
	ContractAddress string `mapstructure:"contract_address"`

	// The only sender allowed to submit migrate txs. Empty disables
	// migration over ABCI.
	MigrateAdmin string `mapstructure:"migrate_admin"`

	// Denominations whose transfers require a marker transfer
	RestrictedMarkers []string `mapstructure:"restricted_markers"`

	// Attribute names held by each account, checked against the market's
	// required attributes. Addresses are read lowercased.
	AttributeGrants map[string][]string `mapstructure:"attribute_grants"`
}

// DefaultABCIConfig returns a default configuration for the ABCI server
func DefaultABCIConfig() *ABCIConfig {
	return &ABCIConfig{
		ListenAddress:   "tcp://127.0.0.1:26658",
		Transport:       TransportSocket,
		ContractAddress: "ats_contract",
	}
}

// TestABCIConfig returns a configuration for testing the ABCI server
func TestABCIConfig() *ABCIConfig {
	cfg := DefaultABCIConfig()
	cfg.ListenAddress = "tcp://127.0.0.1:36658"
	cfg.MigrateAdmin = "admin"
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *ABCIConfig) ValidateBasic() error {
	if cfg.ListenAddress == "" {
		return errors.New("laddr can't be empty")
	}
	switch cfg.Transport {
	case TransportSocket, TransportGRPC:
	default:
		return fmt.Errorf("unknown transport %q (must be %q or %q)", cfg.Transport, TransportSocket, TransportGRPC)
	}
	if cfg.ContractAddress == "" {
		return errors.New("contract_address can't be empty")
	}
	for _, denom := range cfg.RestrictedMarkers {
		if denom == "" {
			return errors.New("restricted_markers can't contain an empty denom")
		}
	}
	for addr, names := range cfg.AttributeGrants {
		if addr == "" {
			return errors.New("attribute_grants can't contain an empty address")
		}
		for _, name := range names {
			if name == "" {
				return fmt.Errorf("attribute_grants.%s can't contain an empty attribute", addr)
			}
		}
	}
	return nil
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are served under /metrics on
	// PrometheusListenAddr.
	// Check out the documentation for the list of available metrics.
	Prometheus bool `mapstructure:"prometheus"`

	// Address to listen for Prometheus collector(s) connections.
	PrometheusListenAddr string `mapstructure:"prometheus_listen_addr"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:           false,
		PrometheusListenAddr: ":26660",
		Namespace:            "ats",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.Prometheus && cfg.PrometheusListenAddr == "" {
		return errors.New("prometheus_listen_addr can't be empty when prometheus is enabled")
	}
	if cfg.Namespace == "" {
		return errors.New("namespace can't be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// PSQLConfig

// PSQLConfig configures the optional PostgreSQL event sink.
type PSQLConfig struct {
	// PostgreSQL connection string. Empty disables the sink.
	Conn string `mapstructure:"conn"`
}

// DefaultPSQLConfig returns a configuration with the sink disabled.
func DefaultPSQLConfig() *PSQLConfig {
	return &PSQLConfig{}
}

// Enabled reports whether events should be written to PostgreSQL.
func (cfg *PSQLConfig) Enabled() bool {
	return cfg.Conn != ""
}

func (cfg *PSQLConfig) ValidateBasic() error {
	return nil
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
