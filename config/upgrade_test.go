package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An early config file: no log file, no migrate admin, no markers, no
// attribute grants and no event sink.
const earlyConfig = `# operator note: do not touch the laddr
chain_id = "early-chain"
db_backend = "goleveldb"
db_dir = "data"
log_level = "debug"
log_format = "plain"

[abci]
laddr = "tcp://0.0.0.0:26658"
transport = "socket"
contract_address = "escrow"

[instrumentation]
prometheus = false
prometheus_listen_addr = ":26660"
namespace = "ats"
`

func TestUpgradeConfigFile(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(os.WriteFile(path, []byte(earlyConfig), 0600))

	require.NoError(UpgradeConfigFile(context.Background(), path))

	data, err := os.ReadFile(path)
	require.NoError(err)
	assert.Contains(string(data), "# operator note: do not touch the laddr")
	assertValidConfig(t, string(data))

	var upgraded struct {
		LogFile string `toml:"log_file"`
		ABCI    struct {
			MigrateAdmin      *string             `toml:"migrate_admin"`
			RestrictedMarkers []string            `toml:"restricted_markers"`
			AttributeGrants   map[string][]string `toml:"attribute_grants"`
		} `toml:"abci"`
	}
	md, err := toml.Decode(string(data), &upgraded)
	require.NoError(err)
	assert.True(md.IsDefined("log_file"))
	assert.True(md.IsDefined("abci", "restricted_markers"))
	assert.True(md.IsDefined("abci", "attribute_grants"))
	require.NotNil(upgraded.ABCI.MigrateAdmin)
	assert.Empty(*upgraded.ABCI.MigrateAdmin)

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(v.ReadInConfig())
	got := DefaultConfig()
	require.NoError(v.Unmarshal(got))
	require.NoError(got.ValidateBasic())
	assert.Equal("early-chain", got.ChainID)
	assert.Equal("debug", got.LogLevel)
	assert.Equal("tcp://0.0.0.0:26658", got.ABCI.ListenAddress)
	assert.Equal("escrow", got.ABCI.ContractAddress)
	assert.False(got.PSQL.Enabled())

	// a second upgrade has nothing left to do
	require.NoError(UpgradeConfigFile(context.Background(), path))
	again, err := os.ReadFile(path)
	require.NoError(err)
	assert.Equal(1, strings.Count(string(again), "[abci.attribute_grants]"))
	assert.Equal(1, strings.Count(string(again), "[psql]"))
	assert.Equal(1, strings.Count(string(again), "log_file"))
}

func TestUpgradeConfigFileKeepsCurrentSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChainID = "ats-1"
	cfg.ABCI.RestrictedMarkers = []string{"base_1"}
	cfg.ABCI.AttributeGrants = map[string][]string{"asker": {"kyc.pb"}}
	cfg.PSQL.Conn = "postgresql://localhost:5432/ats"

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteConfigFile(path, cfg))
	require.NoError(t, UpgradeConfigFile(context.Background(), path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	got := DefaultConfig()
	require.NoError(t, v.Unmarshal(got))

	assert.Equal(t, cfg.ChainID, got.ChainID)
	assert.Equal(t, cfg.ABCI, got.ABCI)
	assert.Equal(t, cfg.PSQL, got.PSQL)
}

func TestUpgradeConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, UpgradeConfigFile(context.Background(), filepath.Join(dir, "missing.toml")))

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("chain_id = \"unterminated\n"), 0600))
	assert.Error(t, UpgradeConfigFile(context.Background(), path))
}
