package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/mechx-labs/mechx/app"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	mptypes "github.com/mechx-labs/mechx/x/marketplace/types"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNodeConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NodeConfig)
		wantErr bool
	}{
		{"default", func(*NodeConfig) {}, false},
		{"memdb", func(c *NodeConfig) { c.DBBackend = "memdb" }, false},
		{"no home", func(c *NodeConfig) { c.Home = "" }, true},
		{"no chain id", func(c *NodeConfig) { c.ChainID = "" }, true},
		{"bad denom", func(c *NodeConfig) { c.Denom = "!" }, true},
		{"bad backend", func(c *NodeConfig) { c.DBBackend = "rocksdb" }, true},
		{"bad log level", func(c *NodeConfig) { c.LogLevel = "loud" }, true},
		{"bad log format", func(c *NodeConfig) { c.LogFormat = "xml" }, true},
		{"zero block time", func(c *NodeConfig) { c.BlockTime = 0 }, true},
		{"metrics without addr", func(c *NodeConfig) { c.Metrics.Addr = "" }, true},
		{"bad api", func(c *NodeConfig) { c.API.Port = "" }, true},
		{"bad telemetry", func(c *NodeConfig) { c.Telemetry.Enabled = true; c.Telemetry.SampleRate = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultNodeConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoadNodeConfigEnvOverrides(t *testing.T) {
	t.Setenv("MECHD_API_PORT", "9999")
	t.Setenv("MECHD_BLOCK_TIME", "2s")
	t.Setenv("MECHD_TELEMETRY_ENVIRONMENT", "staging")

	cfg, err := LoadNodeConfig(newViper())
	require.NoError(t, err)
	require.Equal(t, "9999", cfg.API.Port)
	require.Equal(t, 2*time.Second, cfg.BlockTime)
	require.Equal(t, "staging", cfg.Telemetry.Environment)
	require.Equal(t, Version, cfg.Telemetry.ServiceVersion)
	require.Equal(t, cfg.ChainID, cfg.Telemetry.ChainID)

	appCfg := cfg.AppConfig()
	require.Equal(t, cfg.ChainID, appCfg.ChainID)
	require.NoError(t, appCfg.Validate())
}

func TestInitWritesConfigAndGenesis(t *testing.T) {
	home := t.TempDir()

	out, err := execute(t, "init", "--home", home, "--chain-id", "mechx-local-1")
	require.NoError(t, err)
	require.Contains(t, out, "mechx-local-1")

	configPath := filepath.Join(home, "config", configFileName)
	bz, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(bz), "mechx-local-1")
	require.Contains(t, string(bz), "[api]")
	require.NotContains(t, string(bz), "overwrite")

	genesis, err := app.LoadGenesisFile(filepath.Join(home, "config", genesisFileName))
	require.NoError(t, err)
	require.Contains(t, genesis, mptypes.ModuleName)

	_, err = execute(t, "init", "--home", home)
	require.Error(t, err)

	_, err = execute(t, "init", "--home", home, "--overwrite")
	require.NoError(t, err)

	// the written file is read back on the next invocation
	out, err = execute(t, "config", "show", "--home", home)
	require.NoError(t, err)
	require.Contains(t, out, "block-time")
	require.Contains(t, out, "5s")
}

func TestExportFreshHome(t *testing.T) {
	t.Setenv("MECHD_DB_BACKEND", "memdb")
	home := t.TempDir()

	out, err := execute(t, "export", "--home", home)
	require.NoError(t, err)

	var genesis app.GenesisState
	require.NoError(t, json.Unmarshal([]byte(out), &genesis))
	for _, v := range bttypes.AllVariants {
		require.Contains(t, genesis, bttypes.InstanceName(v))
	}
	require.Contains(t, genesis, mptypes.ModuleName)
}

func TestDeriveKey(t *testing.T) {
	first, err := DeriveKey(testMnemonic, 0)
	require.NoError(t, err)
	again, err := DeriveKey(testMnemonic, 0)
	require.NoError(t, err)
	require.True(t, first.Equals(again))

	second, err := DeriveKey(testMnemonic, 1)
	require.NoError(t, err)
	require.False(t, first.Equals(second))

	_, err = DeriveKey("abandon abandon abandon", 0)
	require.Error(t, err)

	mnemonic, err := NewMnemonic()
	require.NoError(t, err)
	require.Len(t, strings.Fields(mnemonic), 24)
}

func TestSimulate(t *testing.T) {
	for _, variant := range []bttypes.Variant{bttypes.VariantFixedPriceNative, bttypes.VariantFixedPriceToken} {
		t.Run(variant.String(), func(t *testing.T) {
			result, err := Simulate(context.Background(), app.DefaultConfig(), testMnemonic, variant, 3, math.NewInt(1000))
			require.NoError(t, err)

			require.Empty(t, result.Mnemonic)
			require.Len(t, result.RequestIDs, 3)
			require.Equal(t, []bool{true, true, true}, result.Delivered)
			require.True(t, result.Drained.IsPositive())
			require.Equal(t, math.NewInt(3000), result.Paid.Add(result.Drained))
			require.Equal(t, int64(3), result.MechKarma)
			require.Positive(t, result.Events)
			require.Positive(t, result.Height)

			operator, err := DeriveKey(testMnemonic, 0)
			require.NoError(t, err)
			require.Equal(t, sdk.AccAddress(operator.PubKey().Address()).String(), result.Operator)
		})
	}

	_, err := Simulate(context.Background(), app.DefaultConfig(), testMnemonic, bttypes.VariantFixedPriceNative, 0, math.NewInt(1000))
	require.Error(t, err)
	_, err = Simulate(context.Background(), app.DefaultConfig(), testMnemonic, bttypes.VariantFixedPriceNative, 1, math.ZeroInt())
	require.Error(t, err)
}

func TestSimulateCmd(t *testing.T) {
	out, err := execute(t, "simulate", "--home", t.TempDir(), "--requests", "2")
	require.NoError(t, err)

	var result SimulationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, strings.Fields(result.Mnemonic), 24)
	require.Len(t, result.Delivered, 2)

	_, err = execute(t, "simulate", "--home", t.TempDir(), "--variant", bttypes.VariantSubscriptionNative.String())
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, Version, strings.TrimSpace(out))
}
