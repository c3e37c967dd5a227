package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mechx-labs/mechx/app"
)

const flagOverwrite = "overwrite"

// InitCmd writes the node configuration and the devnet genesis to the home
// directory.
func InitCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the node configuration and genesis files",
		Long: `Write mechd.toml and genesis.json into <home>/config.

The genesis activates every mech factory, binds each payment type to its
balance tracker and binds the subscription trackers to the devnet credit token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadNodeConfig(v)
			if err != nil {
				return err
			}
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)

			if err := os.MkdirAll(cfg.ConfigDir(), 0o750); err != nil {
				return fmt.Errorf("failed to create config dir: %w", err)
			}

			configPath := filepath.Join(cfg.ConfigDir(), configFileName)
			settings, err := marshalSettings(v)
			if err != nil {
				return err
			}
			if err := writeFile(configPath, settings, overwrite); err != nil {
				return err
			}

			genesisPath := filepath.Join(cfg.ConfigDir(), genesisFileName)
			genesis, err := json.MarshalIndent(app.NewDefaultGenesisState(cfg.AppConfig()), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode genesis: %w", err)
			}
			if err := writeFile(genesisPath, genesis, overwrite); err != nil {
				return err
			}

			cmd.Printf("initialized %s for chain %s\n", cfg.Home, cfg.ChainID)
			return nil
		},
	}
	cmd.Flags().Bool(flagOverwrite, false, "overwrite existing config and genesis files")
	return cmd
}

func writeFile(path string, bz []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --%s to replace it", path, flagOverwrite)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := os.WriteFile(path, bz, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
