package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mechx-labs/mechx/app"
)

const (
	flagHome      = "home"
	flagChainID   = "chain-id"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

// NewRootCmd creates the mechd root command. Settings resolve in order of
// flags, MECHD_* environment variables, home/config/mechd.toml and defaults.
func NewRootCmd() *cobra.Command {
	// Ensure SDK bech32 prefixes are configured prior to CLI usage.
	app.SetConfig()

	v := newViper()

	rootCmd := &cobra.Command{
		Use:   "mechd",
		Short: "Mech marketplace devnet node",
		Long: `mechd runs the mech marketplace state machine: a request/delivery market
between requesters and AI mechs, with pluggable balance trackers and a karma ledger.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			// bound flags only take precedence once set explicitly
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return readConfigFile(v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagHome, app.DefaultNodeHome, "directory for config and data")
	flags.String(flagChainID, app.DefaultChainID, "the network chain ID")
	flags.String(flagLogLevel, "info", "log level (trace|debug|info|warn|error)")
	flags.String(flagLogFormat, "plain", "log format (plain|json)")

	rootCmd.AddCommand(
		InitCmd(v),
		ServeCmd(v),
		ExportCmd(v),
		SimulateCmd(v),
		ConfigCmd(v),
		VersionCmd(),
	)

	return rootCmd
}

// VersionCmd prints the build version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mechd version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(Version)
		},
	}
}
