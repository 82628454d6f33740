package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "blazectl",
		Short: "Operator tool for the Blaze scoreboard API",
		Long: `blazectl drives the Blaze laser-tag scoreboard over its JSON API.

It covers registration, scoring, the match lifecycle and roster
administration, and is handy for dry runs when no tag hardware is attached.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.Timeout)
			if cfg.Verbose {
				client.SetTrace(cmd.ErrOrStderr())
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: BLAZE_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Print each request to stderr")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newRegisterExternalCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newRegistryCmd())
	rootCmd.AddCommand(newCandidatesCmd())
	rootCmd.AddCommand(newKillCmd())
	rootCmd.AddCommand(newDeathCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newEndCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newVictoryCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newClearTeamCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
