package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrCostThresholdExceeded is returned by `costwatch run` when the
// estimated daily cost is above the configured threshold. It is the
// only condition the process exit status reports; transient fetch
// errors do not change it.
var ErrCostThresholdExceeded = errors.New("cost threshold exceeded")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "costwatch",
	Short: "costwatch - GCP cost and egress monitor with cooldown-gated alerting",
	Long: `costwatch estimates the daily cost of a GCP project from a configured
rate table, samples instance egress, and posts webhook notifications
when thresholds are exceeded. Alerts of the same category are rate
limited by a persistent cooldown ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./costwatch.yaml or /etc/costwatch/costwatch.yaml)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newEstimateCmd())
	rootCmd.AddCommand(newLedgerCmd())
	rootCmd.AddCommand(newServeCmd())
}
