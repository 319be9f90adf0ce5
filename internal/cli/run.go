package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Perform a single monitoring run",
		Long: `Fetches the configured resources, estimates their daily cost,
samples egress counters, evaluates alert conditions, and delivers
notifications. Exits non-zero only when the estimated daily cost
exceeds the configured threshold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.monitor.RunOnce(ctx)
			if err != nil {
				// Transient failures are logged but do not change the
				// exit status; only the cost threshold does.
				a.log.ErrorWithErr(err, "Monitoring run failed")
				return nil
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}

			if report.ThresholdExceeded {
				return ErrCostThresholdExceeded
			}
			return nil
		},
	}
}
