package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/vigilops/costwatch/internal/domain/billing"
	"github.com/vigilops/costwatch/internal/inventory"
	"github.com/vigilops/costwatch/internal/pricing"
)

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the daily cost without alerting",
		Long: `Fetches the configured resources and prints the estimated daily
cost breakdown. No alert conditions are evaluated and no state is
written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.source.Fetch(ctx)
			if err != nil {
				return err
			}

			estimate, err := pricing.EstimateDailyCost(snap.Records, a.cfg.RateTable())
			if err != nil {
				return err
			}

			out := struct {
				Estimate *billing.Estimate           `json:"estimate"`
				Skipped  []inventory.SkippedResource `json:"skipped,omitempty"`
			}{
				Estimate: estimate,
				Skipped:  snap.Skipped,
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
