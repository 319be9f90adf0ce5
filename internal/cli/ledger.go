package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigilops/costwatch/internal/alerting"
	"github.com/vigilops/costwatch/internal/config"
	"github.com/vigilops/costwatch/internal/domain/alert"
	"github.com/vigilops/costwatch/internal/ledger"
	"github.com/vigilops/costwatch/internal/pkg/logger"
)

func newLedgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Show the alert cooldown ledger",
		Long: `Prints the last delivery time of each alert category and whether
its cooldown window is still active.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			log := logger.New(logger.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})

			store := ledger.NewFileStore(cfg.State.LedgerPath(), log)
			entries, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}

			cooldown := alerting.NewCooldown(cfg.Alerts.Cooldown)
			now := time.Now().UTC()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tLAST FIRED\tSTATUS")
			for _, category := range alert.Categories() {
				last, ok := entries[category]
				if !ok {
					fmt.Fprintf(w, "%s\t-\tready\n", category)
					continue
				}
				status := "cooling down"
				if cooldown.ShouldFire(category, now, entries) {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", category, last.UTC().Format(time.RFC3339), status)
			}
			return w.Flush()
		},
	}
}
