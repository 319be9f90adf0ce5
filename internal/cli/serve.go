package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigilops/costwatch/internal/server"
	"github.com/vigilops/costwatch/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the monitor as a daemon",
		Long: `Runs monitoring passes on the configured cron schedule and serves
health and Prometheus metrics endpoints until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(a.cfg.Server.Host, a.cfg.Server.Port, a.log)
			srvErr := make(chan error, 1)
			go func() {
				srvErr <- srv.Start()
			}()

			w := worker.NewMonitorWorker(a.monitor, a.cfg.Server.Schedule, a.log)

			workerErr := make(chan error, 1)
			go func() {
				workerErr <- w.Start(ctx)
			}()

			select {
			case err := <-srvErr:
				stop()
				<-workerErr
				return err
			case err := <-workerErr:
				if err != nil {
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.ErrorWithErr(err, "HTTP server shutdown failed")
			}
			return nil
		},
	}
}
