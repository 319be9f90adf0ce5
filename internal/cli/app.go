package cli

import (
	"context"
	"fmt"

	"github.com/vigilops/costwatch/internal/alerting"
	"github.com/vigilops/costwatch/internal/config"
	"github.com/vigilops/costwatch/internal/inventory"
	"github.com/vigilops/costwatch/internal/ledger"
	"github.com/vigilops/costwatch/internal/netstat"
	"github.com/vigilops/costwatch/internal/notify"
	"github.com/vigilops/costwatch/internal/pkg/logger"
	"github.com/vigilops/costwatch/internal/runlog"
	"github.com/vigilops/costwatch/internal/services"
)

// app wires the monitor's dependencies from loaded configuration
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	monitor *services.MonitorService
	store   *ledger.FileStore
	source  *inventory.GCPSource
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	source, err := inventory.NewGCPSource(ctx, inventory.GCPConfig{
		ProjectID:       cfg.Project.ID,
		Zone:            cfg.Project.Zone,
		Region:          cfg.Project.Region,
		Instances:       cfg.Project.Instances,
		CredentialsFile: cfg.Project.CredentialsFile,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory source: %w", err)
	}

	store := ledger.NewFileStore(cfg.State.LedgerPath(), log)
	pipeline := alerting.NewPipeline(store, alerting.NewCooldown(cfg.Alerts.Cooldown), cfg.Thresholds(), log)
	runner := netstat.NewExecRunner(cfg.Netstat.Command, cfg.Netstat.Args, cfg.Netstat.Timeout, log)
	notifier := notify.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, log)

	monitor := services.NewMonitorService(
		source,
		runner,
		pipeline,
		notifier,
		runlog.NewRunLog(cfg.State.RunLogPath()),
		runlog.NewHistory(cfg.State.HistoryPath()),
		cfg.RateTable(),
		cfg.Alerts.CostThresholdDaily,
		log,
	)

	return &app{
		cfg:     cfg,
		log:     log,
		monitor: monitor,
		store:   store,
		source:  source,
	}, nil
}

func (a *app) Close() {
	if err := a.source.Close(); err != nil {
		a.log.ErrorWithErr(err, "Failed to close inventory source")
	}
}
