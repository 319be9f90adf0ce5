package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/vigilops/costwatch/internal/pkg/logger"
	"github.com/vigilops/costwatch/internal/services"
)

// MonitorWorker runs the monitor on a cron schedule in daemon mode
type MonitorWorker struct {
	monitor  *services.MonitorService
	schedule string
	logger   *logger.Logger
}

// NewMonitorWorker creates a scheduled monitor worker
func NewMonitorWorker(monitor *services.MonitorService, schedule string, log *logger.Logger) *MonitorWorker {
	return &MonitorWorker{
		monitor:  monitor,
		schedule: schedule,
		logger:   log,
	}
}

// Start runs an initial pass, then follows the cron schedule until the
// context is cancelled.
func (w *MonitorWorker) Start(ctx context.Context) error {
	w.logger.WithFields(map[string]interface{}{
		"schedule": w.schedule,
	}).Info("Starting monitor worker")

	w.runOnce(ctx)

	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() { w.runOnce(ctx) }); err != nil {
		return err
	}
	c.Start()

	<-ctx.Done()
	w.logger.Info("Monitor worker stopping")

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

func (w *MonitorWorker) runOnce(ctx context.Context) {
	report, err := w.monitor.RunOnce(ctx)
	if err != nil {
		w.logger.ErrorWithErr(err, "Monitoring run failed")
		return
	}

	w.logger.WithFields(map[string]interface{}{
		"run_id":             report.RunID,
		"total":              report.Estimate.Total.StringFixed(2),
		"alerts":             len(report.AlertsFired),
		"threshold_exceeded": report.ThresholdExceeded,
	}).Info("Scheduled run finished")
}
