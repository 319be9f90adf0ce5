package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vigilops/costwatch/internal/alerting"
	"github.com/vigilops/costwatch/internal/domain/alert"
	"github.com/vigilops/costwatch/internal/domain/billing"
	"github.com/vigilops/costwatch/internal/inventory"
	"github.com/vigilops/costwatch/internal/netstat"
	"github.com/vigilops/costwatch/internal/notify"
	"github.com/vigilops/costwatch/internal/pkg/logger"
	"github.com/vigilops/costwatch/internal/pkg/metrics"
	"github.com/vigilops/costwatch/internal/pricing"
	"github.com/vigilops/costwatch/internal/runlog"
)

// RunReport summarizes one monitoring run. A run is best effort:
// skipped resources are annotated, never fatal.
type RunReport struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`

	Estimate   *billing.Estimate `json:"estimate"`
	EgressTx   int64             `json:"egress_tx_bytes"`
	EgressGB   decimal.Decimal   `json:"egress_gb"`
	EgressCost decimal.Decimal   `json:"egress_cost"`

	Unused  []string                    `json:"unused,omitempty"`
	Skipped []inventory.SkippedResource `json:"skipped,omitempty"`

	AlertsFired      []alert.Alert `json:"alerts_fired,omitempty"`
	DeliveryFailures int           `json:"delivery_failures"`

	// ThresholdExceeded drives the process exit status. Transient
	// fetch errors do not.
	ThresholdExceeded bool `json:"threshold_exceeded"`
}

// MonitorService runs the estimate -> threshold -> alert sequence
type MonitorService struct {
	source    inventory.Source
	runner    netstat.Runner
	pipeline  *alerting.Pipeline
	notifier  notify.Notifier
	runLog    *runlog.RunLog
	history   *runlog.History
	rates     *billing.RateTable
	costLimit decimal.Decimal
	logger    *logger.Logger

	now func() time.Time
}

// NewMonitorService creates a monitor service
func NewMonitorService(
	source inventory.Source,
	runner netstat.Runner,
	pipeline *alerting.Pipeline,
	notifier notify.Notifier,
	runLog *runlog.RunLog,
	history *runlog.History,
	rates *billing.RateTable,
	costLimit decimal.Decimal,
	log *logger.Logger,
) *MonitorService {
	return &MonitorService{
		source:    source,
		runner:    runner,
		pipeline:  pipeline,
		notifier:  notifier,
		runLog:    runLog,
		history:   history,
		rates:     rates,
		costLimit: costLimit,
		logger:    log,
		now:       time.Now,
	}
}

// RunOnce performs one full monitoring run
func (s *MonitorService) RunOnce(ctx context.Context) (*RunReport, error) {
	start := s.now().UTC()
	report := &RunReport{
		RunID:     uuid.New().String(),
		StartedAt: start,
	}

	log := s.logger.With("run_id", report.RunID)
	log.Info("Starting monitoring run")

	snap, err := s.source.Fetch(ctx)
	if err != nil {
		metrics.RecordRun("failed", s.now().Sub(start))
		return nil, fmt.Errorf("inventory fetch failed: %w", err)
	}
	report.Skipped = append(report.Skipped, snap.Skipped...)

	estimate, err := pricing.EstimateDailyCost(snap.Records, s.rates)
	if err != nil {
		metrics.RecordRun("failed", s.now().Sub(start))
		return nil, fmt.Errorf("cost estimation failed: %w", err)
	}
	report.Estimate = estimate
	report.Unused = unusedResources(snap.Records)

	s.sampleEgress(ctx, snap.Records, report, log)

	previous, _, hasPrevious, err := s.history.LastTotal()
	if err != nil {
		log.ErrorWithErr(err, "Cost history unreadable, skipping increase comparison")
		hasPrevious = false
	}

	facts := alerting.RunFacts{
		RunID:        report.RunID,
		Now:          start,
		DailyCost:    estimate.Total,
		PreviousCost: previous,
		HasPrevious:  hasPrevious,
		EgressGB:     report.EgressGB,
		UnusedNames:  report.Unused,
		SkippedNames: skippedNames(report.Skipped),
	}

	fired, err := s.pipeline.Evaluate(ctx, facts)
	if err != nil {
		metrics.RecordRun("failed", s.now().Sub(start))
		return nil, fmt.Errorf("alert evaluation failed: %w", err)
	}
	report.AlertsFired = fired

	s.deliver(ctx, fired, report, log)
	s.persist(report, log)

	report.ThresholdExceeded = estimate.Total.GreaterThan(s.costLimit)

	metrics.SetEstimatedDailyCost(estimate.Total.InexactFloat64())
	metrics.SetSkippedResources(len(report.Skipped))
	metrics.RecordRun("ok", s.now().Sub(start))

	log.WithFields(map[string]interface{}{
		"total":   estimate.Total.StringFixed(2),
		"egress":  pricing.FormatBytes(report.EgressTx),
		"alerts":  len(fired),
		"skipped": len(report.Skipped),
	}).Info("Monitoring run finished")

	return report, nil
}

// sampleEgress collects TX counters from every running instance. A
// host that cannot be reached loses its sample, not the run.
func (s *MonitorService) sampleEgress(ctx context.Context, records []billing.ResourceRecord, report *RunReport, log *logger.Logger) {
	var totalTx int64
	for _, rec := range records {
		if rec.Kind != billing.KindComputeInstance || rec.Status != billing.StatusRunning {
			continue
		}

		out, err := s.runner.Run(ctx, rec.Name)
		if err != nil {
			log.WithFields(map[string]interface{}{
				"instance": rec.Name,
			}).ErrorWithErr(err, "Failed to sample network counters")
			report.Skipped = append(report.Skipped, inventory.SkippedResource{
				Name:   rec.Name + "/netstat",
				Reason: err.Error(),
			})
			continue
		}
		totalTx += netstat.ParseCounters(out).TxBytes
	}

	report.EgressTx = totalTx
	report.EgressGB = pricing.EgressGB(totalTx)

	cost, err := pricing.PriceEgress(totalTx, s.rates.NetworkFreeTierGB, s.rates.NetworkEgressPerGB)
	if err != nil {
		// Cannot happen with a summed counter, but never let pricing
		// kill the run.
		log.ErrorWithErr(err, "Egress pricing failed")
		cost = decimal.Zero
	}
	report.EgressCost = cost
}

// deliver posts each fired alert. Delivery failure is logged and
// counted; the run still succeeds.
func (s *MonitorService) deliver(ctx context.Context, fired []alert.Alert, report *RunReport, log *logger.Logger) {
	for _, a := range fired {
		metrics.RecordAlertFired(string(a.Category))

		if err := s.notifier.Send(ctx, a); err != nil {
			report.DeliveryFailures++
			metrics.RecordWebhookDelivery(false)
			log.WithFields(map[string]interface{}{
				"category": a.Category,
			}).ErrorWithErr(err, "Webhook delivery failed")
			if lerr := s.runLog.Append(fmt.Sprintf("delivery failed for %s: %v", a.Category, err)); lerr != nil {
				log.ErrorWithErr(lerr, "Failed to append run log")
			}
			continue
		}
		metrics.RecordWebhookDelivery(true)
	}
}

// persist records this run's total and a run log line
func (s *MonitorService) persist(report *RunReport, log *logger.Logger) {
	if err := s.history.RecordTotal(report.StartedAt, report.Estimate.Total); err != nil {
		log.ErrorWithErr(err, "Failed to record cost history")
	}

	event := fmt.Sprintf("run %s total=$%s egress=%s alerts=%d skipped=%d",
		report.RunID,
		report.Estimate.Total.StringFixed(2),
		pricing.FormatBytes(report.EgressTx),
		len(report.AlertsFired),
		len(report.Skipped))
	if err := s.runLog.Append(event); err != nil {
		log.ErrorWithErr(err, "Failed to append run log")
	}
}

// unusedResources flags reserved-but-unattached addresses and stopped
// instances as optimization opportunities. Status strings are the
// provider's own enum values.
func unusedResources(records []billing.ResourceRecord) []string {
	var unused []string
	for _, rec := range records {
		switch rec.Kind {
		case billing.KindStaticIP:
			if rec.Status == billing.StatusReserved {
				unused = append(unused, "static-ip/"+rec.Name)
			}
		case billing.KindComputeInstance:
			if rec.Status == billing.StatusTerminated {
				unused = append(unused, "instance/"+rec.Name)
			}
		}
	}
	return unused
}

func skippedNames(skipped []inventory.SkippedResource) []string {
	names := make([]string, 0, len(skipped))
	for _, s := range skipped {
		names = append(names, s.Name)
	}
	return names
}
