package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vigilops/costwatch/internal/domain/alert"
	"github.com/vigilops/costwatch/internal/ledger"
	"github.com/vigilops/costwatch/internal/pkg/logger"
)

// Thresholds holds the configured trigger levels per category and the
// per-category enable flags.
type Thresholds struct {
	DailyCost       decimal.Decimal
	CostIncreasePct decimal.Decimal
	NetworkGB       decimal.Decimal

	Enabled map[alert.Category]bool
}

// EnabledFor reports whether a category is switched on. Categories
// absent from the map default to enabled.
func (t Thresholds) EnabledFor(c alert.Category) bool {
	enabled, ok := t.Enabled[c]
	if !ok {
		return true
	}
	return enabled
}

// RunFacts carries the measured values of one monitoring run into the
// decision pipeline.
type RunFacts struct {
	RunID string
	Now   time.Time

	DailyCost    decimal.Decimal
	PreviousCost decimal.Decimal
	HasPrevious  bool
	EgressGB     decimal.Decimal
	UnusedNames  []string
	SkippedNames []string
}

// Pipeline evaluates the fixed alert categories against thresholds and
// gates every emission through the cooldown ledger. Categories are
// independent; the ledger is the only shared state.
type Pipeline struct {
	store      ledger.Store
	cooldown   Cooldown
	thresholds Thresholds
	logger     *logger.Logger
}

// NewPipeline creates an alert decision pipeline
func NewPipeline(store ledger.Store, cooldown Cooldown, thresholds Thresholds, log *logger.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		cooldown:   cooldown,
		thresholds: thresholds,
		logger:     log,
	}
}

// Evaluate decides which alerts fire for this run. The whole
// read-decide-write sequence runs under the ledger lock so that
// overlapping invocations cannot both decide to fire and double-send.
func (p *Pipeline) Evaluate(ctx context.Context, facts RunFacts) ([]alert.Alert, error) {
	var fired []alert.Alert

	err := p.store.WithLock(ctx, func() error {
		entries, err := p.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load ledger: %w", err)
		}

		anyTriggered := false
		for _, category := range alert.Categories() {
			if category == alert.CategoryDailyOKStatus {
				continue // evaluated last, against the other outcomes
			}
			if !p.thresholds.EnabledFor(category) {
				continue
			}

			triggered, a := p.condition(category, facts)
			if !triggered {
				continue
			}
			anyTriggered = true

			if !p.cooldown.ShouldFire(category, facts.Now, entries) {
				p.logger.WithFields(map[string]interface{}{
					"category":   category,
					"last_fired": entries[category],
				}).Debug("Alert suppressed by cooldown")
				continue
			}

			if err := p.store.Record(ctx, category, facts.Now); err != nil {
				return fmt.Errorf("failed to record %s in ledger: %w", category, err)
			}
			entries[category] = facts.Now
			fired = append(fired, a)
		}

		// Heartbeat: only when every monitored condition is quiet.
		if p.thresholds.EnabledFor(alert.CategoryDailyOKStatus) && !anyTriggered {
			if p.cooldown.ShouldFire(alert.CategoryDailyOKStatus, facts.Now, entries) {
				if err := p.store.Record(ctx, alert.CategoryDailyOKStatus, facts.Now); err != nil {
					return fmt.Errorf("failed to record heartbeat in ledger: %w", err)
				}
				fired = append(fired, alert.Alert{
					Category:       alert.CategoryDailyOKStatus,
					Message:        fmt.Sprintf("All monitored values within thresholds, estimated daily cost $%s", facts.DailyCost.StringFixed(2)),
					CurrentValue:   facts.DailyCost.StringFixed(2),
					ThresholdValue: p.thresholds.DailyCost.StringFixed(2),
					Timestamp:      facts.Now,
					RunID:          facts.RunID,
				})
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return fired, nil
}

// condition computes the trigger for one category
func (p *Pipeline) condition(category alert.Category, facts RunFacts) (bool, alert.Alert) {
	a := alert.Alert{
		Category:  category,
		Timestamp: facts.Now,
		RunID:     facts.RunID,
	}

	switch category {
	case alert.CategoryCostThreshold:
		if facts.DailyCost.GreaterThan(p.thresholds.DailyCost) {
			a.Message = fmt.Sprintf("Estimated daily cost $%s exceeds threshold $%s",
				facts.DailyCost.StringFixed(2), p.thresholds.DailyCost.StringFixed(2))
			a.CurrentValue = facts.DailyCost.StringFixed(2)
			a.ThresholdValue = p.thresholds.DailyCost.StringFixed(2)
			return true, a
		}

	case alert.CategoryCostIncrease:
		if !facts.HasPrevious || !facts.PreviousCost.IsPositive() {
			return false, a
		}
		pct := facts.DailyCost.Sub(facts.PreviousCost).
			Div(facts.PreviousCost).
			Mul(decimal.NewFromInt(100))
		if pct.GreaterThan(p.thresholds.CostIncreasePct) {
			a.Message = fmt.Sprintf("Daily cost rose %s%% since last run ($%s -> $%s)",
				pct.StringFixed(1), facts.PreviousCost.StringFixed(2), facts.DailyCost.StringFixed(2))
			a.CurrentValue = pct.StringFixed(1)
			a.ThresholdValue = p.thresholds.CostIncreasePct.StringFixed(1)
			return true, a
		}

	case alert.CategoryNetworkThreshold:
		if facts.EgressGB.GreaterThan(p.thresholds.NetworkGB) {
			a.Message = fmt.Sprintf("Egress %s GB exceeds threshold %s GB",
				facts.EgressGB.StringFixed(2), p.thresholds.NetworkGB.StringFixed(2))
			a.CurrentValue = facts.EgressGB.StringFixed(2)
			a.ThresholdValue = p.thresholds.NetworkGB.StringFixed(2)
			return true, a
		}

	case alert.CategoryUnusedResources:
		if len(facts.UnusedNames) > 0 {
			a.Message = fmt.Sprintf("Unused resources found: %s", strings.Join(facts.UnusedNames, ", "))
			a.CurrentValue = fmt.Sprintf("%d", len(facts.UnusedNames))
			a.ThresholdValue = "0"
			return true, a
		}
	}

	return false, a
}
