package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Monitoring run metrics
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costwatch",
			Subsystem: "run",
			Name:      "total",
			Help:      "Total number of monitoring runs",
		},
		[]string{"status"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "costwatch",
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Duration of one monitoring run in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	estimatedDailyCost = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "costwatch",
			Subsystem: "cost",
			Name:      "estimated_daily_usd",
			Help:      "Estimated daily cost from the last run in USD",
		},
	)

	resourcesSkipped = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "costwatch",
			Subsystem: "inventory",
			Name:      "skipped_resources",
			Help:      "Resources the last inventory pass could not describe",
		},
	)

	// Alerting metrics
	alertsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costwatch",
			Subsystem: "alert",
			Name:      "fired_total",
			Help:      "Total number of alerts that passed thresholds and cooldown",
		},
		[]string{"category"},
	)

	webhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "costwatch",
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "Total number of webhook delivery attempts",
		},
		[]string{"status"},
	)
)

// RecordRun records the outcome and duration of one monitoring run
func RecordRun(status string, duration time.Duration) {
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(duration.Seconds())
}

// SetEstimatedDailyCost publishes the last run's estimate
func SetEstimatedDailyCost(usd float64) {
	estimatedDailyCost.Set(usd)
}

// SetSkippedResources publishes the last run's skip count
func SetSkippedResources(n int) {
	resourcesSkipped.Set(float64(n))
}

// RecordAlertFired counts an alert emission per category
func RecordAlertFired(category string) {
	alertsFiredTotal.WithLabelValues(category).Inc()
}

// RecordWebhookDelivery counts one delivery attempt
func RecordWebhookDelivery(success bool) {
	status := "ok"
	if !success {
		status = "failed"
	}
	webhookDeliveriesTotal.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
