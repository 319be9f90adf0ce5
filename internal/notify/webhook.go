// Package notify delivers alert payloads to the configured webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vigilops/costwatch/internal/domain/alert"
	"github.com/vigilops/costwatch/internal/pkg/errors"
	"github.com/vigilops/costwatch/internal/pkg/logger"
)

// DefaultTimeout bounds one webhook delivery attempt
const DefaultTimeout = 10 * time.Second

// Notifier delivers one alert. Delivery failure is logged by callers;
// it never fails the run.
type Notifier interface {
	Send(ctx context.Context, a alert.Alert) error
}

// WebhookNotifier posts alerts as JSON to a webhook endpoint. The
// endpoint acknowledges with the literal body "ok"; any other response
// is a delivery failure.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewWebhookNotifier creates a notifier for the given webhook URL
func NewWebhookNotifier(url string, timeout time.Duration, log *logger.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// Send posts the alert payload and verifies the acknowledgement
func (n *WebhookNotifier) Send(ctx context.Context, a alert.Alert) error {
	payload, err := json.Marshal(buildMessage(a))
	if err != nil {
		return errors.DeliveryFailure("failed to marshal alert payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return errors.DeliveryFailure("failed to create webhook request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errors.DeliveryFailure("webhook request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.DeliveryFailure("failed to read webhook response", err)
	}

	if strings.TrimSpace(string(body)) != "ok" {
		return errors.DeliveryFailure(
			fmt.Sprintf("webhook did not acknowledge: status %d, body %q", resp.StatusCode, string(body)), nil)
	}

	n.logger.WithFields(map[string]interface{}{
		"category": a.Category,
		"run_id":   a.RunID,
	}).Info("Alert delivered")

	return nil
}

// buildMessage builds the webhook payload. The text field carries a
// Slack-compatible rendering alongside the structured fields.
func buildMessage(a alert.Alert) map[string]interface{} {
	emoji := ":bell:"
	switch a.Category {
	case alert.CategoryCostThreshold, alert.CategoryCostIncrease:
		emoji = ":money_with_wings:"
	case alert.CategoryNetworkThreshold:
		emoji = ":satellite:"
	case alert.CategoryUnusedResources:
		emoji = ":wastebasket:"
	case alert.CategoryDailyOKStatus:
		emoji = ":white_check_mark:"
	}

	return map[string]interface{}{
		"text":            fmt.Sprintf("%s %s", emoji, a.Message),
		"category":        a.Category,
		"message":         a.Message,
		"current_value":   a.CurrentValue,
		"threshold_value": a.ThresholdValue,
		"timestamp":       a.Timestamp.UTC().Format(time.RFC3339),
		"run_id":          a.RunID,
	}
}
