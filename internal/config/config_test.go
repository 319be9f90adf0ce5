package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vigilops/costwatch/internal/domain/alert"
	"github.com/vigilops/costwatch/internal/pkg/errors"
)

const validYAML = `
project:
  id: demo-project
  zone: us-central1-a
  region: us-central1
  instances:
    - web-1
    - web-2
rates:
  machine_monthly:
    e2-micro: "6.00"
    e2-medium: "24.46"
  disk_standard_per_gb_monthly: "0.04"
  disk_ssd_per_gb_monthly: "0.17"
  static_ip_monthly: "0.73"
  network_free_tier_gb: "1"
  network_egress_per_gb: "0.12"
alerts:
  cost_threshold_daily: "5.00"
  cost_increase_pct: "20"
  network_threshold_gb: "10"
  enabled:
    daily_ok_status: false
webhook:
  url: https://hooks.example.com/notify
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "costwatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Project.ID != "demo-project" {
		t.Errorf("project id = %q, want demo-project", cfg.Project.ID)
	}
	if len(cfg.Project.Instances) != 2 {
		t.Errorf("instances = %v, want 2 entries", cfg.Project.Instances)
	}

	rate, ok := cfg.Rates.MachineMonthly["e2-micro"]
	if !ok {
		t.Fatal("missing e2-micro rate")
	}
	if want := decimal.RequireFromString("6.00"); !rate.Equal(want) {
		t.Errorf("e2-micro rate = %s, want %s", rate, want)
	}

	if cfg.Alerts.Cooldown != 14400*time.Second {
		t.Errorf("cooldown = %v, want default 4h", cfg.Alerts.Cooldown)
	}
	if on := cfg.Alerts.Enabled[alert.CategoryDailyOKStatus]; on {
		t.Error("daily_ok_status should be disabled")
	}
	if cfg.Webhook.Timeout != 10*time.Second {
		t.Errorf("webhook timeout = %v, want default 10s", cfg.Webhook.Timeout)
	}
}

func TestLoad_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate string
	}{
		{
			name: "missing project id",
			mutate: `
rates:
  static_ip_monthly: "0.73"
alerts:
  cost_threshold_daily: "5.00"
  cost_increase_pct: "20"
  network_threshold_gb: "10"
webhook:
  url: https://hooks.example.com/notify
`,
		},
		{
			name: "missing cost threshold",
			mutate: `
project:
  id: demo-project
alerts:
  cost_increase_pct: "20"
  network_threshold_gb: "10"
webhook:
  url: https://hooks.example.com/notify
`,
		},
		{
			name: "missing webhook url",
			mutate: `
project:
  id: demo-project
alerts:
  cost_threshold_daily: "5.00"
  cost_increase_pct: "20"
  network_threshold_gb: "10"
`,
		},
		{
			name: "malformed rate",
			mutate: `
project:
  id: demo-project
rates:
  static_ip_monthly: "seventy three cents"
alerts:
  cost_threshold_daily: "5.00"
  cost_increase_pct: "20"
  network_threshold_gb: "10"
webhook:
  url: https://hooks.example.com/notify
`,
		},
		{
			name: "negative rate",
			mutate: `
project:
  id: demo-project
rates:
  static_ip_monthly: "-0.73"
alerts:
  cost_threshold_daily: "5.00"
  cost_increase_pct: "20"
  network_threshold_gb: "10"
webhook:
  url: https://hooks.example.com/notify
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.mutate))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if errors.Code(err) != errors.ErrCodeInvalidConfiguration {
				t.Errorf("Load() error code = %s, want INVALID_CONFIGURATION", errors.Code(err))
			}
		})
	}
}

func TestLoad_MissingNamedFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() should fail for a named missing file")
	}
	if errors.Code(err) != errors.ErrCodeInvalidConfiguration {
		t.Errorf("Load() error code = %s, want INVALID_CONFIGURATION", errors.Code(err))
	}
}
