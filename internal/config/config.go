package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/vigilops/costwatch/internal/alerting"
	"github.com/vigilops/costwatch/internal/domain/alert"
	"github.com/vigilops/costwatch/internal/domain/billing"
	"github.com/vigilops/costwatch/internal/pkg/errors"
)

// Config holds all application configuration. It is loaded once at
// process start and never reloaded.
type Config struct {
	Project ProjectConfig
	Rates   RatesConfig
	Alerts  AlertsConfig
	Netstat NetstatConfig
	Webhook WebhookConfig
	State   StateConfig
	Logging LoggingConfig
	Server  ServerConfig
}

// ProjectConfig identifies the monitored cloud project
type ProjectConfig struct {
	ID              string
	Zone            string
	Region          string
	Instances       []string
	CredentialsFile string
}

// RatesConfig contains the monthly unit prices
type RatesConfig struct {
	MachineMonthly           map[string]decimal.Decimal
	DiskStandardPerGBMonthly decimal.Decimal
	DiskSSDPerGBMonthly      decimal.Decimal
	StaticIPMonthly          decimal.Decimal
	NetworkFreeTierGB        decimal.Decimal
	NetworkEgressPerGB       decimal.Decimal
}

// AlertsConfig contains thresholds, enable flags, and the cooldown
type AlertsConfig struct {
	CostThresholdDaily decimal.Decimal
	CostIncreasePct    decimal.Decimal
	NetworkThresholdGB decimal.Decimal
	Cooldown           time.Duration
	Enabled            map[alert.Category]bool
}

// NetstatConfig describes the remote counter-collection command
type NetstatConfig struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// WebhookConfig contains the notification target
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// StateConfig locates the flat state files
type StateConfig struct {
	Dir string
}

// LedgerPath returns the cooldown ledger file path
func (s StateConfig) LedgerPath() string {
	return filepath.Join(s.Dir, "alert_ledger")
}

// RunLogPath returns the append-only event log path
func (s StateConfig) RunLogPath() string {
	return filepath.Join(s.Dir, "events.log")
}

// HistoryPath returns the cost history file path
func (s StateConfig) HistoryPath() string {
	return filepath.Join(s.Dir, "costs.log")
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// ServerConfig contains daemon mode configuration
type ServerConfig struct {
	Host     string
	Port     int
	Schedule string // cron expression for scheduled runs
}

// Load loads configuration from an optional config file plus
// environment variables.
func Load(cfgFile string) (*Config, error) {
	// Load .env file if it exists (optional)
	_ = godotenv.Load()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/costwatch")
		v.SetConfigName("costwatch")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("COSTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A named config file must exist; the default search is optional.
		if cfgFile != "" {
			return nil, errors.InvalidConfiguration(fmt.Sprintf("cannot read config file %s: %v", cfgFile, err))
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.InvalidConfiguration(fmt.Sprintf("cannot read config: %v", err))
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("state.dir", "/var/lib/costwatch")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 9090)
	v.SetDefault("server.schedule", "0 */6 * * *")
	v.SetDefault("alerts.cooldown_seconds", 14400)
	v.SetDefault("webhook.timeout_seconds", 10)
	v.SetDefault("netstat.command", "gcloud")
	v.SetDefault("netstat.timeout_seconds", 30)
	v.SetDefault("rates.network_free_tier_gb", "1")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Project: ProjectConfig{
			ID:              v.GetString("project.id"),
			Zone:            v.GetString("project.zone"),
			Region:          v.GetString("project.region"),
			Instances:       v.GetStringSlice("project.instances"),
			CredentialsFile: v.GetString("project.credentials_file"),
		},
		Netstat: NetstatConfig{
			Command: v.GetString("netstat.command"),
			Args:    v.GetStringSlice("netstat.args"),
			Timeout: time.Duration(v.GetInt("netstat.timeout_seconds")) * time.Second,
		},
		Webhook: WebhookConfig{
			URL:     v.GetString("webhook.url"),
			Timeout: time.Duration(v.GetInt("webhook.timeout_seconds")) * time.Second,
		},
		State: StateConfig{
			Dir: v.GetString("state.dir"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Server: ServerConfig{
			Host:     v.GetString("server.host"),
			Port:     v.GetInt("server.port"),
			Schedule: v.GetString("server.schedule"),
		},
	}

	var err error
	if cfg.Rates, err = ratesFromViper(v); err != nil {
		return nil, err
	}
	if cfg.Alerts, err = alertsFromViper(v); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ratesFromViper(v *viper.Viper) (RatesConfig, error) {
	rates := RatesConfig{MachineMonthly: make(map[string]decimal.Decimal)}

	for machineType, raw := range v.GetStringMapString("rates.machine_monthly") {
		rate, err := parseRate("rates.machine_monthly."+machineType, raw)
		if err != nil {
			return rates, err
		}
		rates.MachineMonthly[machineType] = rate
	}

	var err error
	if rates.DiskStandardPerGBMonthly, err = parseRate("rates.disk_standard_per_gb_monthly", v.GetString("rates.disk_standard_per_gb_monthly")); err != nil {
		return rates, err
	}
	if rates.DiskSSDPerGBMonthly, err = parseRate("rates.disk_ssd_per_gb_monthly", v.GetString("rates.disk_ssd_per_gb_monthly")); err != nil {
		return rates, err
	}
	if rates.StaticIPMonthly, err = parseRate("rates.static_ip_monthly", v.GetString("rates.static_ip_monthly")); err != nil {
		return rates, err
	}
	if rates.NetworkFreeTierGB, err = parseRate("rates.network_free_tier_gb", v.GetString("rates.network_free_tier_gb")); err != nil {
		return rates, err
	}
	if rates.NetworkEgressPerGB, err = parseRate("rates.network_egress_per_gb", v.GetString("rates.network_egress_per_gb")); err != nil {
		return rates, err
	}
	return rates, nil
}

func alertsFromViper(v *viper.Viper) (AlertsConfig, error) {
	alerts := AlertsConfig{
		Cooldown: time.Duration(v.GetInt("alerts.cooldown_seconds")) * time.Second,
		Enabled:  make(map[alert.Category]bool),
	}

	for _, category := range alert.Categories() {
		key := "alerts.enabled." + string(category)
		if v.IsSet(key) {
			alerts.Enabled[category] = v.GetBool(key)
		}
	}

	var err error
	if alerts.CostThresholdDaily, err = parseRate("alerts.cost_threshold_daily", v.GetString("alerts.cost_threshold_daily")); err != nil {
		return alerts, err
	}
	if alerts.CostIncreasePct, err = parseRate("alerts.cost_increase_pct", v.GetString("alerts.cost_increase_pct")); err != nil {
		return alerts, err
	}
	if alerts.NetworkThresholdGB, err = parseRate("alerts.network_threshold_gb", v.GetString("alerts.network_threshold_gb")); err != nil {
		return alerts, err
	}
	return alerts, nil
}

// parseRate parses a decimal setting. Empty reads as zero; a malformed
// value is an InvalidConfiguration.
func parseRate(key, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.InvalidConfiguration(fmt.Sprintf("%s: invalid decimal %q", key, raw))
	}
	return value, nil
}

// Validate checks the configuration. Any failure here aborts the run
// before any billing calculation.
func (c *Config) Validate() error {
	if c.Project.ID == "" {
		return errors.InvalidConfiguration("project.id is required")
	}
	if len(c.Project.Instances) > 0 && c.Project.Zone == "" {
		return errors.InvalidConfiguration("project.zone is required when instances are configured")
	}

	if err := c.rateTable().Validate(); err != nil {
		return errors.InvalidConfiguration(err.Error())
	}

	enabled := func(category alert.Category) bool {
		on, ok := c.Alerts.Enabled[category]
		return !ok || on
	}
	if enabled(alert.CategoryCostThreshold) && c.Alerts.CostThresholdDaily.IsZero() {
		return errors.InvalidConfiguration("alerts.cost_threshold_daily is required while cost_threshold is enabled")
	}
	if enabled(alert.CategoryCostIncrease) && c.Alerts.CostIncreasePct.IsZero() {
		return errors.InvalidConfiguration("alerts.cost_increase_pct is required while cost_increase is enabled")
	}
	if enabled(alert.CategoryNetworkThreshold) && c.Alerts.NetworkThresholdGB.IsZero() {
		return errors.InvalidConfiguration("alerts.network_threshold_gb is required while network_threshold is enabled")
	}

	anyEnabled := false
	for _, category := range alert.Categories() {
		if enabled(category) {
			anyEnabled = true
			break
		}
	}
	if anyEnabled && c.Webhook.URL == "" {
		return errors.InvalidConfiguration("webhook.url is required while alerting is enabled")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.InvalidConfiguration(fmt.Sprintf("invalid server port: %d", c.Server.Port))
	}

	return nil
}

func (c *Config) rateTable() *billing.RateTable {
	return &billing.RateTable{
		MachineMonthly:           c.Rates.MachineMonthly,
		DiskStandardPerGBMonthly: c.Rates.DiskStandardPerGBMonthly,
		DiskSSDPerGBMonthly:      c.Rates.DiskSSDPerGBMonthly,
		StaticIPMonthly:          c.Rates.StaticIPMonthly,
		NetworkFreeTierGB:        c.Rates.NetworkFreeTierGB,
		NetworkEgressPerGB:       c.Rates.NetworkEgressPerGB,
	}
}

// RateTable returns the validated billing rate table
func (c *Config) RateTable() *billing.RateTable {
	return c.rateTable()
}

// Thresholds returns the alerting thresholds and enable flags
func (c *Config) Thresholds() alerting.Thresholds {
	enabled := make(map[alert.Category]bool, len(c.Alerts.Enabled))
	for category, on := range c.Alerts.Enabled {
		enabled[category] = on
	}
	return alerting.Thresholds{
		DailyCost:       c.Alerts.CostThresholdDaily,
		CostIncreasePct: c.Alerts.CostIncreasePct,
		NetworkGB:       c.Alerts.NetworkThresholdGB,
		Enabled:         enabled,
	}
}
