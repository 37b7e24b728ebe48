package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/costpilot/costpilot/pkg/pricing"
	"github.com/costpilot/costpilot/pkg/resource"
)

// Config is the top-level configuration for CostPilot.
type Config struct {
	Pricing     PricingConfig     `yaml:"pricing"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	APIServer   APIServerConfig   `yaml:"apiServer"`
	Database    DatabaseConfig    `yaml:"database"`
	History     HistoryConfig     `yaml:"history"`
}

// RateConfig mirrors pricing.TierRates with YAML tags. All rates are
// USD.
type RateConfig struct {
	CPUPerCoreHour    float64 `yaml:"cpuPerCoreHourUSD"`
	MemoryPerGBHour   float64 `yaml:"memoryPerGBHourUSD"`
	StoragePerGBMonth float64 `yaml:"storagePerGBMonthUSD"`
}

type PricingConfig struct {
	Standard          RateConfig `yaml:"standard"`
	Autopilot         RateConfig `yaml:"autopilot"`
	ManagementPerHour float64    `yaml:"managementPerHourUSD"`
	SSDPerGBMonth     float64    `yaml:"ssdPerGBMonthUSD"`
	IdleIPPerMonth    float64    `yaml:"idleIPPerMonthUSD"`
}

// Table builds the immutable pricing table the estimator runs against.
func (p PricingConfig) Table() *pricing.Table {
	return pricing.New(pricing.Config{
		Standard:          pricing.TierRates(p.Standard),
		Autopilot:         pricing.TierRates(p.Autopilot),
		ManagementPerHour: p.ManagementPerHour,
		SSDPerGBMonth:     p.SSDPerGBMonth,
		IdleIPPerMonth:    p.IdleIPPerMonth,
	})
}

type AggregationConfig struct {
	Policy string `yaml:"policy"` // "lenient", "strict"
}

type DefaultsConfig struct {
	Tier       string `yaml:"tier"` // "standard", "autopilot"
	PeriodDays int    `yaml:"periodDays"`
}

type APIServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retentionDays"`
}

type HistoryConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CleanupSchedule string `yaml:"cleanupSchedule"` // Cron expression
}

// DefaultConfig returns a Config with sensible defaults. Rates come
// from the built-in list-price table.
func DefaultConfig() *Config {
	rates := pricing.Default().Snapshot()

	cfg := &Config{
		Pricing: PricingConfig{
			Standard:          RateConfig(rates.Standard),
			Autopilot:         RateConfig(rates.Autopilot),
			ManagementPerHour: rates.ManagementPerHour,
			SSDPerGBMonth:     rates.SSDPerGBMonth,
			IdleIPPerMonth:    rates.IdleIPPerMonth,
		},
		Aggregation: AggregationConfig{
			Policy: string(resource.PolicyLenient),
		},
		Defaults: DefaultsConfig{
			Tier:       string(pricing.TierAutopilot),
			PeriodDays: 30,
		},
		APIServer: APIServerConfig{
			Enabled: true,
			Address: "0.0.0.0",
			Port:    8080,
		},
		Database: DatabaseConfig{
			Path:          "/data/costpilot.db",
			RetentionDays: 90,
		},
		History: HistoryConfig{
			Enabled:         true,
			CleanupSchedule: "0 3 * * *",
		},
	}

	cfg.applyEnvOverrides()
	return cfg
}

// LoadFromFile loads config from a YAML file, overlaying on defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets the deploy environment win over the file for
// the settings that differ per environment.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("COSTPILOT_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("COSTPILOT_TIER"); v != "" {
		c.Defaults.Tier = v
	}
	if v := os.Getenv("COSTPILOT_POLICY"); v != "" {
		c.Aggregation.Policy = v
	}
	if v := os.Getenv("COSTPILOT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.APIServer.Port = port
		}
	}
}

// Policy returns the aggregation policy. Call Validate first; an
// unknown name falls back to lenient.
func (c *Config) Policy() resource.Policy {
	policy, err := resource.ParsePolicy(c.Aggregation.Policy)
	if err != nil {
		return resource.PolicyLenient
	}
	return policy
}

// Tier returns the default pricing tier. Call Validate first; an
// unknown name falls back to autopilot.
func (c *Config) Tier() pricing.Tier {
	tier, err := pricing.ParseTier(c.Defaults.Tier)
	if err != nil {
		return pricing.TierAutopilot
	}
	return tier
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if _, err := pricing.ParseTier(c.Defaults.Tier); err != nil {
		return fmt.Errorf("defaults.tier: %w", err)
	}
	if _, err := resource.ParsePolicy(c.Aggregation.Policy); err != nil {
		return fmt.Errorf("aggregation.policy: %w", err)
	}

	if c.Defaults.PeriodDays <= 0 {
		return fmt.Errorf("defaults.periodDays must be positive, got %d", c.Defaults.PeriodDays)
	}

	if c.APIServer.Enabled {
		if c.APIServer.Port < 1 || c.APIServer.Port > 65535 {
			return fmt.Errorf("apiServer.port must be between 1 and 65535, got %d", c.APIServer.Port)
		}
	}

	if c.Database.RetentionDays < 0 {
		return fmt.Errorf("database.retentionDays must be >= 0, got %d", c.Database.RetentionDays)
	}

	return nil
}
