package config

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Add(msg string) {
	e.Errors = append(e.Errors, msg)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateDetailed performs comprehensive config validation, reporting
// every problem at once instead of stopping at the first.
func ValidateDetailed(cfg *Config) *ValidationError {
	ve := &ValidationError{}

	if err := cfg.Validate(); err != nil {
		ve.Add(err.Error())
	}

	checkRates := func(prefix string, r RateConfig) {
		if r.CPUPerCoreHour < 0 {
			ve.Add(fmt.Sprintf("%s.cpuPerCoreHourUSD must be >= 0", prefix))
		}
		if r.MemoryPerGBHour < 0 {
			ve.Add(fmt.Sprintf("%s.memoryPerGBHourUSD must be >= 0", prefix))
		}
		if r.StoragePerGBMonth < 0 {
			ve.Add(fmt.Sprintf("%s.storagePerGBMonthUSD must be >= 0", prefix))
		}
	}
	checkRates("pricing.standard", cfg.Pricing.Standard)
	checkRates("pricing.autopilot", cfg.Pricing.Autopilot)

	if cfg.Pricing.ManagementPerHour < 0 {
		ve.Add("pricing.managementPerHourUSD must be >= 0")
	}
	if cfg.Pricing.SSDPerGBMonth < 0 {
		ve.Add("pricing.ssdPerGBMonthUSD must be >= 0")
	}
	if cfg.Pricing.SSDPerGBMonth > 0 && cfg.Pricing.SSDPerGBMonth < cfg.Pricing.Standard.StoragePerGBMonth {
		ve.Add("pricing.ssdPerGBMonthUSD must not be below the standard storage rate: the waste range would invert")
	}
	if cfg.Pricing.IdleIPPerMonth < 0 {
		ve.Add("pricing.idleIPPerMonthUSD must be >= 0")
	}

	if cfg.Defaults.PeriodDays > 3650 {
		ve.Add("defaults.periodDays must be <= 3650")
	}

	if cfg.History.Enabled && cfg.Database.Path == "" {
		ve.Add("history.enabled requires database.path")
	}
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.CleanupSchedule) == "" {
		ve.Add("history.cleanupSchedule must be a cron expression when history is enabled")
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}
