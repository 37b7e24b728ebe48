// Package pricing holds the immutable rate tables the estimator prices
// against. A table is constructed once (from defaults or config) and
// only read afterwards, so it is safe to share across goroutines.
package pricing

import "fmt"

// Tier selects the cluster pricing model.
type Tier string

const (
	// TierStandard bills the control plane as a flat hourly
	// management fee on top of per-resource rates.
	TierStandard Tier = "standard"
	// TierAutopilot folds the control plane cost into higher
	// per-resource rates and charges no management fee.
	TierAutopilot Tier = "autopilot"
)

// ParseTier validates a tier name from config or a request field.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierStandard:
		return TierStandard, nil
	case TierAutopilot:
		return TierAutopilot, nil
	}
	return "", fmt.Errorf("unknown pricing tier %q: must be %q or %q", s, TierStandard, TierAutopilot)
}

// Axis is a billable resource dimension.
type Axis string

const (
	AxisCPU     Axis = "cpu"
	AxisMemory  Axis = "memory"
	AxisStorage Axis = "storage"
)

// TierRates are the per-resource unit rates of one tier. CPU and
// memory bill per hour, storage per 30-day month.
type TierRates struct {
	CPUPerCoreHour    float64 `json:"cpuPerCoreHourUSD"`
	MemoryPerGBHour   float64 `json:"memoryPerGBHourUSD"`
	StoragePerGBMonth float64 `json:"storagePerGBMonthUSD"`
}

// Config collects everything a Table is built from.
type Config struct {
	Standard  TierRates `json:"standard"`
	Autopilot TierRates `json:"autopilot"`

	// ManagementPerHour is the flat cluster fee for standard
	// clusters. Autopilot never pays it.
	ManagementPerHour float64 `json:"managementPerHourUSD"`

	// SSDPerGBMonth bounds the waste range for disks whose class is
	// unknown; StoragePerGBMonth of the standard tier is the lower
	// bound.
	SSDPerGBMonth float64 `json:"ssdPerGBMonthUSD"`

	// IdleIPPerMonth is the monthly reservation charge for a static
	// IP that is not attached to anything.
	IdleIPPerMonth float64 `json:"idleIPPerMonthUSD"`
}

// Table is an immutable set of rates. Lookups with unknown axis or
// tier values panic: those are programming errors, not data errors,
// and must not be priced as zero.
type Table struct {
	standard          TierRates
	autopilot         TierRates
	managementPerHour float64
	ssdPerGBMonth     float64
	idleIPPerMonth    float64
}

// New builds a table from cfg. Rates are taken as given; zero is a
// legal rate.
func New(cfg Config) *Table {
	return &Table{
		standard:          cfg.Standard,
		autopilot:         cfg.Autopilot,
		managementPerHour: cfg.ManagementPerHour,
		ssdPerGBMonth:     cfg.SSDPerGBMonth,
		idleIPPerMonth:    cfg.IdleIPPerMonth,
	}
}

// Default returns the GKE on-demand list prices (us-central1) the
// estimator ships with.
func Default() *Table {
	return New(Config{
		Standard: TierRates{
			CPUPerCoreHour:    0.031611,
			MemoryPerGBHour:   0.004237,
			StoragePerGBMonth: 0.04,
		},
		Autopilot: TierRates{
			CPUPerCoreHour:    0.042588,
			MemoryPerGBHour:   0.005722,
			StoragePerGBMonth: 0.04,
		},
		ManagementPerHour: 0.10,
		SSDPerGBMonth:     0.17,
		IdleIPPerMonth:    3.50,
	})
}

// Rate returns the unit rate for one axis at one tier.
func (t *Table) Rate(axis Axis, tier Tier) float64 {
	r := t.rates(tier)
	switch axis {
	case AxisCPU:
		return r.CPUPerCoreHour
	case AxisMemory:
		return r.MemoryPerGBHour
	case AxisStorage:
		return r.StoragePerGBMonth
	}
	panic(fmt.Sprintf("pricing: unknown axis %q", axis))
}

// ManagementFee returns the flat cluster fee accrued over hours.
func (t *Table) ManagementFee(tier Tier, hours float64) float64 {
	switch tier {
	case TierAutopilot:
		return 0
	case TierStandard:
		return t.managementPerHour * hours
	}
	panic(fmt.Sprintf("pricing: unknown tier %q", tier))
}

// Rates returns the per-resource rates of one tier.
func (t *Table) Rates(tier Tier) TierRates {
	return t.rates(tier)
}

// Snapshot returns the table's contents as a Config, for rendering the
// effective rates and for seeding configuration defaults.
func (t *Table) Snapshot() Config {
	return Config{
		Standard:          t.standard,
		Autopilot:         t.autopilot,
		ManagementPerHour: t.managementPerHour,
		SSDPerGBMonth:     t.ssdPerGBMonth,
		IdleIPPerMonth:    t.idleIPPerMonth,
	}
}

// SSDPerGBMonth is the monthly rate bounding the upper end of the
// unattached-disk waste range.
func (t *Table) SSDPerGBMonth() float64 { return t.ssdPerGBMonth }

// IdleIPPerMonth is the monthly charge for an unattached static IP.
func (t *Table) IdleIPPerMonth() float64 { return t.idleIPPerMonth }

func (t *Table) rates(tier Tier) TierRates {
	switch tier {
	case TierStandard:
		return t.standard
	case TierAutopilot:
		return t.autopilot
	}
	panic(fmt.Sprintf("pricing: unknown tier %q", tier))
}
