// Package cost turns aggregated resource totals into priced breakdowns,
// billing projections, and cross-entity rankings. All amounts are USD.
package cost

import (
	"errors"
	"fmt"

	"github.com/costpilot/costpilot/pkg/pricing"
	"github.com/costpilot/costpilot/pkg/resource"
)

// ErrInvalidPeriod reports a non-positive estimation period.
var ErrInvalidPeriod = errors.New("estimation period must be a positive number of days")

// HoursPerDay scales a period in days to the hourly rates.
const HoursPerDay = 24

// DaysPerMonth is the billing month used for storage proration and for
// the monthly projection.
const DaysPerMonth = 30

// DaysPerYear drives the annual projection.
const DaysPerYear = 365

// Breakdown decomposes one estimate into its cost components. Total is
// exactly the sum of the four components; nothing is rounded inside
// the engine, presentation rounding is the caller's business. The
// projections are linear scalings of Total, never re-derived from raw
// resources.
type Breakdown struct {
	Tier       pricing.Tier `json:"tier"`
	PeriodDays int          `json:"periodDays"`

	CPUCostUSD       float64 `json:"cpuCostUSD"`
	MemoryCostUSD    float64 `json:"memoryCostUSD"`
	StorageCostUSD   float64 `json:"storageCostUSD"`
	ManagementFeeUSD float64 `json:"managementFeeUSD"`
	TotalCostUSD     float64 `json:"totalCostUSD"`

	// Component shares of Total in percent. All zero when Total is
	// zero (a cluster of requestless pods has no cost to split).
	CPUPercent        float64 `json:"cpuPercent"`
	MemoryPercent     float64 `json:"memoryPercent"`
	StoragePercent    float64 `json:"storagePercent"`
	ManagementPercent float64 `json:"managementPercent"`

	MonthlyProjectionUSD float64 `json:"monthlyProjectionUSD"`
	AnnualProjectionUSD  float64 `json:"annualProjectionUSD"`

	PodCount         int     `json:"podCount"`
	PerPodMonthlyUSD float64 `json:"perPodMonthlyUSD"`
}

// Estimator prices resource totals against a pricing table. The table
// is immutable, so one estimator serves concurrent callers.
type Estimator struct {
	table *pricing.Table
}

// NewEstimator builds an estimator backed by table. A nil table falls
// back to the default list prices.
func NewEstimator(table *pricing.Table) *Estimator {
	if table == nil {
		table = pricing.Default()
	}
	return &Estimator{table: table}
}

// Table exposes the table the estimator prices against.
func (e *Estimator) Table() *pricing.Table { return e.table }

// Estimate prices totals at tier over a period of days. CPU and memory
// accrue hourly; storage is billed per month and prorated by the
// fraction of a 30-day month the period covers.
func (e *Estimator) Estimate(totals resource.Totals, tier pricing.Tier, days int) (Breakdown, error) {
	if days <= 0 {
		return Breakdown{}, fmt.Errorf("%w: got %d", ErrInvalidPeriod, days)
	}

	hours := float64(days) * HoursPerDay
	b := Breakdown{
		Tier:       tier,
		PeriodDays: days,
		PodCount:   totals.PodCount,
	}

	b.CPUCostUSD = totals.CPUCores * e.table.Rate(pricing.AxisCPU, tier) * hours
	b.MemoryCostUSD = totals.MemoryGB * e.table.Rate(pricing.AxisMemory, tier) * hours
	b.StorageCostUSD = totals.StorageGB * e.table.Rate(pricing.AxisStorage, tier) * (float64(days) / DaysPerMonth)
	b.ManagementFeeUSD = e.table.ManagementFee(tier, hours)
	b.TotalCostUSD = b.CPUCostUSD + b.MemoryCostUSD + b.StorageCostUSD + b.ManagementFeeUSD

	if b.TotalCostUSD > 0 {
		b.CPUPercent = b.CPUCostUSD / b.TotalCostUSD * 100
		b.MemoryPercent = b.MemoryCostUSD / b.TotalCostUSD * 100
		b.StoragePercent = b.StorageCostUSD / b.TotalCostUSD * 100
		b.ManagementPercent = b.ManagementFeeUSD / b.TotalCostUSD * 100
	}

	b.MonthlyProjectionUSD = b.TotalCostUSD * DaysPerMonth / float64(days)
	b.AnnualProjectionUSD = b.TotalCostUSD * DaysPerYear / float64(days)

	if totals.PodCount > 0 {
		b.PerPodMonthlyUSD = b.MonthlyProjectionUSD / float64(totals.PodCount)
	}

	return b, nil
}
