package cost

import "github.com/costpilot/costpilot/pkg/pricing"

// Waste prices resources that are provisioned but serving nothing:
// persistent disks attached to no workload and static IPs reserved but
// unbound. Disk cost is a range because the disk class is unknown at
// this distance, so it is bracketed by the standard and SSD rates.
type Waste struct {
	UnattachedDiskGB float64 `json:"unattachedDiskGB"`
	IdleIPCount      int     `json:"idleIPCount"`

	DiskMonthlyMinUSD  float64 `json:"diskMonthlyMinUSD"`
	DiskMonthlyMaxUSD  float64 `json:"diskMonthlyMaxUSD"`
	IPMonthlyUSD       float64 `json:"ipMonthlyUSD"`
	TotalMonthlyMinUSD float64 `json:"totalMonthlyMinUSD"`
	TotalMonthlyMaxUSD float64 `json:"totalMonthlyMaxUSD"`
}

// EstimateWaste prices unattached disk capacity and idle static IPs at
// monthly rates. Negative inputs are treated as zero.
func (e *Estimator) EstimateWaste(unattachedDiskGB float64, idleIPs int) Waste {
	if unattachedDiskGB < 0 {
		unattachedDiskGB = 0
	}
	if idleIPs < 0 {
		idleIPs = 0
	}

	w := Waste{UnattachedDiskGB: unattachedDiskGB, IdleIPCount: idleIPs}
	w.DiskMonthlyMinUSD = unattachedDiskGB * e.table.Rate(pricing.AxisStorage, pricing.TierStandard)
	w.DiskMonthlyMaxUSD = unattachedDiskGB * e.table.SSDPerGBMonth()
	w.IPMonthlyUSD = float64(idleIPs) * e.table.IdleIPPerMonth()
	w.TotalMonthlyMinUSD = w.DiskMonthlyMinUSD + w.IPMonthlyUSD
	w.TotalMonthlyMaxUSD = w.DiskMonthlyMaxUSD + w.IPMonthlyUSD
	return w
}
