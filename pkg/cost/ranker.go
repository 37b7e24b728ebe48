package cost

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/costpilot/costpilot/pkg/pricing"
	"github.com/costpilot/costpilot/pkg/resource"
)

// NamedRecord pairs an entity (namespace, team, cluster) with its
// totals and priced breakdown for ranking. Records are transient:
// built for one comparison, ranked, and discarded.
type NamedRecord struct {
	Name      string          `json:"name"`
	Totals    resource.Totals `json:"totals"`
	Breakdown Breakdown       `json:"breakdown"`
}

// RankedRecord is a NamedRecord plus its share of the aggregate total,
// as a fraction in [0,1]. Shares are zero when the aggregate is zero.
type RankedRecord struct {
	NamedRecord
	Share float64 `json:"share"`
}

// Ranking orders records by total cost, most expensive first. Skipped
// counts comparison segments that were malformed and dropped.
type Ranking struct {
	Records           []RankedRecord `json:"records"`
	AggregateTotalUSD float64        `json:"aggregateTotalUSD"`
	Skipped           int            `json:"skippedSegments"`
}

// Rank sorts records by breakdown total, descending. The sort is
// stable: records with equal totals keep their input order.
func Rank(records []NamedRecord) Ranking {
	ranked := make([]RankedRecord, len(records))
	var aggregate float64
	for i, r := range records {
		ranked[i] = RankedRecord{NamedRecord: r}
		aggregate += r.Breakdown.TotalCostUSD
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Breakdown.TotalCostUSD > ranked[j].Breakdown.TotalCostUSD
	})

	if aggregate > 0 {
		for i := range ranked {
			ranked[i].Share = ranked[i].Breakdown.TotalCostUSD / aggregate
		}
	}

	return Ranking{Records: ranked, AggregateTotalUSD: aggregate}
}

// CompareText estimates and ranks entities given in the compact form
// "name:cpu,memoryGB[,storageGB]|name:...". Fields are plain decimal
// numbers; storage is optional and defaults to zero. Malformed
// segments are skipped and counted, never fatal: comparisons are
// exploratory input, often hand-typed.
func (e *Estimator) CompareText(input string, tier pricing.Tier, days int) (Ranking, error) {
	if days <= 0 {
		return Ranking{}, fmt.Errorf("%w: got %d", ErrInvalidPeriod, days)
	}

	var records []NamedRecord
	skipped := 0

	for _, segment := range strings.Split(input, "|") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		name, spec, ok := strings.Cut(segment, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			slog.Warn("skipping malformed comparison segment", "segment", segment, "reason", "missing name")
			skipped++
			continue
		}

		fields := strings.Split(spec, ",")
		if len(fields) < 2 {
			slog.Warn("skipping malformed comparison segment", "segment", segment, "reason", "fewer than two fields")
			skipped++
			continue
		}

		cpu, cpuOK := parseShareField(fields[0])
		mem, memOK := parseShareField(fields[1])
		storage, storageOK := 0.0, true
		if len(fields) > 2 {
			storage, storageOK = parseShareField(fields[2])
		}
		if !cpuOK || !memOK || !storageOK {
			slog.Warn("skipping malformed comparison segment", "segment", segment, "reason", "non-numeric or negative field")
			skipped++
			continue
		}

		totals := resource.Totals{CPUCores: cpu, MemoryGB: mem, StorageGB: storage}
		breakdown, err := e.Estimate(totals, tier, days)
		if err != nil {
			return Ranking{}, err
		}
		records = append(records, NamedRecord{Name: name, Totals: totals, Breakdown: breakdown})
	}

	ranking := Rank(records)
	ranking.Skipped = skipped
	return ranking, nil
}

// parseShareField reads one numeric field of a comparison segment.
// Negative and non-finite values make the segment malformed: totals
// never carry them.
func parseShareField(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
