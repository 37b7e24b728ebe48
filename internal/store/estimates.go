package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/costpilot/costpilot/pkg/cost"
	"github.com/costpilot/costpilot/pkg/resource"
)

// EstimateRecord is one persisted estimate: an entity's totals and
// priced costs on one date. Re-estimating the same entity on the same
// date overwrites the earlier row.
type EstimateRecord struct {
	Date           string  `json:"date"`
	Entity         string  `json:"entity"`
	Tier           string  `json:"tier"`
	PeriodDays     int     `json:"periodDays"`
	CPUCores       float64 `json:"cpuCores"`
	MemoryGB       float64 `json:"memoryGB"`
	StorageGB      float64 `json:"storageGB"`
	PodCount       int     `json:"podCount"`
	TotalCostUSD   float64 `json:"totalCostUSD"`
	MonthlyCostUSD float64 `json:"monthlyCostUSD"`
}

const upsertEstimateSQL = `INSERT INTO estimates
	(date, entity, tier, period_days, cpu_cores, memory_gb, storage_gb, pod_count, total_cost_usd, monthly_cost_usd)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(date, entity) DO UPDATE SET
		tier = excluded.tier,
		period_days = excluded.period_days,
		cpu_cores = excluded.cpu_cores,
		memory_gb = excluded.memory_gb,
		storage_gb = excluded.storage_gb,
		pod_count = excluded.pod_count,
		total_cost_usd = excluded.total_cost_usd,
		monthly_cost_usd = excluded.monthly_cost_usd`

// EstimateStore persists estimates to SQLite. db may be nil (all ops
// become no-ops, for running without history). A non-nil writer routes
// writes through the async queue so request handlers never block on the
// database.
type EstimateStore struct {
	db     *sql.DB
	writer *Writer
}

// NewEstimateStore creates an EstimateStore. Either argument may be nil.
func NewEstimateStore(db *sql.DB, writer *Writer) *EstimateStore {
	return &EstimateStore{db: db, writer: writer}
}

func (s *EstimateStore) write(fn func(*sql.DB)) {
	if s.writer != nil {
		s.writer.Enqueue(fn)
		return
	}
	fn(s.db)
}

// RecordEstimate upserts today's estimate for one entity.
func (s *EstimateStore) RecordEstimate(entity string, totals resource.Totals, b cost.Breakdown) {
	if s.db == nil {
		return
	}
	date := time.Now().Format("2006-01-02")

	s.write(func(db *sql.DB) {
		if _, err := db.Exec(upsertEstimateSQL,
			date, entity, string(b.Tier), b.PeriodDays,
			totals.CPUCores, totals.MemoryGB, totals.StorageGB, totals.PodCount,
			b.TotalCostUSD, b.MonthlyProjectionUSD,
		); err != nil {
			slog.Error("estimate record: upsert", "entity", entity, "error", err)
		}
	})
}

// RecordRanking upserts every record of a ranking atomically within a
// single transaction.
func (s *EstimateStore) RecordRanking(ranking cost.Ranking) {
	if s.db == nil || len(ranking.Records) == 0 {
		return
	}
	date := time.Now().Format("2006-01-02")

	s.write(func(db *sql.DB) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			slog.Error("ranking record: begin tx", "error", err)
			return
		}
		defer tx.Rollback() //nolint:errcheck // no-op after Commit

		for _, r := range ranking.Records {
			if _, err := tx.Exec(upsertEstimateSQL,
				date, r.Name, string(r.Breakdown.Tier), r.Breakdown.PeriodDays,
				r.Totals.CPUCores, r.Totals.MemoryGB, r.Totals.StorageGB, r.Totals.PodCount,
				r.Breakdown.TotalCostUSD, r.Breakdown.MonthlyProjectionUSD,
			); err != nil {
				slog.Error("ranking record: upsert", "entity", r.Name, "error", err)
				return
			}
		}

		if err := tx.Commit(); err != nil {
			slog.Error("ranking record: commit tx", "error", err)
		}
	})
}

// GetTrend returns the estimates for one entity over the last N days,
// ordered by date ascending.
func (s *EstimateStore) GetTrend(entity string, days int) []EstimateRecord {
	if s.db == nil {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	rows, err := s.db.Query(
		`SELECT date, entity, tier, period_days, cpu_cores, memory_gb, storage_gb, pod_count, total_cost_usd, monthly_cost_usd
		 FROM estimates WHERE entity = ? AND date >= ? ORDER BY date ASC`,
		entity, cutoff,
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var result []EstimateRecord
	for rows.Next() {
		var r EstimateRecord
		if err := rows.Scan(&r.Date, &r.Entity, &r.Tier, &r.PeriodDays,
			&r.CPUCores, &r.MemoryGB, &r.StorageGB, &r.PodCount,
			&r.TotalCostUSD, &r.MonthlyCostUSD); err != nil {
			continue
		}
		result = append(result, r)
	}
	return result
}

// GetAverageMonthlyByEntity returns the average recorded monthly cost
// per entity for the given date range.
func (s *EstimateStore) GetAverageMonthlyByEntity(start, end time.Time) map[string]float64 {
	if s.db == nil {
		return nil
	}

	rows, err := s.db.Query(
		"SELECT entity, AVG(monthly_cost_usd) FROM estimates WHERE date >= ? AND date < ? GROUP BY entity",
		start.Format("2006-01-02"), end.Format("2006-01-02"),
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var entity string
		var avg float64
		if err := rows.Scan(&entity, &avg); err != nil {
			continue
		}
		result[entity] = avg
	}
	return result
}
