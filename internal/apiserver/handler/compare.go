package handler

import (
	"encoding/json"
	"net/http"

	"github.com/costpilot/costpilot/internal/metrics"
	"github.com/costpilot/costpilot/internal/store"
	"github.com/costpilot/costpilot/pkg/cost"
	"github.com/costpilot/costpilot/pkg/pricing"
	"github.com/costpilot/costpilot/pkg/resource"
)

type CompareHandler struct {
	estimator   *cost.Estimator
	estimates   *store.EstimateStore
	defaultTier pricing.Tier
	defaultDays int
}

func NewCompareHandler(estimator *cost.Estimator, estimates *store.EstimateStore, defaultTier pricing.Tier, defaultDays int) *CompareHandler {
	return &CompareHandler{
		estimator:   estimator,
		estimates:   estimates,
		defaultTier: defaultTier,
		defaultDays: defaultDays,
	}
}

type compareRecord struct {
	Name   string          `json:"name"`
	Totals resource.Totals `json:"totals"`
}

type compareRequest struct {
	Spec    string          `json:"spec,omitempty"`
	Records []compareRecord `json:"records,omitempty"`
	Tier    string          `json:"tier,omitempty"`
	Days    int             `json:"days,omitempty"`
	Record  bool            `json:"record,omitempty"`
}

// Compare ranks entities by estimated cost. Input is either the compact
// "name:cpu,memGB[,storageGB]|..." text form or structured records.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Spec == "" && len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "spec or records is required")
		return
	}

	tier := h.defaultTier
	if req.Tier != "" {
		parsed, err := pricing.ParseTier(req.Tier)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tier = parsed
	}
	days := req.Days
	if days == 0 {
		days = h.defaultDays
	}

	var (
		ranking cost.Ranking
		err     error
	)
	if req.Spec != "" {
		ranking, err = h.estimator.CompareText(req.Spec, tier, days)
	} else {
		ranking, err = h.compareRecords(req.Records, tier, days)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.ComparisonsTotal.Inc()
	metrics.SkippedSegmentsTotal.Add(float64(ranking.Skipped))

	if req.Record {
		h.estimates.RecordRanking(ranking)
		for _, rec := range ranking.Records {
			metrics.EstimateMonthlyCostUSD.WithLabelValues(rec.Name).Set(rec.Breakdown.MonthlyProjectionUSD)
		}
	}

	writeJSON(w, http.StatusOK, ranking)
}

func (h *CompareHandler) compareRecords(records []compareRecord, tier pricing.Tier, days int) (cost.Ranking, error) {
	named := make([]cost.NamedRecord, 0, len(records))
	for _, rec := range records {
		breakdown, err := h.estimator.Estimate(rec.Totals, tier, days)
		if err != nil {
			return cost.Ranking{}, err
		}
		named = append(named, cost.NamedRecord{Name: rec.Name, Totals: rec.Totals, Breakdown: breakdown})
	}
	return cost.Rank(named), nil
}
