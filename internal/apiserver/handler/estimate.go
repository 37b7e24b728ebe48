package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/costpilot/costpilot/internal/inventory"
	"github.com/costpilot/costpilot/internal/metrics"
	"github.com/costpilot/costpilot/internal/store"
	"github.com/costpilot/costpilot/pkg/cost"
	"github.com/costpilot/costpilot/pkg/pricing"
	"github.com/costpilot/costpilot/pkg/resource"
)

type EstimateHandler struct {
	estimator   *cost.Estimator
	aggregator  *resource.Aggregator
	decoder     *inventory.Decoder
	estimates   *store.EstimateStore
	defaultTier pricing.Tier
	defaultDays int
}

func NewEstimateHandler(estimator *cost.Estimator, aggregator *resource.Aggregator, decoder *inventory.Decoder, estimates *store.EstimateStore, defaultTier pricing.Tier, defaultDays int) *EstimateHandler {
	return &EstimateHandler{
		estimator:   estimator,
		aggregator:  aggregator,
		decoder:     decoder,
		estimates:   estimates,
		defaultTier: defaultTier,
		defaultDays: defaultDays,
	}
}

type estimateRequest struct {
	Totals *resource.Totals `json:"totals,omitempty"`
	Pods   []resource.Pod   `json:"pods,omitempty"`
	Claims []resource.Claim `json:"claims,omitempty"`
	Tier   string           `json:"tier,omitempty"`
	Days   int              `json:"days,omitempty"`
	Record bool             `json:"record,omitempty"`
	Entity string           `json:"entity,omitempty"`
}

// Estimate prices a set of resource totals. Callers either send totals
// directly or send pod/claim records for the handler to aggregate first.
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Record && req.Entity == "" {
		writeError(w, http.StatusBadRequest, "entity is required when record is set")
		return
	}

	tier, days, err := h.resolvePeriod(req.Tier, req.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	totals := resource.Totals{}
	skipped := 0
	if req.Totals != nil {
		totals = *req.Totals
	} else {
		agg, err := h.aggregator.Aggregate(req.Pods, req.Claims)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		metrics.AggregationsTotal.WithLabelValues(string(h.aggregator.Policy())).Inc()
		metrics.SkippedFieldsTotal.Add(float64(agg.Skipped))
		totals = agg.Totals
		skipped = agg.Skipped
	}

	breakdown, err := h.estimator.Estimate(totals, tier, days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.EstimatesTotal.WithLabelValues(string(tier)).Inc()

	if req.Record {
		h.estimates.RecordEstimate(req.Entity, totals, breakdown)
		metrics.EstimateMonthlyCostUSD.WithLabelValues(req.Entity).Set(breakdown.MonthlyProjectionUSD)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totals":        totals,
		"skippedFields": skipped,
		"breakdown":     breakdown,
	})
}

// EstimateInventory prices a raw inventory dump (kubectl get -o json/yaml
// output posted as the request body). mode=requests prices pod requests
// plus claims, mode=capacity prices node allocatable.
func (h *EstimateHandler) EstimateInventory(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body failed")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "requests"
	}
	if mode != "requests" && mode != "capacity" {
		writeError(w, http.StatusBadRequest, "invalid mode, must be requests or capacity")
		return
	}

	days := h.defaultDays
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid days: not a number")
			return
		}
		days = parsed
	}
	tier := h.defaultTier
	if t := r.URL.Query().Get("tier"); t != "" {
		tier, err = pricing.ParseTier(t)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	dump, err := h.decoder.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var agg resource.Aggregation
	if mode == "capacity" {
		agg, err = h.aggregator.Capacity(dump.Nodes)
	} else {
		agg, err = h.aggregator.Aggregate(dump.Pods, dump.Claims)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.AggregationsTotal.WithLabelValues(string(h.aggregator.Policy())).Inc()
	metrics.SkippedFieldsTotal.Add(float64(agg.Skipped))

	breakdown, err := h.estimator.Estimate(agg.Totals, tier, days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.EstimatesTotal.WithLabelValues(string(tier)).Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mode":          mode,
		"totals":        agg.Totals,
		"skippedFields": agg.Skipped,
		"breakdown":     breakdown,
		"inventory": map[string]int{
			"pods":    len(dump.Pods),
			"claims":  len(dump.Claims),
			"nodes":   len(dump.Nodes),
			"unknown": dump.Unknown,
		},
	})
}

func (h *EstimateHandler) resolvePeriod(tierField string, daysField int) (pricing.Tier, int, error) {
	tier := h.defaultTier
	if tierField != "" {
		parsed, err := pricing.ParseTier(tierField)
		if err != nil {
			return "", 0, err
		}
		tier = parsed
	}
	days := daysField
	if days == 0 {
		days = h.defaultDays
	}
	return tier, days, nil
}
