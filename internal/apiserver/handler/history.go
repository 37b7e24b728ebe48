package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/costpilot/costpilot/internal/store"
)

type HistoryHandler struct {
	estimates *store.EstimateStore
}

func NewHistoryHandler(estimates *store.EstimateStore) *HistoryHandler {
	return &HistoryHandler{estimates: estimates}
}

// GetTrend returns the stored daily estimates for one entity, oldest
// first. GetTrend on the store is nil-safe, so this endpoint degrades
// to an empty trend when history is disabled.
func (h *HistoryHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}
	trend := h.estimates.GetTrend(entity, days)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entity":     entity,
		"days":       days,
		"dataPoints": trend,
	})
}

// GetAverages returns each entity's average monthly projection over the
// window, for cross-entity views of the history table.
func (h *HistoryHandler) GetAverages(w http.ResponseWriter, r *http.Request) {
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}
	end := time.Now().AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days":                   days,
		"averageMonthlyByEntity": h.estimates.GetAverageMonthlyByEntity(start, end),
	})
}
