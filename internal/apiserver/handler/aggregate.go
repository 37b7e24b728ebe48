package handler

import (
	"encoding/json"
	"net/http"

	"github.com/costpilot/costpilot/internal/metrics"
	"github.com/costpilot/costpilot/pkg/resource"
)

type AggregateHandler struct {
	aggregator *resource.Aggregator
}

func NewAggregateHandler(aggregator *resource.Aggregator) *AggregateHandler {
	return &AggregateHandler{aggregator: aggregator}
}

type aggregateRequest struct {
	Pods   []resource.Pod          `json:"pods,omitempty"`
	Claims []resource.Claim        `json:"claims,omitempty"`
	Nodes  []resource.NodeCapacity `json:"nodes,omitempty"`
}

// Aggregate sums pod/claim records into totals. Sending nodes instead
// switches to capacity mode; mixing both in one request is rejected.
func (h *AggregateHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Nodes) > 0 && (len(req.Pods) > 0 || len(req.Claims) > 0) {
		writeError(w, http.StatusBadRequest, "send pods/claims or nodes, not both")
		return
	}

	var (
		agg resource.Aggregation
		err error
	)
	if len(req.Nodes) > 0 {
		agg, err = h.aggregator.Capacity(req.Nodes)
	} else {
		agg, err = h.aggregator.Aggregate(req.Pods, req.Claims)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.AggregationsTotal.WithLabelValues(string(h.aggregator.Policy())).Inc()
	metrics.SkippedFieldsTotal.Add(float64(agg.Skipped))

	writeJSON(w, http.StatusOK, agg)
}
