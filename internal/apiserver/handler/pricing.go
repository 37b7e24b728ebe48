package handler

import (
	"net/http"

	"github.com/costpilot/costpilot/pkg/pricing"
)

type PricingHandler struct {
	table *pricing.Table
}

func NewPricingHandler(table *pricing.Table) *PricingHandler {
	return &PricingHandler{table: table}
}

// Get returns the effective rate table, defaults merged with config.
func (h *PricingHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.table.Snapshot())
}
