package handler

import (
	"encoding/json"
	"net/http"

	"github.com/costpilot/costpilot/pkg/cost"
)

type WasteHandler struct {
	estimator *cost.Estimator
}

func NewWasteHandler(estimator *cost.Estimator) *WasteHandler {
	return &WasteHandler{estimator: estimator}
}

type wasteRequest struct {
	UnattachedDiskGB float64 `json:"unattachedDiskGB"`
	IdleIPCount      int     `json:"idleIPCount"`
}

// Estimate prices orphaned disks and idle IPs per month. Disk cost is a
// range because the disk class behind an unattached PV is unknown.
func (h *WasteHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req wasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.estimator.EstimateWaste(req.UnattachedDiskGB, req.IdleIPCount))
}
