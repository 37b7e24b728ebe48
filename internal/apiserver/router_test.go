package apiserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/costpilot/costpilot/internal/config"
	"github.com/costpilot/costpilot/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := store.Open(store.Config{
		Path:          filepath.Join(t.TempDir(), "costpilot.db"),
		RetentionDays: 30,
	})
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewRouter(config.DefaultConfig(), store.NewEstimateStore(db.RawDB(), nil))
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("healthz returned %d, expected %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "ok" {
		t.Errorf("healthz body is %q, expected %q", w.Body.String(), "ok")
	}
}

func TestRouter_EstimateRecordThenHistory(t *testing.T) {
	router := newTestRouter(t)

	body := `{"totals":{"cpuCores":2,"memoryGB":8,"storageGB":50,"podCount":4},"record":true,"entity":"team-a"}`
	req := httptest.NewRequest("POST", "/api/v1/estimate", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("estimate returned %d, expected %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/v1/history/team-a", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("history returned %d, expected %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var trend struct {
		Entity     string                 `json:"entity"`
		DataPoints []store.EstimateRecord `json:"dataPoints"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &trend); err != nil {
		t.Fatalf("decoding history response: %v", err)
	}
	if trend.Entity != "team-a" {
		t.Errorf("entity = %q, want %q", trend.Entity, "team-a")
	}
	if len(trend.DataPoints) != 1 {
		t.Fatalf("dataPoints = %d, want 1", len(trend.DataPoints))
	}
	if trend.DataPoints[0].Entity != "team-a" {
		t.Errorf("recorded entity = %q, want %q", trend.DataPoints[0].Entity, "team-a")
	}

	req = httptest.NewRequest("GET", "/api/v1/history?days=7", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("history averages returned %d, expected %d", w.Code, http.StatusOK)
	}
	var averages struct {
		Days     int                `json:"days"`
		ByEntity map[string]float64 `json:"averageMonthlyByEntity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &averages); err != nil {
		t.Fatalf("decoding averages response: %v", err)
	}
	if _, ok := averages.ByEntity["team-a"]; !ok {
		t.Errorf("averages missing entity team-a: %v", averages.ByEntity)
	}
}

func TestRouter_PricingRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/pricing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("pricing returned %d, expected %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "cpuPerCoreHourUSD") {
		t.Errorf("pricing body missing rate fields: %s", w.Body.String())
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("metrics returned %d, expected %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "costpilot_") {
		t.Error("metrics output missing costpilot namespace")
	}
}
