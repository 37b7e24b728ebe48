package apiserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/costpilot/costpilot/internal/apiserver/handler"
	"github.com/costpilot/costpilot/internal/config"
	"github.com/costpilot/costpilot/internal/inventory"
	"github.com/costpilot/costpilot/internal/store"
	"github.com/costpilot/costpilot/pkg/cost"
	"github.com/costpilot/costpilot/pkg/resource"
)

// NewRouter creates the API router with all endpoints. The estimator,
// aggregator and decoder are built once from config and shared; none of
// them hold mutable state.
func NewRouter(cfg *config.Config, estimates *store.EstimateStore) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	estimator := cost.NewEstimator(cfg.Pricing.Table())
	aggregator := resource.NewAggregator(cfg.Policy(), nil)
	decoder := inventory.NewDecoder(nil)

	estimateHandler := handler.NewEstimateHandler(estimator, aggregator, decoder, estimates, cfg.Tier(), cfg.Defaults.PeriodDays)
	aggregateHandler := handler.NewAggregateHandler(aggregator)
	compareHandler := handler.NewCompareHandler(estimator, estimates, cfg.Tier(), cfg.Defaults.PeriodDays)
	pricingHandler := handler.NewPricingHandler(estimator.Table())
	wasteHandler := handler.NewWasteHandler(estimator)
	historyHandler := handler.NewHistoryHandler(estimates)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Aggregation
		r.Post("/aggregate", aggregateHandler.Aggregate)

		// Estimates
		r.Post("/estimate", estimateHandler.Estimate)
		r.Post("/estimate/inventory", estimateHandler.EstimateInventory)

		// Comparison and waste
		r.Post("/compare", compareHandler.Compare)
		r.Post("/waste", wasteHandler.Estimate)

		// Pricing
		r.Get("/pricing", pricingHandler.Get)

		// History (literal routes before parameterized to avoid conflicts)
		r.Get("/history", historyHandler.GetAverages)
		r.Get("/history/{entity}", historyHandler.GetTrend)
	})

	return r
}
