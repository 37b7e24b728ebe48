package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Estimation metrics
	EstimatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "costpilot",
		Name:      "estimates_total",
		Help:      "Total number of cost estimates produced",
	}, []string{"tier"})

	EstimateMonthlyCostUSD = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "costpilot",
		Name:      "estimate_monthly_cost_usd",
		Help:      "Last estimated monthly cost per recorded entity in USD",
	}, []string{"entity"})

	// Aggregation metrics
	AggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "costpilot",
		Name:      "aggregations_total",
		Help:      "Total number of aggregation passes",
	}, []string{"policy"})

	SkippedFieldsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "costpilot",
		Name:      "skipped_fields_total",
		Help:      "Total unparsable quantity fields skipped under the lenient policy",
	})

	// Comparison metrics
	ComparisonsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "costpilot",
		Name:      "comparisons_total",
		Help:      "Total number of comparison rankings produced",
	})

	SkippedSegmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "costpilot",
		Name:      "skipped_segments_total",
		Help:      "Total malformed comparison segments skipped",
	})

	// Inventory metrics
	InventoryObjectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "costpilot",
		Name:      "inventory_objects_total",
		Help:      "Total Kubernetes objects decoded from inventory dumps",
	}, []string{"kind"})

	// History metrics
	HistoryCleanupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "costpilot",
		Name:      "history_cleanups_total",
		Help:      "Total retention cleanup runs against the estimate history",
	})
)
