package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of dashboard searches",
		},
		[]string{"status"},
	)

	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_stage_duration_seconds",
			Help:      "Duration of each search stage in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"}, // "embed" / "vector_search" / "lookup"
	)

	SearchHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits",
			Help:      "Number of vector search hits per query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200, 500, 1000},
		},
	)
)
