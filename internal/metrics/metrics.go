// Package metrics holds the portal's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route", "status"},
	)

	// outcome: hit, fetched, loading, failed
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leflow_query_cache_lookups_total",
			Help: "Query cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	BackendFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leflow_backend_fetch_duration_seconds",
			Help:    "Duration of resource fetches issued by the query cache",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"resource", "result"},
	)

	// result: ok, invalid, rejected
	MutationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leflow_mutations_total",
			Help: "Mutations by name and result",
		},
		[]string{"mutation", "result"},
	)

	ImageBatchItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leflow_image_batch_items_total",
			Help: "Processed image batch items by preset and result",
		},
		[]string{"preset", "result"},
	)
)

// RecordHTTPRequest observes one served request
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, statusClass(status)).Observe(d.Seconds())
}

// RecordFetch observes one backend fetch
func RecordFetch(resource string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BackendFetchDuration.WithLabelValues(resource, result).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
