// Package metrics provides Prometheus metrics for the jala-match API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "jalamatch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	},
	[]string{"endpoint", "method", "status"},
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "jalamatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by endpoint, method and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint", "method", "status"},
)

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	requestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes a request's latency in seconds.
func RecordHTTPRequestDuration(endpoint, method, status string, seconds float64) {
	requestDuration.WithLabelValues(endpoint, method, status).Observe(seconds)
}
