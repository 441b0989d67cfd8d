package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "statusboard"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method, route and status code."},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by method and route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	// StoreOperations counts status store calls by operation and outcome
	// (ok, not_found, invalid, error).
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "status_store_operations_total", Help: "Status store operations by outcome."},
		[]string{"op", "outcome"},
	)
	SkippedRecords = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "status_store_skipped_records_total", Help: "Stored values skipped while listing because they could not be decoded."},
	)
)

var registerOnce sync.Once

// RegisterCollectors registers every collector once; later calls are no-ops
// so tests can build several routers against the default registry.
func RegisterCollectors(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(RateLimitAllowed, RateLimitRejected, HTTPRequests, HTTPRequestDuration, StoreOperations, SkippedRecords)
	})
}
