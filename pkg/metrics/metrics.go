package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global metrics, registered on the default registry through promauto.

var (
	// Requests served by the HTTP façade, by method, route and status.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsearch_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netsearch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// Calls to the search service, by endpoint and outcome (ok, error, open).
	ServiceCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsearch_service_calls_total",
			Help: "Total number of calls to the search service",
		},
		[]string{"endpoint", "outcome"},
	)

	// Search service latency. Path searches can take up to the user timeout.
	ServiceCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netsearch_service_call_duration_seconds",
			Help:    "Duration of calls to the search service in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"endpoint"},
	)

	// Submissions by outcome: ok, error, busy, blocked.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsearch_submissions_total",
			Help: "Total number of query submissions",
		},
		[]string{"outcome"},
	)

	// Result fragments dropped by shape validation, by kind.
	RejectedFragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsearch_rejected_fragments_total",
			Help: "Total number of malformed result fragments excluded from display",
		},
		[]string{"kind"},
	)

	// Share-link fields that failed to decode.
	LinkDecodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsearch_link_decode_errors_total",
			Help: "Total number of share-link fields that failed to decode",
		},
		[]string{"field"},
	)

	// Cross-reference cache lookups, by result (hit, miss).
	XrefLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsearch_xref_lookups_total",
			Help: "Total number of cross-reference lookups",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netsearch_active_sessions",
			Help: "Number of open client sessions",
		},
	)
)
