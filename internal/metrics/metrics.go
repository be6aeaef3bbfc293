// Package metrics defines the Prometheus collectors exported on /metrics.
// Collectors are registered with the default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agenda"

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - route: the matched ServeMux pattern, or "unmatched"
//   - code: the response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by route and status code.",
	},
	[]string{"route", "code"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route"},
)

// EntryOperationsTotal counts entry lifecycle operations.
// Labels:
//   - op: create, update, complete or delete
//   - result: ok, denied (missing or owned by another user) or error
var EntryOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entry_operations_total",
		Help:      "Total number of entry operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: ok, rejected (bad credentials) or throttled
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
