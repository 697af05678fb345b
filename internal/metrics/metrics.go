// Package metrics defines the Prometheus metrics emitted by the forum
// client. It is the single source of truth for metric names, labels, and
// help strings; metrics self-register with the default registry via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "forum_client"

// GatewayRequestsTotal counts requests sent through the remote gateway.
// Labels:
//   - resource: the named API resource (e.g. "create_thread")
//   - method: the HTTP verb
//   - outcome: "success" or "failure" after normalization
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of gateway requests, by resource, method and normalized outcome.",
	},
	[]string{"resource", "method", "outcome"},
)

// GatewayRequestDuration measures the wall time of a single gateway request,
// transport errors included.
// Label:
//   - resource: the named API resource
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of gateway requests from dispatch to normalized response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource"},
)

// SessionTransitionsTotal counts session store dispatches.
// Label:
//   - action: "login", "logout", "update_user" or "set_error"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session store dispatches, by action.",
	},
	[]string{"action"},
)

// StaleResponsesTotal counts remote responses discarded by the epoch guard
// because the session identity changed while the request was in flight.
var StaleResponsesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_total",
		Help:      "Total number of remote responses discarded as stale.",
	},
)
