// Package metrics provides Prometheus metrics for the Pollfish bridge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsEmittedTotal counts events pushed by the native side, by event type.
	// Unknown event names are counted under "unknown".
	EventsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollfish",
			Subsystem: "events",
			Name:      "emitted_total",
			Help:      "Total number of events emitted by the native boundary",
		},
		[]string{"event"},
	)

	// EventsDeliveredTotal counts handler invocations, by event type.
	EventsDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollfish",
			Subsystem: "events",
			Name:      "delivered_total",
			Help:      "Total number of event deliveries to listeners",
		},
		[]string{"event"},
	)

	// ListenersActive tracks live emitter subscriptions per event type.
	ListenersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pollfish",
			Subsystem: "events",
			Name:      "listeners_active",
			Help:      "Current number of active listeners per event type",
		},
		[]string{"event"},
	)
)

var (
	// RegistryRejectedTotal counts addEventListener calls that did not register.
	RegistryRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollfish",
			Subsystem: "registry",
			Name:      "rejected_total",
			Help:      "Total number of rejected listener registrations by reason",
		},
		[]string{"reason"},
	)
)

var (
	// BridgeCallsTotal counts native boundary calls by method and status.
	BridgeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollfish",
			Subsystem: "bridge",
			Name:      "calls_total",
			Help:      "Total number of native boundary calls by method and status",
		},
		[]string{"method", "status"},
	)

	// QueryDuration measures how long native queries take to answer.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pollfish",
			Subsystem: "bridge",
			Name:      "query_duration_seconds",
			Help:      "Native query round trip duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"query"},
	)
)

// Rejection reasons for RegistryRejectedTotal.
const (
	ReasonUnknownType    = "unknown_type"
	ReasonInvalidHandler = "invalid_handler"
	ReasonDuplicate      = "duplicate"
)

// RecordBridgeCall records the outcome of a native boundary call.
func RecordBridgeCall(method string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	BridgeCallsTotal.WithLabelValues(method, status).Inc()
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
