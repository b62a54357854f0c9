// Package metrics provides Prometheus metrics for HubSpot requests made by
// the handler and the bridge adapter.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace for all hubspotrun metrics
	namespace = "hubspotrun"

	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// Registry holds every hubspotrun collector. It is separate from the
	// default registry so embedding programs stay in control of theirs.
	Registry = prometheus.NewRegistry()

	// RequestsTotal counts executed fixtures
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HubSpot requests executed by the handler",
		},
		[]string{"method", "outcome"},
	)

	// RequestDuration tracks handler request latency
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of HubSpot requests in seconds, retries included",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method"},
	)

	// BridgeRequestsTotal counts bridge adapter operations
	BridgeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bridge_requests_total",
			Help:      "Total number of bridge adapter operations",
		},
		[]string{"structure", "operation", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		RequestsTotal,
		RequestDuration,
		BridgeRequestsTotal,
	)
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// ObserveRequest records one handler execution.
func ObserveRequest(method string, failed bool, d time.Duration) {
	o := OutcomeSuccess
	if failed {
		o = OutcomeError
	}
	RequestsTotal.WithLabelValues(method, o).Inc()
	RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveBridge records one bridge operation.
func ObserveBridge(structure, operation string, err error) {
	BridgeRequestsTotal.WithLabelValues(structure, operation, outcome(err)).Inc()
}

// Handler serves the hubspotrun registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
