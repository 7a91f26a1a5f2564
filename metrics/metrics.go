// Package metrics exposes Prometheus instrumentation for the polling
// engine. Callers that serve /metrics get per-operation poll counts,
// sub-walk failure counts and poll latency with no extra wiring.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oltpoll_polls_total",
			Help: "Completed poll operations by operation, vendor and result.",
		},
		[]string{"op", "vendor", "result"},
	)

	subWalkFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oltpoll_subwalk_failures_total",
			Help: "Table walks that failed inside an aggregate operation and degraded to empty.",
		},
		[]string{"op", "vendor"},
	)

	pollDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oltpoll_poll_duration_seconds",
			Help:    "Wall time of poll operations.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"op", "vendor"},
	)
)

func init() {
	prometheus.MustRegister(pollsTotal, subWalkFailures, pollDuration)
}

// ObservePoll records one completed operation.
func ObservePoll(op string, vendor string, failed bool, elapsed time.Duration) {
	result := "ok"
	if failed {
		result = "error"
	}
	pollsTotal.WithLabelValues(op, vendor, result).Inc()
	pollDuration.WithLabelValues(op, vendor).Observe(elapsed.Seconds())
}

// ObserveSubWalkFailure records a degraded sub-walk inside an
// aggregate.
func ObserveSubWalkFailure(op string, vendor string) {
	subWalkFailures.WithLabelValues(op, vendor).Inc()
}
