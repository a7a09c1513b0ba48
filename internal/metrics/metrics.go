// Package metrics registers the Prometheus collectors for the data store and
// the HTTP bridge.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Data store operations by kind",
		},
		[]string{"op"},
	)

	StorePersistDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_persist_duration_seconds",
			Help:    "Time spent writing the full data store snapshot",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	StorePersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_persist_failures_total",
			Help: "Snapshot writes that failed and left memory ahead of storage",
		},
	)

	StoreKeys = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_keys",
			Help: "Number of keys currently held by the data store",
		},
	)

	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(StoreOperations)
	prometheus.MustRegister(StorePersistDuration)
	prometheus.MustRegister(StorePersistFailures)
	prometheus.MustRegister(StoreKeys)
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
}
