package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agroeye_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agroeye_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	// Query metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agroeye_queries_total",
			Help: "Total number of collection queries",
		},
		[]string{"collection", "outcome"}, // outcome: ok, invalid
	)

	QueryMatched = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agroeye_query_matched_records",
			Help:    "Number of records returned by a query",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		},
		[]string{"collection"},
	)

	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agroeye_classifications_total",
			Help: "Statuses attached to returned records",
		},
		[]string{"metric", "status"},
	)

	// Snapshot metrics
	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agroeye_snapshot_version",
			Help: "Version of the record snapshot being served",
		},
	)

	StateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agroeye_state_transitions_total",
			Help: "Mutations applied to the record snapshot",
		},
		[]string{"action", "outcome"},
	)

	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agroeye_sensor_readings_total",
			Help: "Sensor readings received from the ingest feed",
		},
		[]string{"source", "outcome"}, // outcome: applied, rejected
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agroeye_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
