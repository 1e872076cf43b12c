// Package metrics holds the Prometheus instruments of the service.
// promauto registers them with the default registry on package load.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ritzau/influence-graph/pkg/network"
)

// Parse outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

var (
	ParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "influence_graph_parses_total",
			Help: "Total number of CSV parses by outcome",
		},
		[]string{"outcome"},
	)

	SkippedRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "influence_graph_skipped_rows_total",
			Help: "Rows left out of the graph, by reason",
		},
		[]string{"reason"},
	)

	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "influence_graph_parse_duration_seconds",
			Help:    "Time from fetch to finished graph",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "influence_graph_nodes",
		Help: "Nodes in the current graph",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "influence_graph_edges",
		Help: "Edges in the current graph",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "influence_graph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "influence_graph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)
)

// RecordParse records a finished parse attempt. stats is nil when the parse failed.
func RecordParse(outcome string, elapsed time.Duration, stats *network.Stats) {
	ParsesTotal.WithLabelValues(outcome).Inc()
	ParseDuration.Observe(elapsed.Seconds())
	if stats == nil {
		return
	}
	for reason, n := range stats.SkippedBy() {
		SkippedRowsTotal.WithLabelValues(string(reason)).Add(float64(n))
	}
}

// SetGraphSize updates the gauges for the graph currently served.
func SetGraphSize(nodes, edges int) {
	GraphNodes.Set(float64(nodes))
	GraphEdges.Set(float64(edges))
}
