package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the API's Prometheus collectors.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SnapshotTriples prometheus.Gauge
	Reloads         *prometheus.CounterVec
	GraphNodes      *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ontoscope_http_requests_total",
				Help: "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ontoscope_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		SnapshotTriples: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ontoscope_snapshot_triples",
				Help: "Statements in the current snapshot.",
			},
		),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ontoscope_reloads_total",
				Help: "Snapshot reload attempts by result.",
			},
			[]string{"result"},
		),
		GraphNodes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ontoscope_graph_nodes",
				Help:    "Nodes per computed neighbourhood graph.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"graph"},
		),
	}

	registerer.MustRegister(
		metrics.Requests,
		metrics.RequestDuration,
		metrics.SnapshotTriples,
		metrics.Reloads,
		metrics.GraphNodes,
	)
	return metrics
}

// ObserveReload records a reload attempt and, on success, the new size.
func (m *Metrics) ObserveReload(triples int, err error) {
	if err != nil {
		m.Reloads.WithLabelValues("error").Inc()
		return
	}
	m.Reloads.WithLabelValues("ok").Inc()
	m.SnapshotTriples.Set(float64(triples))
}
