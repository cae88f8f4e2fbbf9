package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the server's Prometheus instruments.
type metrics struct {
	activeSessions prometheus.Gauge
	eventsTotal    *prometheus.CounterVec
	frameDuration  prometheus.Histogram
	mutationsSent  prometheus.Counter
	wsErrors       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "loom",
			Name:      "active_sessions",
			Help:      "Number of live WebSocket sessions",
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "events_total",
			Help:      "Client events processed, by event type",
		}, []string{"type"}),

		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loom",
			Name:      "frame_duration_seconds",
			Help:      "Render frame drain duration",
			Buckets:   prometheus.DefBuckets,
		}),

		mutationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "mutations_sent_total",
			Help:      "Output-tree mutations streamed to clients",
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "websocket_errors_total",
			Help:      "WebSocket errors by kind",
		}, []string{"kind"}),
	}
}
