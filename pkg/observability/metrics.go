// Package observability exposes prometheus instrumentation for the
// canvas core. The registry is injected so embedders decide whether and
// how metrics get exported; nothing here opens a network surface.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the core updates.
type Metrics struct {
	NodesOnCanvas prometheus.Gauge
	UndoDepth     prometheus.Gauge

	HistoryPushes   prometheus.Counter
	UndoOperations  prometheus.Counter
	RedoOperations  prometheus.Counter
	EdgesCreated    prometheus.Counter
	EdgesRejected   prometheus.Counter
	GesturesStarted *prometheus.CounterVec

	GenerationsDispatched prometheus.Counter
	GenerationsSucceeded  prometheus.Counter
	GenerationsFailed     prometheus.Counter
	GenerationDuration    prometheus.Histogram
}

// NewMetrics creates and registers the collectors on the given
// registerer. Pass prometheus.NewRegistry() in tests to keep them
// isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodesOnCanvas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "twitcanva",
			Name:      "nodes_on_canvas",
			Help:      "Current number of nodes on the canvas.",
		}),
		UndoDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "twitcanva",
			Name:      "undo_depth",
			Help:      "Current depth of the undo stack.",
		}),
		HistoryPushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "twitcanva",
			Name:      "history_pushes_total",
			Help:      "Snapshots pushed onto the history stack.",
		}),
		UndoOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "twitcanva",
			Name:      "undo_total",
			Help:      "Undo operations applied.",
		}),
		RedoOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "twitcanva",
			Name:      "redo_total",
			Help:      "Redo operations applied.",
		}),
		EdgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "twitcanva",
			Name:      "edges_created_total",
			Help:      "Parent links committed by connection drags.",
		}),
		EdgesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "twitcanva",
			Name:      "edges_rejected_total",
			Help:      "Connection attempts rejected by the legality rules.",
		}),
		GesturesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "twitcanva",
			Name:      "gestures_started_total",
			Help:      "Pointer gestures started, by kind.",
		}, []string{"kind"}),
		GenerationsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "twitcanva",
			Name:      "generations_dispatched_total",
			Help:      "Generation requests dispatched to the provider.",
		}),
		GenerationsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "twitcanva",
			Name:      "generations_succeeded_total",
			Help:      "Generation requests that completed successfully.",
		}),
		GenerationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "twitcanva",
			Name:      "generations_failed_total",
			Help:      "Generation requests that failed.",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "twitcanva",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of generation requests.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.NodesOnCanvas,
			m.UndoDepth,
			m.HistoryPushes,
			m.UndoOperations,
			m.RedoOperations,
			m.EdgesCreated,
			m.EdgesRejected,
			m.GesturesStarted,
			m.GenerationsDispatched,
			m.GenerationsSucceeded,
			m.GenerationsFailed,
			m.GenerationDuration,
		)
	}

	return m
}

// NopMetrics returns unregistered collectors, for callers that do not
// care about instrumentation.
func NopMetrics() *Metrics {
	return NewMetrics(nil)
}
