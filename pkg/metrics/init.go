package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRenderMetrics() {
	r.FramesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphview_frames_total",
			Help: "Total number of frames drawn",
		},
	)

	r.RedrawSeconds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphview_redraw_seconds",
			Help:    "Time spent drawing one frame",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
}

func (r *Registry) initInteractionMetrics() {
	r.PointerEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphview_pointer_events_total",
			Help: "Pointer events received, by kind",
		},
		[]string{"kind"},
	)

	r.DragSessionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphview_drag_sessions_total",
			Help: "Total number of drag sessions started",
		},
	)

	r.DragActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphview_drag_active",
			Help: "1 while a node is being dragged",
		},
	)
}

func (r *Registry) initGraphMetrics() {
	r.Nodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphview_nodes",
			Help: "Number of nodes in the simulation",
		},
	)

	r.Edges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphview_edges",
			Help: "Number of edges in the simulation",
		},
	)

	r.LinksDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphview_links_dropped_total",
			Help: "Links skipped by the loader because the target was unknown",
		},
	)

	r.SimStepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphview_sim_steps_total",
			Help: "Total number of layout steps",
		},
	)
}
