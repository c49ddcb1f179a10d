// Package metrics exposes Prometheus metrics for the viewer.
//
// Every Record method accepts a nil receiver so callers can run without
// metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordFrame records one redraw and its duration
func (r *Registry) RecordFrame(duration time.Duration) {
	if r == nil {
		return
	}
	r.FramesTotal.Inc()
	r.RedrawSeconds.Observe(duration.Seconds())
}

// RecordPointerEvent counts a pointer event of the given kind
func (r *Registry) RecordPointerEvent(kind string) {
	if r == nil {
		return
	}
	r.PointerEventsTotal.WithLabelValues(kind).Inc()
}

// RecordDrag tracks drag sessions. active is true on grab, false on release.
func (r *Registry) RecordDrag(active bool) {
	if r == nil {
		return
	}
	if active {
		r.DragSessionsTotal.Inc()
		r.DragActive.Set(1)
	} else {
		r.DragActive.Set(0)
	}
}

// UpdateGraphSize sets the node and edge gauges
func (r *Registry) UpdateGraphSize(nodes, edges int) {
	if r == nil {
		return
	}
	r.Nodes.Set(float64(nodes))
	r.Edges.Set(float64(edges))
}

// RecordDroppedLinks adds to the dropped link counter
func (r *Registry) RecordDroppedLinks(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.LinksDroppedTotal.Add(float64(n))
}

// RecordStep counts one layout step
func (r *Registry) RecordStep() {
	if r == nil {
		return
	}
	r.SimStepsTotal.Inc()
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
