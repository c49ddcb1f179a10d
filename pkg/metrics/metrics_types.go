package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the viewer
type Registry struct {
	// Render Metrics
	FramesTotal   prometheus.Counter
	RedrawSeconds prometheus.Histogram

	// Interaction Metrics
	PointerEventsTotal *prometheus.CounterVec
	DragSessionsTotal  prometheus.Counter
	DragActive         prometheus.Gauge

	// Graph Metrics
	Nodes             prometheus.Gauge
	Edges             prometheus.Gauge
	LinksDroppedTotal prometheus.Counter
	SimStepsTotal     prometheus.Counter

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initRenderMetrics()
	r.initInteractionMetrics()
	r.initGraphMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
