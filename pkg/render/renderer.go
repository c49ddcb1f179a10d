// Package render paints the simulation onto a canvas surface.
package render

import (
	"image/color"
	"time"

	"github.com/ritzau/graphview/pkg/canvas"
	"github.com/ritzau/graphview/pkg/metrics"
	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/sim"
)

const (
	DefaultPadding  = 80
	DefaultNodeSize = 10
)

// EdgeColor is the stroke used for every edge
var EdgeColor = color.NRGBA{0, 0, 0, 85}

// Options controls how a Renderer draws
type Options struct {
	Padding    float64
	NodeSize   float64
	Background color.Color
	Metrics    *metrics.Registry
}

// DefaultOptions returns the standard look: 80px padding, 10px nodes, white
func DefaultOptions() Options {
	return Options{
		Padding:    DefaultPadding,
		NodeSize:   DefaultNodeSize,
		Background: color.White,
	}
}

// Renderer draws the Port's nodes and edges on a Surface.
type Renderer struct {
	surface canvas.Surface
	opts    Options
	port    sim.Port
}

// NewRenderer creates a renderer for a surface. Zero options take defaults.
func NewRenderer(surface canvas.Surface, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Padding <= 0 {
		opts.Padding = def.Padding
	}
	if opts.NodeSize <= 0 {
		opts.NodeSize = def.NodeSize
	}
	if opts.Background == nil {
		opts.Background = def.Background
	}
	return &Renderer{surface: surface, opts: opts}
}

// Init binds the renderer to a port and tells it the screen geometry.
// Call it again after the surface is resized.
func (r *Renderer) Init(port sim.Port) {
	r.port = port
	w, h := r.surface.Size()
	port.ScreenSize(float64(w), float64(h))
	port.ScreenPadding(r.opts.Padding)
}

// Surface returns the surface being drawn on
func (r *Renderer) Surface() canvas.Surface {
	return r.surface
}

// Redraw paints a full frame: background, then edges, then nodes
func (r *Renderer) Redraw() {
	start := time.Now()
	r.surface.Clear(r.opts.Background)

	if r.port != nil {
		r.port.EachEdge(func(_ *model.Edge, p1, p2 model.Point) {
			r.surface.Line(p1, p2, EdgeColor, 1)
		})
		r.port.EachNode(r.drawNode)
	}

	r.opts.Metrics.RecordFrame(time.Since(start))
}

func (r *Renderer) drawNode(n *model.Node, pt model.Point) {
	w := r.opts.NodeSize
	fill := canvas.ParseColor(n.Data.Fill())
	if n.Data.HasLabel() {
		r.surface.Text(n.Data.Label, pt.X-w/2, pt.Y-w/2, fill)
		return
	}
	r.surface.FillRect(pt.X-w/2, pt.Y-w/2, w, w, fill)
}
