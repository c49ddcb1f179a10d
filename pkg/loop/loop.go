// Package loop runs the viewer's single dispatcher goroutine.
//
// Every write to the simulation happens here: layout steps, node drags and
// reloads. Other goroutines (HTTP handlers, the terminal UI, the file
// watcher) only post events, so no event is ever handled while another is
// in progress.
package loop

import (
	"context"
	"errors"
	"time"

	"github.com/ritzau/graphview/pkg/canvas"
	"github.com/ritzau/graphview/pkg/interact"
	"github.com/ritzau/graphview/pkg/loader"
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/metrics"
	"github.com/ritzau/graphview/pkg/pubsub"
	"github.com/ritzau/graphview/pkg/render"
	"github.com/ritzau/graphview/pkg/sim"
)

// ErrStopped is returned when posting to a loop that has exited
var ErrStopped = errors.New("loop stopped")

const queueSize = 256

// Options configures a Loop
type Options struct {
	Width, Height int
	FPS           int
	Render        render.Options
	Interact      interact.Options
	Metrics       *metrics.Registry

	// Hooks run on the loop goroutine and must not block
	OnFrame func(canvas.Frame)
	OnDrag  func(interact.Change)
	OnGraph func(eventType string, status pubsub.GraphStatus)
}

// Loop owns the simulation, the renderer and the drag controller.
type Loop struct {
	ps       *sim.ParticleSystem
	surface  *canvas.Recorder
	renderer *render.Renderer
	ctl      *interact.Controller
	opts     Options

	events  chan Event
	stopped chan struct{}

	dirty  bool
	loaded bool
	last   canvas.Frame
}

// New creates a loop around a particle system. Nothing runs until Run.
func New(ps *sim.ParticleSystem, opts Options) *Loop {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	opts.Render.Metrics = opts.Metrics
	opts.Interact.Metrics = opts.Metrics

	surface := canvas.NewRecorder(opts.Width, opts.Height)
	l := &Loop{
		ps:       ps,
		surface:  surface,
		renderer: render.NewRenderer(surface, opts.Render),
		opts:     opts,
		events:   make(chan Event, queueSize),
		stopped:  make(chan struct{}),
	}

	opts.Interact.OnChange = func(c interact.Change) {
		if l.opts.OnDrag != nil {
			l.opts.OnDrag(c)
		}
	}
	l.ctl = interact.NewController(ps, surface, opts.Interact)
	return l
}

// Run initializes the renderer and dispatches events until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)

	l.renderer.Init(l.ps)
	l.redraw()

	ticker := time.NewTicker(time.Second / time.Duration(l.opts.FPS))
	defer ticker.Stop()

	logging.Debug("loop started", "fps", l.opts.FPS, "width", l.opts.Width, "height", l.opts.Height)
	for {
		select {
		case <-ctx.Done():
			logging.Debug("loop stopped")
			return ctx.Err()
		case <-ticker.C:
			l.tick()
		case ev := <-l.events:
			l.handle(ev)
		}
	}
}

// tick pulls one layout step and redraws when something changed
func (l *Loop) tick() {
	moved := l.ps.Step()
	l.opts.Metrics.RecordStep()
	if moved || l.dirty {
		l.handle(FrameReady{})
	}
}

func (l *Loop) handle(ev Event) {
	switch ev := ev.(type) {
	case FrameReady:
		l.redraw()
	case Pointer:
		if l.ctl.Handle(ev.PointerEvent) {
			l.dirty = true
		}
	case Resize:
		l.resize(ev)
	case Reload:
		l.reload(ev)
	case call:
		ev.fn(l)
		close(ev.done)
	}
}

func (l *Loop) redraw() {
	l.renderer.Redraw()
	l.dirty = false
	l.last = l.surface.Frame()
	if l.opts.OnFrame != nil {
		l.opts.OnFrame(l.last)
	}
}

func (l *Loop) resize(ev Resize) {
	if ev.Width <= 0 || ev.Height <= 0 {
		logging.Warn("ignoring resize", "width", ev.Width, "height", ev.Height)
		return
	}
	l.surface.Resize(ev.Width, ev.Height)
	l.surface.SetOffset(ev.Offset)
	l.renderer.Init(l.ps)
	l.redraw()
}

func (l *Loop) reload(ev Reload) {
	status := pubsub.GraphStatus{Source: ev.Source}
	if ev.Err != nil {
		status.Error = ev.Err.Error()
		logging.Warn("graph document not loaded", "source", ev.Source, "error", ev.Err)
		l.notifyGraph("error", status)
		return
	}

	res := loader.Sync(l.ps, ev.Records)

	if s, dragging := l.ctl.Session(); dragging {
		if n, ok := l.ps.GetNode(s.Node.ID); !ok || n != s.Node {
			l.ctl.Cancel()
		}
	}

	nodes, edges := len(l.ps.Nodes()), len(l.ps.Edges())
	l.opts.Metrics.UpdateGraphSize(nodes, edges)
	l.opts.Metrics.RecordDroppedLinks(len(res.Dropped))

	status.Nodes = nodes
	status.Edges = edges
	status.Dropped = len(res.Dropped)
	status.Pruned = res.Pruned

	kind := "reloaded"
	if !l.loaded {
		kind = "loaded"
		l.loaded = true
	}
	logging.Info("graph "+kind, "source", ev.Source, "nodes", nodes, "edges", edges,
		"dropped", status.Dropped, "pruned", status.Pruned)
	l.notifyGraph(kind, status)
	l.redraw()
}

func (l *Loop) notifyGraph(kind string, status pubsub.GraphStatus) {
	if l.opts.OnGraph != nil {
		l.opts.OnGraph(kind, status)
	}
}

// Post queues an event for the loop goroutine
func (l *Loop) Post(ctx context.Context, ev Event) error {
	select {
	case l.events <- ev:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn against the particle system on the loop goroutine and waits
// for it to finish
func (l *Loop) Do(ctx context.Context, fn func(ps *sim.ParticleSystem)) error {
	return l.do(ctx, func(l *Loop) { fn(l.ps) })
}

func (l *Loop) do(ctx context.Context, fn func(l *Loop)) error {
	c := call{fn: fn, done: make(chan struct{})}
	if err := l.Post(ctx, c); err != nil {
		return err
	}
	select {
	case <-c.done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the most recently drawn frame
func (l *Loop) Snapshot(ctx context.Context) (canvas.Frame, error) {
	var f canvas.Frame
	err := l.do(ctx, func(l *Loop) {
		f = l.last
		f.Ops = append([]canvas.Op(nil), l.last.Ops...)
	})
	return f, err
}

// Session returns the active drag session, if any
func (l *Loop) Session(ctx context.Context) (interact.Session, bool, error) {
	var (
		s  interact.Session
		ok bool
	)
	err := l.do(ctx, func(l *Loop) { s, ok = l.ctl.Session() })
	return s, ok, err
}
