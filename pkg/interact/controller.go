// Package interact turns pointer events into node drags.
//
// The controller is a two-state machine. In Idle it only listens for a
// press on the surface. A press near a node pins that node (Fixed) and
// installs a move listener on the surface and a release listener on the
// window. Moves write the node position directly. The release unpins the
// node, gives it a heavy temporary mass so it settles slowly, and removes
// both listeners.
package interact

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ritzau/graphview/pkg/canvas"
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/metrics"
	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/sim"
)

// ReleaseMass is the temporary mass a node gets when it is dropped
const ReleaseMass = 1000

// Options configures a Controller
type Options struct {
	// MaxGrabDistance limits how far from a node a press may land, in
	// pixels. Zero means any distance.
	MaxGrabDistance float64
	OnChange        func(Change)
	Metrics         *metrics.Registry
}

// restarter is implemented by ports whose layout can be re-armed
type restarter interface {
	Restart()
}

// Controller is the drag state machine. It is not safe for concurrent use;
// the dispatcher feeds it one event at a time.
type Controller struct {
	port    sim.Port
	surface canvas.Surface
	opts    Options
	now     func() time.Time

	session *Session

	// listener scopes installed while dragging
	moveListener bool
	upListener   bool
}

// NewController creates an idle controller. Only the press listener is
// active until a node is grabbed.
func NewController(port sim.Port, surface canvas.Surface, opts Options) *Controller {
	return &Controller{
		port:    port,
		surface: surface,
		opts:    opts,
		now:     time.Now,
	}
}

// Handle routes an event to the listener that would receive it. It reports
// whether the event was consumed.
func (c *Controller) Handle(ev PointerEvent) bool {
	c.opts.Metrics.RecordPointerEvent(string(ev.Kind))

	switch ev.Kind {
	case Down:
		if ev.Target != TargetSurface {
			return false
		}
		return c.Pressed(ev.Page)
	case Move:
		if !c.moveListener || ev.Target != TargetSurface {
			return false
		}
		return c.Dragged(ev.Page)
	case Up:
		if !c.upListener {
			return false
		}
		return c.Dropped()
	}
	return false
}

// Pressed handles a press at a page point
func (c *Controller) Pressed(page model.Point) bool {
	if c.session != nil {
		logging.Debug("press ignored, drag in progress", "node", c.session.Node.ID)
		return false
	}

	pt := c.local(page)
	near, ok := c.port.Nearest(pt)
	if !ok || near.Node == nil {
		return false
	}
	if c.opts.MaxGrabDistance > 0 && near.Distance > c.opts.MaxGrabDistance {
		logging.Trace("press too far from any node", "node", near.Node.ID, "distance", near.Distance)
		return false
	}

	near.Node.Fixed = true
	c.session = &Session{
		ID:      uuid.New(),
		Node:    near.Node,
		Pointer: pt,
		Started: c.now(),
	}
	c.moveListener = true
	c.upListener = true

	c.opts.Metrics.RecordDrag(true)
	logging.Debug("drag started", "node", near.Node.ID, "session", c.session.ID.String())
	c.notify(DragStart)
	return true
}

// Dragged moves the grabbed node to a page point
func (c *Controller) Dragged(page model.Point) bool {
	if c.session == nil || c.session.Node == nil {
		return false
	}

	pt := c.local(page)
	pos := c.port.FromScreen(pt)
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) {
		return false
	}

	c.session.Node.Pos = pos
	c.session.Pointer = pt
	c.notify(DragMove)
	return true
}

// Dropped releases the grabbed node
func (c *Controller) Dropped() bool {
	if c.session == nil || c.session.Node == nil {
		return false
	}

	n := c.session.Node
	n.Fixed = false
	n.TempMass = ReleaseMass
	if r, ok := c.port.(restarter); ok {
		r.Restart()
	}

	c.notify(DragEnd)
	logging.Debug("drag ended", "node", n.ID, "session", c.session.ID.String(),
		"durationMs", c.now().Sub(c.session.Started).Milliseconds())

	c.session = nil
	c.moveListener = false
	c.upListener = false
	c.opts.Metrics.RecordDrag(false)
	return true
}

// Cancel ends a drag whose node has left the graph. The node is unpinned
// but gets no release mass.
func (c *Controller) Cancel() {
	if c.session == nil {
		return
	}
	if c.session.Node != nil {
		c.session.Node.Fixed = false
	}
	logging.Debug("drag cancelled", "session", c.session.ID.String())
	c.session = nil
	c.moveListener = false
	c.upListener = false
	c.opts.Metrics.RecordDrag(false)
}

// Session returns the active drag, if any
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Listening reports which drag listeners are installed
func (c *Controller) Listening() (move, up bool) {
	return c.moveListener, c.upListener
}

func (c *Controller) local(page model.Point) model.Point {
	return page.Sub(c.surface.Offset())
}

func (c *Controller) notify(kind ChangeKind) {
	if c.opts.OnChange == nil {
		return
	}
	s := c.session
	c.opts.OnChange(Change{
		Kind:      kind,
		SessionID: s.ID,
		NodeID:    s.Node.ID,
		Pointer:   s.Pointer,
		Position:  s.Node.Pos,
	})
}
