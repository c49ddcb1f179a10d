package loop

import (
	"github.com/ritzau/graphview/pkg/interact"
	"github.com/ritzau/graphview/pkg/model"
)

// Event is anything the loop goroutine consumes
type Event interface {
	event()
}

// FrameReady asks for a redraw
type FrameReady struct{}

// Pointer delivers a pointer event to the drag controller
type Pointer struct {
	interact.PointerEvent
}

// Resize changes the surface size and re-initializes the renderer.
// Offset is the surface's top-left corner in page coordinates.
type Resize struct {
	Width, Height int
	Offset        model.Point
}

// Reload replaces the graph with a document. A non-nil Err reports a
// failed read; the graph is left untouched.
type Reload struct {
	Source  string
	Records []model.Record
	Err     error
}

// call runs a function on the loop goroutine
type call struct {
	fn   func(l *Loop)
	done chan struct{}
}

func (FrameReady) event() {}
func (Pointer) event()    {}
func (Resize) event()     {}
func (Reload) event()     {}
func (call) event()       {}
