// Package sim defines the contract between the viewer and the layout engine,
// and provides ParticleSystem, an Eades force layout computed over gonum's
// Barnes-Hut plane.
package sim

import "github.com/ritzau/graphview/pkg/model"

// Nearest is the answer to a nearest-node query.
type Nearest struct {
	Node     *model.Node
	Point    model.Point // node position in screen space
	Distance float64     // screen pixels from the query point
}

// Port is everything the renderer, the drag controller and the loader need
// from the layout engine.
type Port interface {
	// ScreenSize and ScreenPadding configure the screen mapping.
	ScreenSize(width, height float64)
	ScreenPadding(px float64)

	// EachEdge and EachNode iterate with screen points precomputed.
	EachEdge(fn func(e *model.Edge, p1, p2 model.Point))
	EachNode(fn func(n *model.Node, pt model.Point))

	// Nearest returns the node closest to a screen point. It reports false
	// when there are no nodes. There is no maximum distance.
	Nearest(pt model.Point) (Nearest, bool)

	FromScreen(pt model.Point) model.Point
	ToScreen(pt model.Point) model.Point

	AddNode(id string, data model.NodeData) *model.Node
	GetNode(id string) (*model.Node, bool)
	AddEdge(sourceID string, target *model.Node, data model.EdgeData) *model.Edge
}

// Stepper is implemented by ports that advance only when asked to.
// Step reports whether any position changed.
type Stepper interface {
	Step() bool
}
