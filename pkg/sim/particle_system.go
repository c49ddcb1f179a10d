package sim

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// moveEpsilon is the displacement below which a node counts as settled.
const moveEpsilon = 1e-6

// ParticleSystem implements Port with an Eades force layout over gonum's
// Barnes-Hut plane. Forces are computed from Node.Pos each step, so a node
// held by the pointer pulls its neighbours. Fixed nodes are never moved and
// heavy nodes only take Mass/TempMass of their displacement.
//
// ParticleSystem is not safe for concurrent use. The dispatcher owns it.
type ParticleSystem struct {
	params Params
	rng    *rand.Rand

	ids    map[string]int64
	nodes  map[int64]*model.Node
	order  []*model.Node
	edges  []*model.Edge
	nextID int64

	budget int
	screen screen
}

var _ Port = (*ParticleSystem)(nil)
var _ Stepper = (*ParticleSystem)(nil)

// NewParticleSystem creates an empty system
func NewParticleSystem(params Params) *ParticleSystem {
	ps := &ParticleSystem{
		params: params,
		rng:    rand.New(rand.NewPCG(params.Seed, params.Seed^0x9e3779b97f4a7c15)),
		ids:    make(map[string]int64),
		nodes:  make(map[int64]*model.Node),
		screen: newScreen(),
	}
	ps.Restart()
	return ps
}

// Restart gives the layout a fresh update budget. Positions are kept.
func (ps *ParticleSystem) Restart() {
	ps.budget = ps.params.Updates
}

// ScreenSize sets the screen dimensions in pixels
func (ps *ParticleSystem) ScreenSize(width, height float64) {
	ps.screen.width = width
	ps.screen.height = height
}

// ScreenPadding sets the blank margin kept on every side of the screen
func (ps *ParticleSystem) ScreenPadding(px float64) {
	ps.screen.padding = px
}

// ToScreen maps a simulation point to screen space
func (ps *ParticleSystem) ToScreen(pt model.Point) model.Point {
	return ps.screen.toScreen(pt)
}

// FromScreen maps a screen point to simulation space
func (ps *ParticleSystem) FromScreen(pt model.Point) model.Point {
	return ps.screen.fromScreen(pt)
}

// EachNode calls fn for every node in insertion order
func (ps *ParticleSystem) EachNode(fn func(n *model.Node, pt model.Point)) {
	for _, n := range ps.order {
		fn(n, ps.screen.toScreen(n.Pos))
	}
}

// EachEdge calls fn for every edge in insertion order
func (ps *ParticleSystem) EachEdge(fn func(e *model.Edge, p1, p2 model.Point)) {
	for _, e := range ps.edges {
		fn(e, ps.screen.toScreen(e.Source.Pos), ps.screen.toScreen(e.Target.Pos))
	}
}

// Nearest returns the node closest to a screen point
func (ps *ParticleSystem) Nearest(pt model.Point) (Nearest, bool) {
	points := make(screenNodes, 0, len(ps.order))
	for _, n := range ps.order {
		points = append(points, screenNode{pt: ps.screen.toScreen(n.Pos), node: n})
	}
	return nearestOnScreen(points, pt)
}

// AddNode adds a node, or merges data into the existing node with that id
func (ps *ParticleSystem) AddNode(id string, data model.NodeData) *model.Node {
	if gid, exists := ps.ids[id]; exists {
		n := ps.nodes[gid]
		n.Data = n.Data.Merge(data)
		return n
	}

	gid := ps.nextID
	ps.nextID++

	n := &model.Node{
		ID:   id,
		Mass: 1,
		Pos:  ps.placement(),
		Data: data,
	}
	ps.ids[id] = gid
	ps.nodes[gid] = n
	ps.order = append(ps.order, n)

	if len(ps.order) == 1 {
		ps.screen.fit(ps.order)
	}
	ps.Restart()

	logging.Trace("node added", "node", id)
	return n
}

// placement picks a start position inside the current bounds
func (ps *ParticleSystem) placement() model.Point {
	lo, hi := ps.screen.lo, ps.screen.hi
	return model.Point{
		X: lo.X + ps.rng.Float64()*(hi.X-lo.X),
		Y: lo.Y + ps.rng.Float64()*(hi.Y-lo.Y),
	}
}

// GetNode looks a node up by id
func (ps *ParticleSystem) GetNode(id string) (*model.Node, bool) {
	gid, exists := ps.ids[id]
	if !exists {
		return nil, false
	}
	return ps.nodes[gid], true
}

// AddEdge connects sourceID to target. An unknown source id creates the
// node. Adding an edge that already exists updates its data.
func (ps *ParticleSystem) AddEdge(sourceID string, target *model.Node, data model.EdgeData) *model.Edge {
	if target == nil {
		return nil
	}
	if _, known := ps.GetNode(target.ID); !known {
		return nil
	}

	source, exists := ps.GetNode(sourceID)
	if !exists {
		source = ps.AddNode(sourceID, model.NodeData{})
	}

	length := data.Length
	if length <= 0 {
		length = 1
	}

	for _, e := range ps.edges {
		if e.Source == source && e.Target == target {
			e.Data = data
			e.Length = length
			return e
		}
	}

	e := &model.Edge{Source: source, Target: target, Length: length, Data: data}
	ps.edges = append(ps.edges, e)
	ps.Restart()

	return e
}

// PruneNode removes a node and every edge touching it
func (ps *ParticleSystem) PruneNode(id string) {
	gid, exists := ps.ids[id]
	if !exists {
		return
	}
	n := ps.nodes[gid]

	edges := ps.edges[:0]
	for _, e := range ps.edges {
		if e.Source != n && e.Target != n {
			edges = append(edges, e)
		}
	}
	ps.edges = edges

	for i, other := range ps.order {
		if other == n {
			ps.order = append(ps.order[:i], ps.order[i+1:]...)
			break
		}
	}

	delete(ps.ids, id)
	delete(ps.nodes, gid)
	ps.Restart()

	logging.Trace("node pruned", "node", id)
}

// PruneEdge removes one edge. A reverse edge keeps its own spring.
func (ps *ParticleSystem) PruneEdge(e *model.Edge) {
	i := slices.Index(ps.edges, e)
	if i < 0 {
		return
	}
	ps.edges = slices.Delete(ps.edges, i, i+1)
	ps.Restart()
}

// Nodes returns the nodes in insertion order
func (ps *ParticleSystem) Nodes() []*model.Node {
	return append([]*model.Node(nil), ps.order...)
}

// Edges returns the edges in insertion order
func (ps *ParticleSystem) Edges() []*model.Edge {
	return append([]*model.Edge(nil), ps.edges...)
}

// Step runs one layout update and refits the screen bounds.
// It keeps the layout alive while a node is held or still heavy.
func (ps *ParticleSystem) Step() bool {
	if len(ps.order) == 0 {
		return false
	}

	busy := slices.ContainsFunc(ps.order, func(n *model.Node) bool {
		return n.Fixed || n.TempMass > n.Mass
	})
	if busy && ps.budget < 1 {
		ps.budget = 1
	}
	if ps.budget < 1 {
		return false
	}
	ps.budget--

	moved := false
	for n, f := range eadesForces(ps.order, ps.edges, ps.params) {
		if ps.move(n, r2.Scale(ps.params.Rate, f)) {
			moved = true
		}
	}

	for _, n := range ps.order {
		if n.TempMass <= n.Mass {
			continue
		}
		n.TempMass *= ps.params.TempMassDecay
		if n.TempMass <= n.Mass {
			n.TempMass = 0
		}
	}

	ps.screen.fit(ps.order)
	return moved
}

// move displaces a free node, scaled down by its temporary mass, and
// reports whether it moved noticeably
func (ps *ParticleSystem) move(n *model.Node, by r2.Vec) bool {
	if n.Fixed || math.IsNaN(by.X) || math.IsNaN(by.Y) || math.IsInf(by.X, 0) || math.IsInf(by.Y, 0) {
		return false
	}
	if m := n.EffectiveMass(); m > 0 && n.Mass > 0 {
		by = r2.Scale(n.Mass/m, by)
	}
	n.Pos = point(r2.Add(vec(n.Pos), by))
	return math.Abs(by.X) > moveEpsilon || math.Abs(by.Y) > moveEpsilon
}
