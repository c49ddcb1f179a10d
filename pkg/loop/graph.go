package loop

import (
	"context"

	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/sim"
)

// NodeView is a node as reported to API clients
type NodeView struct {
	ID       string         `json:"id"`
	Data     model.NodeData `json:"data"`
	Pos      model.Point    `json:"p"`
	Screen   model.Point    `json:"screen"`
	Mass     float64        `json:"mass"`
	TempMass float64        `json:"tempMass,omitempty"`
	Fixed    bool           `json:"fixed"`
}

// EdgeView is an edge as reported to API clients
type EdgeView struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Length float64 `json:"length"`
}

// GraphView is a point-in-time copy of the simulation
type GraphView struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// ViewOf copies the simulation state. Call it on the loop goroutine.
func ViewOf(ps *sim.ParticleSystem) GraphView {
	v := GraphView{Nodes: []NodeView{}, Edges: []EdgeView{}}
	ps.EachNode(func(n *model.Node, pt model.Point) {
		v.Nodes = append(v.Nodes, NodeView{
			ID:       n.ID,
			Data:     n.Data,
			Pos:      n.Pos,
			Screen:   pt,
			Mass:     n.Mass,
			TempMass: n.TempMass,
			Fixed:    n.Fixed,
		})
	})
	ps.EachEdge(func(e *model.Edge, _, _ model.Point) {
		v.Edges = append(v.Edges, EdgeView{Source: e.Source.ID, Target: e.Target.ID, Length: e.Length})
	})
	return v
}

// Graph returns a copy of the simulation state
func (l *Loop) Graph(ctx context.Context) (GraphView, error) {
	var v GraphView
	err := l.Do(ctx, func(ps *sim.ParticleSystem) { v = ViewOf(ps) })
	return v, err
}
