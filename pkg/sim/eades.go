package sim

import (
	"math"

	"github.com/ritzau/graphview/pkg/model"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// body is a node as seen by the Barnes-Hut plane. It is built from the
// node's current position at the start of every step, so anything written
// to Node.Pos between steps (a drag, a reload) is what the forces act on.
type body struct {
	node *model.Node
	pos  r2.Vec
}

func (b *body) Coord2() r2.Vec { return b.pos }
func (b *body) Mass() float64 { return 1 }
func vec(p model.Point) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }
func point(v r2.Vec) model.Point { return model.Point{X: v.X, Y: v.Y} }

// eadesForces computes one Eades update: inverse-square repulsion between
// every pair of nodes (Barnes-Hut approximated with theta) plus a
// logarithmic spring along every edge that rests at the edge's length.
// A pair linked in both directions gets one spring.
func eadesForces(nodes []*model.Node, edges []*model.Edge, p Params) map[*model.Node]r2.Vec {
	bodies := make([]*body, len(nodes))
	particles := make([]barneshut.Particle2, len(nodes))
	for i, n := range nodes {
		bodies[i] = &body{node: n, pos: vec(n.Pos)}
		particles[i] = bodies[i]
	}

	forces := make(map[*model.Node]r2.Vec, len(nodes))
	repel := func(b *body, f r2.Vec) {
		forces[b.node] = r2.Add(forces[b.node], r2.Scale(-p.Repulsion, f))
	}

	if plane, err := barneshut.NewPlane(particles); err == nil {
		for _, b := range bodies {
			repel(b, plane.ForceOn(b, p.Theta, barneshut.Gravity2))
		}
	} else {
		// Coincident nodes defeat the quadtree; sum the pairs directly.
		for _, b := range bodies {
			for _, o := range bodies {
				if o != b {
					repel(b, barneshut.Gravity2(b, o, 1, 1, r2.Sub(o.pos, b.pos)))
				}
			}
		}
	}

	type pair struct{ a, b *model.Node }
	sprung := make(map[pair]bool, len(edges))
	for _, e := range edges {
		if e.Source == e.Target || sprung[pair{e.Target, e.Source}] {
			continue
		}
		sprung[pair{e.Source, e.Target}] = true

		dir := r2.Sub(vec(e.Target.Pos), vec(e.Source.Pos))
		d := r2.Norm(dir)
		if d < moveEpsilon {
			continue
		}
		f := r2.Scale(math.Log(d/e.Length)/d, dir)
		forces[e.Source] = r2.Add(forces[e.Source], f)
		forces[e.Target] = r2.Sub(forces[e.Target], f)
	}

	return forces
}
