package interact

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/ritzau/graphview/pkg/canvas"
	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/sim"
)

// step is one generated action: a pointer event or a layout step
type step struct {
	Action int
	X, Y   float64
}

func genStep() gopter.Gen {
	return gen.Struct(reflect.TypeOf(step{}), map[string]gopter.Gen{
		"Action": gen.IntRange(0, 5),
		"X":      gen.Float64Range(-100, 900),
		"Y":      gen.Float64Range(-100, 700),
	})
}

func apply(ps *sim.ParticleSystem, ctl *Controller, s step) {
	at := model.Point{X: s.X, Y: s.Y}
	switch s.Action {
	case 0:
		ctl.Handle(PointerEvent{Kind: Down, Page: at, Target: TargetSurface})
	case 1:
		ctl.Handle(PointerEvent{Kind: Move, Page: at, Target: TargetSurface})
	case 2:
		ctl.Handle(PointerEvent{Kind: Up, Page: at, Target: TargetWindow})
	case 3:
		ctl.Handle(PointerEvent{Kind: Down, Page: at, Target: TargetWindow})
	default:
		ps.Step()
	}
}

func newSystem() (*sim.ParticleSystem, *Controller) {
	ps := sim.NewParticleSystem(sim.DefaultParams())
	ps.ScreenSize(800, 600)
	ps.ScreenPadding(80)
	var prev *model.Node
	for _, id := range []string{"a", "b", "c", "d"} {
		n := ps.AddNode(id, model.NodeData{})
		if prev != nil {
			ps.AddEdge(prev.ID, n, model.EdgeData{})
		}
		prev = n
	}
	ps.Step()
	return ps, NewController(ps, canvas.NewRecorder(800, 600), Options{})
}

func TestDragInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("at most one node is fixed, and only while it is dragged", prop.ForAll(
		func(steps []step) bool {
			ps, ctl := newSystem()
			for _, s := range steps {
				apply(ps, ctl, s)

				session, dragging := ctl.Session()
				fixed := 0
				for _, n := range ps.Nodes() {
					if !n.Fixed {
						continue
					}
					fixed++
					if !dragging || n != session.Node {
						return false
					}
				}
				if fixed > 1 || dragging != (fixed == 1) {
					return false
				}

				move, up := ctl.Listening()
				if move != dragging || up != dragging {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genStep()),
	))

	properties.Property("a held node does not move between pointer moves", prop.ForAll(
		func(steps []step) bool {
			ps, ctl := newSystem()
			for _, s := range steps {
				session, dragging := ctl.Session()
				var before model.Point
				if dragging {
					before = session.Node.Pos
				}

				apply(ps, ctl, s)

				if dragging && s.Action >= 4 && session.Node.Pos != before {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genStep()),
	))

	properties.TestingRun(t)
}
