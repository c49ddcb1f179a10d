package interact

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ritzau/graphview/pkg/canvas"
	"github.com/ritzau/graphview/pkg/metrics"
	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ps      *sim.ParticleSystem
	surface *canvas.Recorder
	ctl     *Controller
	changes []Change
}

func newFixture(t *testing.T, opts Options, ids ...string) *fixture {
	t.Helper()
	f := &fixture{
		ps:      sim.NewParticleSystem(sim.DefaultParams()),
		surface: canvas.NewRecorder(800, 600),
	}
	f.ps.ScreenSize(800, 600)
	f.ps.ScreenPadding(80)

	var prev *model.Node
	for _, id := range ids {
		n := f.ps.AddNode(id, model.NodeData{})
		if prev != nil {
			f.ps.AddEdge(prev.ID, n, model.EdgeData{})
		}
		prev = n
	}
	f.ps.Step()

	opts.OnChange = func(c Change) { f.changes = append(f.changes, c) }
	f.ctl = NewController(f.ps, f.surface, opts)
	return f
}

// screenOf returns where a node is drawn, in page coordinates
func (f *fixture) screenOf(t *testing.T, id string) model.Point {
	t.Helper()
	n, ok := f.ps.GetNode(id)
	require.True(t, ok)
	return f.ps.ToScreen(n.Pos).Add(f.surface.Offset())
}

func ev(kind Kind, at model.Point, target Target) PointerEvent {
	return PointerEvent{Kind: kind, Page: at, Target: target}
}

func TestDragScenario(t *testing.T) {
	f := newFixture(t, Options{}, "a", "b", "c")
	f.surface.SetOffset(model.Point{X: 30, Y: 40})
	a, _ := f.ps.GetNode("a")

	at := f.screenOf(t, "a")
	require.True(t, f.ctl.Handle(ev(Down, at, TargetSurface)))
	assert.True(t, a.Fixed)
	session, ok := f.ctl.Session()
	require.True(t, ok)
	assert.Same(t, a, session.Node)

	move, up := f.ctl.Listening()
	assert.True(t, move)
	assert.True(t, up)

	to := model.Point{X: 200, Y: 250}
	require.True(t, f.ctl.Handle(ev(Move, to, TargetSurface)))
	want := f.ps.FromScreen(to.Sub(model.Point{X: 30, Y: 40}))
	assert.InDelta(t, want.X, a.Pos.X, 1e-9)
	assert.InDelta(t, want.Y, a.Pos.Y, 1e-9)

	require.True(t, f.ctl.Handle(ev(Up, to, TargetWindow)))
	assert.False(t, a.Fixed)
	assert.Equal(t, float64(ReleaseMass), a.TempMass)
	_, ok = f.ctl.Session()
	assert.False(t, ok)

	move, up = f.ctl.Listening()
	assert.False(t, move)
	assert.False(t, up)

	kinds := make([]ChangeKind, 0, len(f.changes))
	for _, c := range f.changes {
		kinds = append(kinds, c.Kind)
		assert.Equal(t, "a", c.NodeID)
		assert.Equal(t, session.ID, c.SessionID)
	}
	assert.Equal(t, []ChangeKind{DragStart, DragMove, DragEnd}, kinds)
}

func TestFixedNodeSurvivesSteps(t *testing.T) {
	f := newFixture(t, Options{}, "a", "b", "c")
	a, _ := f.ps.GetNode("a")

	f.ctl.Handle(ev(Down, f.screenOf(t, "a"), TargetSurface))
	f.ctl.Handle(ev(Move, model.Point{X: 400, Y: 300}, TargetSurface))
	held := a.Pos

	for i := 0; i < 10; i++ {
		f.ps.Step()
	}
	assert.Equal(t, held, a.Pos)
}

func TestDraggedNodePullsNeighbour(t *testing.T) {
	f := newFixture(t, Options{}, "a", "b")
	a, _ := f.ps.GetNode("a")
	b, _ := f.ps.GetNode("b")

	f.ctl.Handle(ev(Down, f.screenOf(t, "a"), TargetSurface))
	f.ctl.Handle(ev(Move, model.Point{X: 5000, Y: 4000}, TargetSurface))
	far := math.Hypot(b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y)

	for i := 0; i < 5; i++ {
		f.ps.Step()
	}
	assert.Less(t, math.Hypot(b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y), far)
}

func TestReleaseWithoutSession(t *testing.T) {
	f := newFixture(t, Options{}, "a")

	assert.NotPanics(t, func() {
		assert.False(t, f.ctl.Handle(ev(Up, model.Point{}, TargetWindow)))
		assert.False(t, f.ctl.Dropped())
	})
	a, _ := f.ps.GetNode("a")
	assert.Zero(t, a.TempMass)
	assert.Empty(t, f.changes)
}

func TestMoveWhileIdleIsIgnored(t *testing.T) {
	f := newFixture(t, Options{}, "a", "b")
	a, _ := f.ps.GetNode("a")
	before := a.Pos

	assert.False(t, f.ctl.Handle(ev(Move, model.Point{X: 10, Y: 10}, TargetSurface)))
	assert.Equal(t, before, a.Pos)
}

func TestMoveAfterReleaseIsIgnored(t *testing.T) {
	f := newFixture(t, Options{}, "a", "b")
	a, _ := f.ps.GetNode("a")

	f.ctl.Handle(ev(Down, f.screenOf(t, "a"), TargetSurface))
	f.ctl.Handle(ev(Up, model.Point{}, TargetWindow))
	released := a.Pos

	assert.False(t, f.ctl.Handle(ev(Move, model.Point{X: 10, Y: 10}, TargetSurface)))
	assert.Equal(t, released, a.Pos)
}

func TestEventTargets(t *testing.T) {
	tests := []struct {
		name   string
		events []PointerEvent
		want   []bool
	}{
		{
			name:   "press outside the surface",
			events: []PointerEvent{{Kind: Down, Target: TargetWindow}},
			want:   []bool{false},
		},
		{
			name: "move outside the surface is not seen",
			events: []PointerEvent{
				{Kind: Down, Target: TargetSurface},
				{Kind: Move, Page: model.Point{X: 5, Y: 5}, Target: TargetWindow},
			},
			want: []bool{true, false},
		},
		{
			name: "release anywhere ends the drag",
			events: []PointerEvent{
				{Kind: Down, Target: TargetSurface},
				{Kind: Up, Target: TargetSurface},
			},
			want: []bool{true, true},
		},
		{
			name:   "unknown kind",
			events: []PointerEvent{{Kind: "wheel", Target: TargetSurface}},
			want:   []bool{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{}, "a")
			for i, e := range tt.events {
				assert.Equal(t, tt.want[i], f.ctl.Handle(e), "event %d", i)
			}
		})
	}
}

func TestSecondPressIsIgnored(t *testing.T) {
	f := newFixture(t, Options{}, "a", "b", "c")
	a, _ := f.ps.GetNode("a")
	b, _ := f.ps.GetNode("b")

	require.True(t, f.ctl.Handle(ev(Down, f.screenOf(t, "a"), TargetSurface)))
	assert.False(t, f.ctl.Handle(ev(Down, f.screenOf(t, "b"), TargetSurface)))

	assert.True(t, a.Fixed)
	assert.False(t, b.Fixed)
	session, _ := f.ctl.Session()
	assert.Same(t, a, session.Node)
}

func TestPressOnEmptyGraph(t *testing.T) {
	f := newFixture(t, Options{})

	assert.False(t, f.ctl.Handle(ev(Down, model.Point{X: 10, Y: 10}, TargetSurface)))
	move, up := f.ctl.Listening()
	assert.False(t, move)
	assert.False(t, up)
	_, ok := f.ctl.Session()
	assert.False(t, ok)
}

func TestMaxGrabDistance(t *testing.T) {
	f := newFixture(t, Options{MaxGrabDistance: 20}, "a")
	at := f.screenOf(t, "a")

	assert.False(t, f.ctl.Handle(ev(Down, at.Add(model.Point{X: 100}), TargetSurface)))
	assert.True(t, f.ctl.Handle(ev(Down, at.Add(model.Point{X: 5}), TargetSurface)))
}

func TestNoGrabLimitByDefault(t *testing.T) {
	f := newFixture(t, Options{}, "a")

	assert.True(t, f.ctl.Handle(ev(Down, model.Point{X: -1e4, Y: 1e4}, TargetSurface)))
}

func TestCancel(t *testing.T) {
	f := newFixture(t, Options{}, "a", "b")
	a, _ := f.ps.GetNode("a")

	f.ctl.Cancel()
	f.ctl.Handle(ev(Down, f.screenOf(t, "a"), TargetSurface))
	f.ctl.Cancel()

	assert.False(t, a.Fixed)
	assert.Zero(t, a.TempMass)
	_, ok := f.ctl.Session()
	assert.False(t, ok)
}

func TestControllerMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	f := newFixture(t, Options{Metrics: reg}, "a")

	f.ctl.Handle(ev(Down, f.screenOf(t, "a"), TargetSurface))
	f.ctl.Handle(ev(Move, model.Point{X: 1, Y: 1}, TargetSurface))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.DragActive))
	f.ctl.Handle(ev(Up, model.Point{}, TargetWindow))

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.DragSessionsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(reg.DragActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.PointerEventsTotal.WithLabelValues("move")))
}
