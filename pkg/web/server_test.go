package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ritzau/graphview/pkg/canvas"
	"github.com/ritzau/graphview/pkg/interact"
	"github.com/ritzau/graphview/pkg/loop"
	"github.com/ritzau/graphview/pkg/metrics"
	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/pubsub"
	"github.com/ritzau/graphview/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoop struct {
	mu     sync.Mutex
	posted []loop.Event
	frame  canvas.Frame
	view   loop.GraphView
	err    error
}

func (f *fakeLoop) Post(_ context.Context, ev loop.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.posted = append(f.posted, ev)
	return nil
}

func (f *fakeLoop) Snapshot(context.Context) (canvas.Frame, error) {
	return f.frame, f.err
}

func (f *fakeLoop) Graph(context.Context) (loop.GraphView, error) {
	return f.view, f.err
}

func testFrame() canvas.Frame {
	rec := canvas.NewRecorder(40, 30)
	rec.Clear(canvas.ParseColor("white"))
	rec.Line(model.Point{X: 5, Y: 5}, model.Point{X: 35, Y: 25}, canvas.ParseColor("black"), 1)
	rec.FillRect(10, 10, 10, 10, canvas.ParseColor("red"))
	return rec.Frame()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPointerEndpoint(t *testing.T) {
	fl := &fakeLoop{}
	h := NewServer(fl, nil, nil).Handler()

	w := do(t, h, "POST", "/api/pointer", `{"kind":"down","x":12.5,"y":40,"target":"surface"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = do(t, h, "POST", "/api/pointer", `{"kind":"up","x":1,"y":2}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, fl.posted, 2)
	assert.Equal(t, loop.Pointer{PointerEvent: interact.PointerEvent{
		Kind:   interact.Down,
		Page:   model.Point{X: 12.5, Y: 40},
		Target: interact.TargetSurface,
	}}, fl.posted[0])
	assert.Equal(t, interact.TargetSurface, fl.posted[1].(loop.Pointer).Target, "target defaults to surface")
}

func TestPointerEndpointKeepsClientOrder(t *testing.T) {
	fl := &fakeLoop{}
	h := NewServer(fl, nil, nil).Handler()

	// The release overtook its press on another connection.
	w := do(t, h, "POST", "/api/pointer", `{"kind":"up","x":5,"y":5,"target":"window","client":"tab1","seq":2}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	w = do(t, h, "POST", "/api/pointer", `{"kind":"down","x":5,"y":5,"client":"tab1","seq":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Other clients and unnumbered events are unaffected.
	w = do(t, h, "POST", "/api/pointer", `{"kind":"down","x":5,"y":5,"client":"tab2","seq":1}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	w = do(t, h, "POST", "/api/pointer", `{"kind":"move","x":6,"y":6}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, fl.posted, 3)
	assert.Equal(t, interact.Up, fl.posted[0].(loop.Pointer).Kind)
	assert.Equal(t, interact.Down, fl.posted[1].(loop.Pointer).Kind)
	assert.Equal(t, interact.Move, fl.posted[2].(loop.Pointer).Kind)
}

func TestSequencerDoesNotAdvanceOnFailedPost(t *testing.T) {
	q := newSequencer()

	posted, err := q.admit("c", 1, func() error { return loop.ErrStopped })
	assert.True(t, posted)
	assert.ErrorIs(t, err, loop.ErrStopped)

	posted, err = q.admit("c", 1, func() error { return nil })
	assert.True(t, posted)
	assert.NoError(t, err)

	posted, err = q.admit("c", 1, func() error { t.Error("duplicate posted"); return nil })
	assert.False(t, posted)
	assert.NoError(t, err)
}

func TestPointerEndpointRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown kind", `{"kind":"wheel","x":1,"y":1}`},
		{"missing kind", `{"x":1,"y":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := &fakeLoop{}
			w := do(t, NewServer(fl, nil, nil).Handler(), "POST", "/api/pointer", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, fl.posted)
		})
	}
}

func TestStoppedLoop(t *testing.T) {
	fl := &fakeLoop{err: loop.ErrStopped}
	h := NewServer(fl, nil, nil).Handler()

	for _, path := range []string{"/api/graph", "/api/frame", "/api/snapshot.png", "/api/snapshot.svg"} {
		w := do(t, h, "GET", path, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
	w := do(t, h, "POST", "/api/pointer", `{"kind":"move","x":1,"y":1}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResizeEndpoint(t *testing.T) {
	fl := &fakeLoop{}
	h := NewServer(fl, nil, nil).Handler()

	w := do(t, h, "POST", "/api/resize", `{"width":640,"height":480,"left":8,"top":32}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, fl.posted, 1)
	assert.Equal(t, loop.Resize{Width: 640, Height: 480, Offset: model.Point{X: 8, Y: 32}}, fl.posted[0])

	w = do(t, h, "POST", "/api/resize", `{"width":0,"height":480}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, fl.posted, 1)
}

func TestGraphEndpoint(t *testing.T) {
	fl := &fakeLoop{view: loop.GraphView{
		Nodes: []loop.NodeView{{ID: "a", Mass: 1}},
		Edges: []loop.EdgeView{},
	}}
	w := do(t, NewServer(fl, nil, nil).Handler(), "GET", "/api/graph", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got loop.GraphView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "a", got.Nodes[0].ID)
}

func TestSnapshots(t *testing.T) {
	fl := &fakeLoop{frame: testFrame()}
	h := NewServer(fl, nil, nil).Handler()

	w := do(t, h, "GET", "/api/snapshot.png", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	w = do(t, h, "GET", "/api/snapshot.svg", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")
	assert.Contains(t, w.Body.String(), "<line")

	w = do(t, h, "GET", "/api/frame", "")
	require.Equal(t, http.StatusOK, w.Code)
	var f canvas.Frame
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	assert.Equal(t, fl.frame, f)
}

func TestStaticFiles(t *testing.T) {
	h := NewServer(&fakeLoop{}, nil, nil).Handler()

	w := do(t, h, "GET", "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<canvas id="viewer">`)

	w = do(t, h, "GET", "/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	js := w.Body.String()
	assert.Contains(t, js, "/api/pointer")
	assert.Contains(t, js, "e.preventDefault()", "pointer handlers must suppress the browser default")
	assert.Contains(t, js, "seq: ++seq", "pointer events must be numbered")
	assert.Contains(t, js, "pending = pending.then(", "pointer posts must be chained")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.RecordPointerEvent("down")
	h := NewServer(&fakeLoop{}, nil, reg).Handler()

	w := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graphview_pointer_events_total")

	w = do(t, NewServer(&fakeLoop{}, nil, nil).Handler(), "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "no registry, no endpoint")
}

func TestSubscribeUnknownTopic(t *testing.T) {
	w := do(t, NewServer(&fakeLoop{}, nil, nil).Handler(), "GET", "/api/subscribe/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// readEvent reads SSE lines until a data line arrives
func readEvent(t *testing.T, r *bufio.Reader) pubsub.Event {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var ev pubsub.Event
			require.NoError(t, json.Unmarshal([]byte(data), &ev))
			return ev
		}
	}
}

func TestSubscribeReplaysLatestGraphStatus(t *testing.T) {
	s := NewServer(&fakeLoop{}, nil, nil)
	s.PublishGraph("loaded", pubsub.GraphStatus{Source: "g.json", Nodes: 3})
	s.PublishGraph("reloaded", pubsub.GraphStatus{Source: "g.json", Nodes: 4})

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/subscribe/graph", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	ev := readEvent(t, bufio.NewReader(resp.Body))
	assert.Equal(t, "reloaded", ev.Type)

	var status pubsub.GraphStatus
	require.NoError(t, json.Unmarshal(ev.Data, &status))
	assert.Equal(t, 4, status.Nodes)
}

func TestBrowserDragAgainstRunningLoop(t *testing.T) {
	var srv *Server
	ps := sim.NewParticleSystem(sim.DefaultParams())
	l := loop.New(ps, loop.Options{
		Width: 400, Height: 300, FPS: 60,
		OnFrame: func(f canvas.Frame) { srv.PublishFrame(f) },
		OnDrag:  func(c interact.Change) { srv.PublishDrag(c) },
		OnGraph: func(k string, st pubsub.GraphStatus) { srv.PublishGraph(k, st) },
	})
	srv = NewServer(l, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	records := []model.Record{{ID: "a", Links: []model.Link{{ID: "b"}}}, {ID: "b"}}
	require.NoError(t, l.Post(ctx, loop.Reload{Source: "test", Records: records}))

	h := srv.Handler()
	view := func() loop.GraphView {
		w := do(t, h, "GET", "/api/graph", "")
		require.Equal(t, http.StatusOK, w.Code)
		var v loop.GraphView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
		return v
	}
	require.Eventually(t, func() bool { return len(view().Nodes) == 2 }, 2*time.Second, 10*time.Millisecond)

	target := view().Nodes[0]
	body, _ := json.Marshal(PointerRequest{Kind: interact.Down, X: target.Screen.X, Y: target.Screen.Y, Target: interact.TargetSurface})
	require.Equal(t, http.StatusAccepted, do(t, h, "POST", "/api/pointer", string(body)).Code)

	anyFixed := func() bool {
		for _, n := range view().Nodes {
			if n.Fixed {
				return true
			}
		}
		return false
	}
	require.Eventually(t, anyFixed, 2*time.Second, 10*time.Millisecond)

	body, _ = json.Marshal(PointerRequest{Kind: interact.Up, Target: interact.TargetWindow})
	require.Equal(t, http.StatusAccepted, do(t, h, "POST", "/api/pointer", string(body)).Code)
	require.Eventually(t, func() bool { return !anyFixed() }, 2*time.Second, 10*time.Millisecond)

	last, ok := srv.Publisher().Last(pubsub.TopicFrames)
	require.True(t, ok)
	var f canvas.Frame
	require.NoError(t, json.NewDecoder(bytes.NewReader(last.Data)).Decode(&f))
	assert.Equal(t, 400, f.Width)
}
