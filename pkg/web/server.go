// Package web serves the browser front end: a canvas that replays the
// loop's frames, the pointer and resize endpoints that feed the loop, and
// snapshot, graph and metrics endpoints for inspection.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/graphview/pkg/canvas"
	"github.com/ritzau/graphview/pkg/interact"
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/loop"
	"github.com/ritzau/graphview/pkg/metrics"
	"github.com/ritzau/graphview/pkg/model"
	"github.com/ritzau/graphview/pkg/pubsub"
)

//go:embed static/*
var staticFiles embed.FS

// Loop is the part of the dispatcher the server talks to
type Loop interface {
	Post(ctx context.Context, ev loop.Event) error
	Snapshot(ctx context.Context) (canvas.Frame, error)
	Graph(ctx context.Context) (loop.GraphView, error)
}

// PointerRequest is the body of POST /api/pointer. Client and Seq are
// optional; a client that numbers its events gets them applied in order.
type PointerRequest struct {
	Kind   interact.Kind   `json:"kind"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Target interact.Target `json:"target"`
	Client string          `json:"client,omitempty"`
	Seq    uint64          `json:"seq,omitempty"`
}

// ResizeRequest is the body of POST /api/resize
type ResizeRequest struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	loop      Loop
	publisher *pubsub.SSEPublisher
	metrics   *metrics.Registry
	pointers  *sequencer
}

// NewServer creates a web server around a running loop. A nil publisher
// gets a fresh one with the viewer's topics configured.
func NewServer(l Loop, publisher *pubsub.SSEPublisher, reg *metrics.Registry) *Server {
	if publisher == nil {
		publisher = pubsub.NewSSEPublisher()
		pubsub.ConfigureTopics(publisher)
	}

	s := &Server{
		router:    mux.NewRouter(),
		loop:      l,
		publisher: publisher,
		metrics:   reg,
		pointers:  newSequencer(),
	}
	s.setupRoutes()
	return s
}

// Publisher returns the publisher the subscribe endpoints read from
func (s *Server) Publisher() *pubsub.SSEPublisher {
	return s.publisher
}

// PublishFrame publishes a redrawn frame
func (s *Server) PublishFrame(f canvas.Frame) {
	if err := s.publisher.Publish(pubsub.TopicFrames, "frame", f); err != nil {
		logging.Debug("frame not published", "error", err)
	}
}

// PublishDrag publishes a drag session change
func (s *Server) PublishDrag(c interact.Change) {
	if err := s.publisher.Publish(pubsub.TopicDrag, string(c.Kind), c); err != nil {
		logging.Debug("drag change not published", "error", err)
	}
}

// PublishGraph publishes the outcome of a document load
func (s *Server) PublishGraph(eventType string, status pubsub.GraphStatus) {
	if err := s.publisher.Publish(pubsub.TopicGraph, eventType, status); err != nil {
		logging.Debug("graph status not published", "error", err)
	}
}

// Handler returns the router wrapped in request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware("/api/pointer", "/api/subscribe")(s.router)
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/{topic:frames|drag|graph}", s.handleSubscribe).Methods("GET")

	s.router.HandleFunc("/api/pointer", s.handlePointer).Methods("POST")
	s.router.HandleFunc("/api/resize", s.handleResize).Methods("POST")
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/snapshot.png", s.handleSnapshotPNG).Methods("GET")
	s.router.HandleFunc("/api/snapshot.svg", s.handleSnapshotSVG).Methods("GET")
	s.router.HandleFunc("/api/frame", s.handleFrame).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer sub.Close()

	// Stream events
	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.DebugContext(r.Context(), "SSE client gone", "topic", topic, "error", err)
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid pointer event: "+err.Error(), http.StatusBadRequest)
		return
	}
	switch req.Kind {
	case interact.Down, interact.Move, interact.Up:
	default:
		http.Error(w, fmt.Sprintf("unknown pointer kind %q", req.Kind), http.StatusBadRequest)
		return
	}
	if req.Target == "" {
		req.Target = interact.TargetSurface
	}

	ev := loop.Pointer{PointerEvent: interact.PointerEvent{
		Kind:   req.Kind,
		Page:   model.Point{X: req.X, Y: req.Y},
		Target: req.Target,
	}}
	posted, err := s.pointers.admit(req.Client, req.Seq, func() error {
		return s.loop.Post(r.Context(), ev)
	})
	if err != nil {
		writeLoopError(w, err)
		return
	}
	if !posted {
		logging.TraceContext(r.Context(), "stale pointer event dropped", "client", req.Client, "seq", req.Seq, "kind", req.Kind)
		http.Error(w, "stale pointer event", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid resize: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		http.Error(w, "width and height must be positive", http.StatusBadRequest)
		return
	}

	ev := loop.Resize{
		Width:  req.Width,
		Height: req.Height,
		Offset: model.Point{X: req.Left, Y: req.Top},
	}
	if err := s.loop.Post(r.Context(), ev); err != nil {
		writeLoopError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	view, err := s.loop.Graph(r.Context())
	if err != nil {
		writeLoopError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	f, err := s.loop.Snapshot(r.Context())
	if err != nil {
		writeLoopError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f)
}

func (s *Server) handleSnapshotPNG(w http.ResponseWriter, r *http.Request) {
	f, err := s.loop.Snapshot(r.Context())
	if err != nil {
		writeLoopError(w, err)
		return
	}
	img, err := canvas.NewImage(f.Width, f.Height)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	canvas.Replay(f, img)

	w.Header().Set("Content-Type", "image/png")
	if err := img.EncodePNG(w); err != nil {
		logging.WarnContext(r.Context(), "PNG snapshot not written", "error", err)
	}
}

func (s *Server) handleSnapshotSVG(w http.ResponseWriter, r *http.Request) {
	f, err := s.loop.Snapshot(r.Context())
	if err != nil {
		writeLoopError(w, err)
		return
	}
	doc := canvas.NewSVG(f.Width, f.Height)
	canvas.Replay(f, doc)

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := doc.Encode(w); err != nil {
		logging.WarnContext(r.Context(), "SVG snapshot not written", "error", err)
	}
}

func writeLoopError(w http.ResponseWriter, err error) {
	if errors.Is(err, loop.ErrStopped) {
		http.Error(w, "viewer stopped", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusServiceUnavailable)
}

// Start serves on the given port until ctx is done
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.publisher.Close()
		srv.Shutdown(shutdownCtx)
	}()

	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
