// Package tui shows the viewer in a terminal. Frames from the loop are
// replayed onto a cell grid and mouse events are posted back as pointer
// events, so dragging works the same as in the browser.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ritzau/graphview/pkg/canvas"
	"github.com/ritzau/graphview/pkg/interact"
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/loop"
	"github.com/ritzau/graphview/pkg/pubsub"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5F5FAF")).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// Poster delivers events to the loop
type Poster interface {
	Post(ctx context.Context, ev loop.Event) error
}

// Feed carries loop hook output into the program without blocking the loop
type Feed struct {
	msgs chan tea.Msg
}

// NewFeed creates an empty feed
func NewFeed() *Feed {
	return &Feed{msgs: make(chan tea.Msg, 16)}
}

// Frame queues a frame. It is dropped when the terminal is behind; a newer
// one follows.
func (f *Feed) Frame(fr canvas.Frame) {
	f.send(frameMsg(fr))
}

// Drag queues a drag change
func (f *Feed) Drag(c interact.Change) {
	f.send(dragMsg(c))
}

// Graph queues a document load outcome
func (f *Feed) Graph(eventType string, status pubsub.GraphStatus) {
	f.send(graphMsg{kind: eventType, status: status})
}

func (f *Feed) send(msg tea.Msg) {
	select {
	case f.msgs <- msg:
	default:
		logging.Trace("terminal behind, message dropped", "type", fmt.Sprintf("%T", msg))
	}
}

func (f *Feed) next() tea.Cmd {
	return func() tea.Msg { return <-f.msgs }
}

type (
	frameMsg canvas.Frame
	dragMsg  interact.Change
	graphMsg struct {
		kind   string
		status pubsub.GraphStatus
	}
	errMsg struct{ err error }
)

// Model is the bubbletea model of the terminal viewer
type Model struct {
	ctx    context.Context
	poster Poster
	feed   *Feed
	cells  *canvas.Cells

	graph    graphMsg
	dragging string
	err      error
}

// NewModel creates a model posting to p and drawing what arrives on feed
func NewModel(ctx context.Context, p Poster, feed *Feed) Model {
	return Model{
		ctx:    ctx,
		poster: p,
		feed:   feed,
		cells:  canvas.NewCells(80, 23),
	}
}

func (m Model) Init() tea.Cmd {
	return m.feed.next()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		// the last row is the status bar
		rows := max(msg.Height-1, 1)
		m.cells.Resize(msg.Width, rows)
		w, h := m.cells.Size()
		return m, m.post(loop.Resize{Width: w, Height: h})

	case tea.MouseMsg:
		if ev, ok := m.pointer(msg); ok {
			return m, m.post(loop.Pointer{PointerEvent: ev})
		}

	case frameMsg:
		canvas.Replay(canvas.Frame(msg), m.cells)
		return m, m.feed.next()

	case dragMsg:
		m.dragging = msg.NodeID
		if msg.Kind == interact.DragEnd {
			m.dragging = ""
		}
		return m, m.feed.next()

	case graphMsg:
		m.graph = msg
		return m, m.feed.next()

	case errMsg:
		m.err = msg.err
		if errors.Is(msg.err, loop.ErrStopped) {
			return m, tea.Quit
		}
	}
	return m, nil
}

// pointer maps a mouse message to a pointer event in surface pixels.
// Presses and motion happen on the grid; a release counts wherever it lands.
func (m Model) pointer(msg tea.MouseMsg) (interact.PointerEvent, bool) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return interact.PointerEvent{}, false
	}

	ev := interact.PointerEvent{
		Page:   m.cells.PointAt(msg.X, msg.Y),
		Target: interact.TargetSurface,
	}
	switch msg.Action {
	case tea.MouseActionPress:
		ev.Kind = interact.Down
	case tea.MouseActionMotion:
		ev.Kind = interact.Move
	case tea.MouseActionRelease:
		ev.Kind = interact.Up
		ev.Target = interact.TargetWindow
	default:
		return interact.PointerEvent{}, false
	}

	if ev.Target == interact.TargetSurface {
		w, h := m.cells.Size()
		if ev.Page.X >= float64(w) || ev.Page.Y >= float64(h) {
			ev.Target = interact.TargetWindow
		}
	}
	return ev, true
}

func (m Model) post(ev loop.Event) tea.Cmd {
	return func() tea.Msg {
		if err := m.poster.Post(m.ctx, ev); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m Model) View() string {
	return m.cells.String() + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	if m.err != nil {
		return errorStyle.Render("error: " + m.err.Error())
	}

	s := m.graph.status
	var text string
	switch {
	case m.graph.kind == "":
		text = "loading…"
	case m.graph.kind == "error":
		return errorStyle.Render(s.Source + ": " + s.Error)
	default:
		text = fmt.Sprintf("%s  %d nodes  %d edges", s.Source, s.Nodes, s.Edges)
		if s.Dropped > 0 {
			text += fmt.Sprintf("  %d dropped", s.Dropped)
		}
	}
	if m.dragging != "" {
		text += "  dragging " + m.dragging
	}
	return statusStyle.Render(text) + " " + helpStyle.Render("q quit")
}

// Run shows the viewer until the user quits or ctx is done
func Run(ctx context.Context, p Poster, feed *Feed) error {
	prog := tea.NewProgram(
		NewModel(ctx, p, feed),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
