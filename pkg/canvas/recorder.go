package canvas

import (
	"image/color"

	"github.com/ritzau/graphview/pkg/model"
)

// OpKind names a drawing operation.
type OpKind string

const (
	OpClear    OpKind = "clear"
	OpLine     OpKind = "line"
	OpFillRect OpKind = "rect"
	OpText     OpKind = "text"
)

// Op is one recorded drawing operation. It serializes to the JSON the
// browser canvas replays.
type Op struct {
	Kind  OpKind  `json:"op"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	Width float64 `json:"width,omitempty"`
	Text  string  `json:"text,omitempty"`
	Color string  `json:"color"`
}

// Frame is the list of operations drawn by one redraw.
type Frame struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Ops    []Op `json:"ops"`
}

// Recorder is a Surface that remembers what was drawn since the last Clear.
type Recorder struct {
	width, height int
	offset        model.Point
	ops           []Op
}

var _ Surface = (*Recorder)(nil)

// NewRecorder creates a recorder of the given size
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

// Resize changes the reported size
func (r *Recorder) Resize(width, height int) {
	r.width, r.height = width, height
}

// SetOffset sets the page offset reported by Offset
func (r *Recorder) SetOffset(p model.Point) {
	r.offset = p
}

func (r *Recorder) Size() (int, int)    { return r.width, r.height }
func (r *Recorder) Offset() model.Point { return r.offset }

// Clear starts a new frame
func (r *Recorder) Clear(c color.Color) {
	r.ops = append(r.ops[:0], Op{Kind: OpClear, Color: CSS(c)})
}

func (r *Recorder) Line(p1, p2 model.Point, c color.Color, width float64) {
	r.ops = append(r.ops, Op{Kind: OpLine, X: p1.X, Y: p1.Y, X2: p2.X, Y2: p2.Y, Width: width, Color: CSS(c)})
}

func (r *Recorder) FillRect(x, y, w, h float64, c color.Color) {
	r.ops = append(r.ops, Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Color: CSS(c)})
}

func (r *Recorder) Text(s string, x, y float64, c color.Color) {
	r.ops = append(r.ops, Op{Kind: OpText, X: x, Y: y, Text: s, Color: CSS(c)})
}

// Frame returns a copy of the current frame
func (r *Recorder) Frame() Frame {
	return Frame{
		Width:  r.width,
		Height: r.height,
		Ops:    append([]Op(nil), r.ops...),
	}
}

// Replay draws a frame onto another surface
func Replay(f Frame, dst Surface) {
	for _, op := range f.Ops {
		c := parseCSS(op.Color)
		switch op.Kind {
		case OpClear:
			dst.Clear(c)
		case OpLine:
			dst.Line(model.Point{X: op.X, Y: op.Y}, model.Point{X: op.X2, Y: op.Y2}, c, op.Width)
		case OpFillRect:
			dst.FillRect(op.X, op.Y, op.W, op.H, c)
		case OpText:
			dst.Text(op.Text, op.X, op.Y, c)
		}
	}
}
