package canvas

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

// SVG is a vector Surface. Operations are buffered and written as one
// document by Encode.
type SVG struct {
	*Recorder
}

var _ Surface = (*SVG)(nil)

// NewSVG creates an SVG surface
func NewSVG(width, height int) *SVG {
	return &SVG{Recorder: NewRecorder(width, height)}
}

// Encode writes the buffered frame as an SVG document
func (s *SVG) Encode(w io.Writer) error {
	ew := &errWriter{w: w}
	doc := svg.New(ew)

	width, height := s.Size()
	doc.Start(width, height)
	for _, op := range s.ops {
		switch op.Kind {
		case OpClear:
			doc.Rect(0, 0, width, height, "fill:"+op.Color)
		case OpLine:
			doc.Line(px(op.X), px(op.Y), px(op.X2), px(op.Y2),
				fmt.Sprintf("stroke:%s;stroke-width:%g", op.Color, op.Width))
		case OpFillRect:
			doc.Rect(px(op.X), px(op.Y), px(op.W), px(op.H), "fill:"+op.Color)
		case OpText:
			doc.Text(px(op.X), px(op.Y), op.Text,
				fmt.Sprintf("fill:%s;font-size:%gpx;font-family:sans-serif", op.Color, FontSize))
		}
	}
	doc.End()

	if ew.err != nil {
		return fmt.Errorf("failed to write svg: %w", ew.err)
	}
	return nil
}

func px(v float64) int {
	return int(math.Round(v))
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
