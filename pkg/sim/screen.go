package sim

import "github.com/ritzau/graphview/pkg/model"

// minSpan keeps the mapping finite when all nodes share a coordinate.
const minSpan = 1.0

// screen maps simulation bounds onto the padded screen rectangle.
// The bounds only change in fit, so ToScreen and FromScreen are exact
// inverses between two fits.
type screen struct {
	width, height float64
	padding       float64
	lo, hi        model.Point
}

func newScreen() screen {
	return screen{lo: model.Point{X: -1, Y: -1}, hi: model.Point{X: 1, Y: 1}}
}

func (s *screen) fit(nodes []*model.Node) {
	if len(nodes) == 0 {
		s.lo, s.hi = model.Point{X: -1, Y: -1}, model.Point{X: 1, Y: 1}
		return
	}

	lo, hi := nodes[0].Pos, nodes[0].Pos
	for _, n := range nodes[1:] {
		lo.X = min(lo.X, n.Pos.X)
		lo.Y = min(lo.Y, n.Pos.Y)
		hi.X = max(hi.X, n.Pos.X)
		hi.Y = max(hi.Y, n.Pos.Y)
	}

	if span := hi.X - lo.X; span < minSpan {
		lo.X -= (minSpan - span) / 2
		hi.X = lo.X + minSpan
	}
	if span := hi.Y - lo.Y; span < minSpan {
		lo.Y -= (minSpan - span) / 2
		hi.Y = lo.Y + minSpan
	}

	s.lo, s.hi = lo, hi
}

// inner is the drawable size once padding is removed on each side.
func (s screen) inner() (float64, float64) {
	return max(s.width-2*s.padding, 1), max(s.height-2*s.padding, 1)
}

func (s screen) toScreen(p model.Point) model.Point {
	w, h := s.inner()
	return model.Point{
		X: s.padding + (p.X-s.lo.X)/(s.hi.X-s.lo.X)*w,
		Y: s.padding + (p.Y-s.lo.Y)/(s.hi.Y-s.lo.Y)*h,
	}
}

func (s screen) fromScreen(p model.Point) model.Point {
	w, h := s.inner()
	return model.Point{
		X: s.lo.X + (p.X-s.padding)/w*(s.hi.X-s.lo.X),
		Y: s.lo.Y + (p.Y-s.padding)/h*(s.hi.Y-s.lo.Y),
	}
}
