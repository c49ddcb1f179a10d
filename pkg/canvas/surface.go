// Package canvas provides the drawing surfaces the renderer paints on.
package canvas

import (
	"image/color"

	"github.com/ritzau/graphview/pkg/model"
)

// Surface is a 2D drawing target measured in pixels from its top-left corner.
type Surface interface {
	// Size returns the surface dimensions.
	Size() (width, height int)
	// Offset is the surface's top-left corner in page coordinates.
	Offset() model.Point

	Clear(c color.Color)
	Line(p1, p2 model.Point, c color.Color, width float64)
	FillRect(x, y, w, h float64, c color.Color)
	Text(s string, x, y float64, c color.Color)
}
