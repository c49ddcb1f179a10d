package canvas

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ritzau/graphview/pkg/model"
	"golang.org/x/image/colornames"
)

// Pixel size of one terminal cell. Cells reports its size in pixels so the
// renderer's padding and node size keep their meaning.
const (
	CellWidth  = 8
	CellHeight = 16
)

const (
	glyphEdge = '·'
	glyphNode = '█'
)

type cell struct {
	r  rune
	fg color.RGBA
}

// Cells is a Surface on a grid of terminal cells.
type Cells struct {
	cols, rows int
	grid       []cell
	bg         color.RGBA
}

var _ Surface = (*Cells)(nil)

// NewCells creates a grid of cols x rows cells
func NewCells(cols, rows int) *Cells {
	c := &Cells{bg: colornames.White}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid dimensions and clears it
func (c *Cells) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 0), max(rows, 0)
	c.grid = make([]cell, c.cols*c.rows)
	c.Clear(c.bg)
}

// PointAt returns the pixel at the center of a cell
func (c *Cells) PointAt(col, row int) model.Point {
	return model.Point{
		X: float64(col*CellWidth) + CellWidth/2,
		Y: float64(row*CellHeight) + CellHeight/2,
	}
}

func (c *Cells) Size() (int, int) {
	return c.cols * CellWidth, c.rows * CellHeight
}

func (c *Cells) Offset() model.Point { return model.Point{} }

func (c *Cells) Clear(bg color.Color) {
	c.bg = toRGBA(bg)
	for i := range c.grid {
		c.grid[i] = cell{r: ' ', fg: c.bg}
	}
}

func (c *Cells) Line(p1, p2 model.Point, col color.Color, _ float64) {
	fg := c.blend(col)
	x0, y0 := cellOf(p1)
	x1, y1 := cellOf(p2)

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if cl := c.at(x0, y0); cl != nil && cl.r == ' ' {
			*cl = cell{r: glyphEdge, fg: fg}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Cells) FillRect(x, y, w, h float64, col color.Color) {
	fg := c.blend(col)
	x0, y0 := cellOf(model.Point{X: x, Y: y})
	x1, y1 := cellOf(model.Point{X: x + w - 1e-9, Y: y + h - 1e-9})
	for row := y0; row <= y1; row++ {
		for cx := x0; cx <= x1; cx++ {
			if cl := c.at(cx, row); cl != nil {
				*cl = cell{r: glyphNode, fg: fg}
			}
		}
	}
}

// Text writes s on the row holding the baseline y
func (c *Cells) Text(s string, x, y float64, col color.Color) {
	fg := c.blend(col)
	cx, row := cellOf(model.Point{X: x, Y: y - 1})
	for _, r := range s {
		if cl := c.at(cx, row); cl != nil {
			*cl = cell{r: r, fg: fg}
		}
		cx++
	}
}

// Rune returns the glyph at a cell, or 0 outside the grid
func (c *Cells) Rune(col, row int) rune {
	if cl := c.at(col, row); cl != nil {
		return cl.r
	}
	return 0
}

// String renders the grid with lipgloss colors, one line per row
func (c *Cells) String() string {
	var b strings.Builder
	bg := lipgloss.Color(hex(c.bg))
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		line := c.grid[row*c.cols : (row+1)*c.cols]
		for start := 0; start < len(line); {
			end := start + 1
			for end < len(line) && line[end].fg == line[start].fg {
				end++
			}
			var run strings.Builder
			for _, cl := range line[start:end] {
				run.WriteRune(cl.r)
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(line[start].fg))).
				Background(bg)
			b.WriteString(style.Render(run.String()))
			start = end
		}
	}
	return b.String()
}

func (c *Cells) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return nil
	}
	return &c.grid[row*c.cols+col]
}

// blend composites a translucent color over the background
func (c *Cells) blend(col color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	a := float64(n.A) / 255
	mix := func(f, b uint8) uint8 {
		return uint8(math.Round(float64(f)*a + float64(b)*(1-a)))
	}
	return color.RGBA{mix(n.R, c.bg.R), mix(n.G, c.bg.G), mix(n.B, c.bg.B), 0xff}
}

func cellOf(p model.Point) (int, int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

func toRGBA(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
