package canvas

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor understands CSS color names and #rgb / #rrggbb.
// Anything else resolves to black.
func ParseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c
	}
	if len(s) == 4 || len(s) == 7 {
		if c, err := colorful.Hex(s); err == nil {
			r, g, b := c.RGB255()
			return color.RGBA{r, g, b, 0xff}
		}
	}
	return colornames.Black
}

// CSS formats c as a CSS rgba() value.
func CSS(c color.Color) string {
	r := color.RGBAModel.Convert(c).(color.RGBA)
	if r.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", r.R, r.G, r.B)
	}
	// RGBA is alpha-premultiplied; undo it for CSS.
	a := float64(r.A) / 255
	un := func(v uint8) int {
		if r.A == 0 {
			return 0
		}
		return int(float64(v)/a + 0.5)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", un(r.R), un(r.G), un(r.B), a)
}

// parseCSS reverses CSS for the forms it produces.
func parseCSS(s string) color.Color {
	var r, g, b int
	var a float64
	if _, err := fmt.Sscanf(s, "rgba(%d,%d,%d,%f)", &r, &g, &b, &a); err == nil {
		return color.NRGBA{uint8(r), uint8(g), uint8(b), uint8(a*255 + 0.5)}
	}
	return ParseColor(s)
}
