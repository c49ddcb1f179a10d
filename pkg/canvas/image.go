package canvas

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/ritzau/graphview/pkg/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FontSize is the label size used by raster surfaces
const FontSize = 12.0

// Image is a raster Surface backed by a gg context.
type Image struct {
	dc *gg.Context
}

var _ Surface = (*Image)(nil)

// NewImage creates an image surface with the Go Regular font loaded
func NewImage(width, height int) (*Image, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	dc := gg.NewContext(width, height)
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))
	return &Image{dc: dc}, nil
}

func (i *Image) Size() (int, int) {
	return i.dc.Width(), i.dc.Height()
}

func (i *Image) Offset() model.Point { return model.Point{} }

func (i *Image) Clear(c color.Color) {
	i.dc.SetColor(c)
	i.dc.Clear()
}

func (i *Image) Line(p1, p2 model.Point, c color.Color, width float64) {
	i.dc.SetColor(c)
	i.dc.SetLineWidth(width)
	i.dc.DrawLine(p1.X, p1.Y, p2.X, p2.Y)
	i.dc.Stroke()
}

func (i *Image) FillRect(x, y, w, h float64, c color.Color) {
	i.dc.SetColor(c)
	i.dc.DrawRectangle(x, y, w, h)
	i.dc.Fill()
}

// Text draws s with its baseline at y, like a canvas fillText
func (i *Image) Text(s string, x, y float64, c color.Color) {
	i.dc.SetColor(c)
	i.dc.DrawString(s, x, y)
}

// Image returns the underlying raster
func (i *Image) Image() image.Image {
	return i.dc.Image()
}

// EncodePNG writes the surface as a PNG
func (i *Image) EncodePNG(w io.Writer) error {
	if err := i.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
