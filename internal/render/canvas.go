package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Align is the horizontal anchor of a text run relative to its x coordinate.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Canvas is the drawing capability the report needs: draw a text run with
// its baseline at y, and measure the advance width of a run.
type Canvas interface {
	DrawText(text string, x, y, size float64, c color.Color, align Align)
	MeasureText(text string, size float64) float64
}

// shadow is drawn 1px down and right of every run.
var shadow = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xcc}

var boldFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

// Surface is a Canvas over an owned RGBA image. It is not safe for
// concurrent use; every render allocates its own.
type Surface struct {
	img   *image.NRGBA
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewSurface copies base into a new image of the same size, anchored at 0,0.
func NewSurface(base image.Image) (*Surface, error) {
	f, err := boldFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Surface{
		img:   imaging.Clone(base),
		font:  f,
		faces: make(map[float64]font.Face),
	}, nil
}

// Image returns the surface's backing image.
func (s *Surface) Image() *image.NRGBA {
	return s.img
}

// Close releases the font faces created for this surface.
func (s *Surface) Close() error {
	for size, face := range s.faces {
		face.Close()
		delete(s.faces, size)
	}
	return nil
}

func (s *Surface) face(size float64) font.Face {
	if f, ok := s.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		// Only invalid sizes fail here; the layout uses fixed positive sizes.
		panic(fmt.Sprintf("create font face at %.1fpx: %v", size, err))
	}
	s.faces[size] = f
	return f
}

// MeasureText returns the advance width of text in pixels.
func (s *Surface) MeasureText(text string, size float64) float64 {
	return fromFixed(font.MeasureString(s.face(size), text))
}

// DrawText draws text with its baseline at y.
func (s *Surface) DrawText(text string, x, y, size float64, c color.Color, align Align) {
	switch align {
	case AlignCenter:
		x -= s.MeasureText(text, size) / 2
	case AlignRight:
		x -= s.MeasureText(text, size)
	}
	s.drawRun(text, x+1, y+1, size, shadow)
	s.drawRun(text, x, y, size, c)
}

func (s *Surface) drawRun(text string, x, y, size float64, c color.Color) {
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face(size),
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
	}
	d.DrawString(text)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
