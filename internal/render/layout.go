package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ColumnColors holds the per-rank colours of one leaderboard column.
// Index 0 is rank 1.
type ColumnColors struct {
	Name  [3]color.NRGBA
	Stats [3]color.NRGBA
}

// Layout positions every piece of text on the report template. Coordinates
// are template pixels; y values are text baselines. The layout and the
// template asset change together.
type Layout struct {
	WinColumnX  float64
	LossColumnX float64
	RowY        [3]float64

	HeaderX float64
	TitleY  float64
	DateY   float64

	NameFontSize  float64
	StatsFontSize float64
	TitleFontSize float64
	DateFontSize  float64

	Win         ColumnColors
	Loss        ColumnColors
	HeaderColor color.NRGBA
}

// DefaultLayout matches assets/report_template.png.
var DefaultLayout = Layout{
	WinColumnX:  235,
	LossColumnX: 957,
	RowY:        [3]float64{434, 594, 750},

	HeaderX: 205,
	TitleY:  167,
	DateY:   188,

	NameFontSize:  28,
	StatsFontSize: 20,
	TitleFontSize: 20,
	DateFontSize:  15,

	Win: ColumnColors{
		Name:  [3]color.NRGBA{mustHex("#eb8a0a"), mustHex("#6e7792"), mustHex("#9c4917")},
		Stats: [3]color.NRGBA{mustHex("#d4a01f"), mustHex("#6b7384"), mustHex("#a2552a")},
	},
	Loss: ColumnColors{
		Name:  [3]color.NRGBA{mustHex("#dc2f49"), mustHex("#6e7792"), mustHex("#9c4917")},
		Stats: [3]color.NRGBA{mustHex("#dc2f49"), mustHex("#6b7384"), mustHex("#a2552a")},
	},
	HeaderColor: mustHex("#495057"),
}

// ParseHexColor parses "#rrggbb" or "rrggbb" into an opaque colour.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func mustHex(s string) color.NRGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
