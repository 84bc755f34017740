package imaging

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// paletteHex is the stroke cycle: blue, green, red, cyan, magenta, yellow,
// black.
var paletteHex = []string{
	"#0000FF",
	"#008000",
	"#FF0000",
	"#00BFBF",
	"#BF00BF",
	"#BFBF00",
	"#000000",
}

// Palette is the stroke colour cycle. Output group i is drawn with
// Palette[i mod len(Palette)].
var Palette = mustParsePalette(paletteHex)

func mustParsePalette(hexes []string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("imaging: bad palette entry %q: %v", h, err))
		}
		out[i] = c
	}
	return out
}

// ColorFor returns the stroke colour of output group i. Negative indices are
// treated as their absolute value.
func ColorFor(i int) colorful.Color {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) format.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// Swatch names the colour a group was drawn with, so a caller reading the
// rendered image can match strokes back to output groups.
type Swatch struct {
	Group int      `json:"group"`
	Hex   string   `json:"hex"` // "#RRGGBB"
	HSL   HSLColor `json:"hsl"`
}

// SwatchFor describes the stroke colour of group i.
func SwatchFor(i int) Swatch {
	c := ColorFor(i)
	h, s, l := c.Hsl()
	return Swatch{
		Group: i,
		Hex:   strings.ToUpper(c.Hex()),
		HSL: HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}
}
