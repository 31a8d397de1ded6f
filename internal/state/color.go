package state

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/gogpu/gg"
)

// DefaultColor is used for strokes and text when none was chosen.
const DefaultColor = "#000000"

var namedColors = map[string]color.NRGBA{
	"black":  {A: 255},
	"white":  {R: 255, G: 255, B: 255, A: 255},
	"red":    {R: 255, A: 255},
	"green":  {G: 255, A: 255},
	"blue":   {B: 255, A: 255},
	"yellow": {R: 255, G: 255, A: 255},
}

// ParseColor decodes a color string. It understands "#rgb",
// "#rgba", "#rrggbb", "#rrggbbaa" and a handful of names; anything else is
// black.
func ParseColor(s string) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if !strings.HasPrefix(s, "#") {
		return namedColors["black"]
	}
	c, err := gg.ParseHex(s)
	if err != nil {
		return namedColors["black"]
	}
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: channel(c.A)}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// ColorString encodes c as "#rrggbb", or "#rrggbbaa" when it is not opaque.
func ColorString(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
