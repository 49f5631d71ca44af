package textbox

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Color is an opaque sRGB colour.
type Color struct {
	R, G, B uint8
}

// Common colours.
var (
	White = Color{0xff, 0xff, 0xff}
	Black = Color{0x00, 0x00, 0x00}
)

// Rainbow is the palette fixture tags draw their fill from.
var Rainbow = []Color{
	{0xff, 0x3b, 0x30}, // red
	{0xff, 0x95, 0x00}, // orange
	{0xff, 0xcc, 0x00}, // yellow
	{0x34, 0xc7, 0x59}, // green
	{0x00, 0x7a, 0xff}, // blue
	{0x58, 0x56, 0xd6}, // indigo
	{0xaf, 0x52, 0xde}, // purple
}

// RandomColor picks a Rainbow colour.
func RandomColor(rng *rand.Rand) Color {
	return Rainbow[rng.IntN(len(Rainbow))]
}

// Luminance returns the relative luminance of c from its unit components.
func (c Color) Luminance() float64 {
	const r, g, b = 0.2126, 0.7152, 0.0722
	return r*float64(c.R)/255 + g*float64(c.G)/255 + b*float64(c.B)/255
}

// ContrastRatio returns the contrast ratio between c and o, from 1 (no
// contrast) to 21.
func (c Color) ContrastRatio(o Color) float64 {
	l1, l2 := c.Luminance(), o.Luminance()
	lighter, darker := max(l1, l2), min(l1, l2)
	return (lighter + 0.05) / (darker + 0.05)
}

// Foreground returns white or black, whichever reads better on c. White
// wins unless its contrast ratio drops below 2.2.
func (c Color) Foreground() Color {
	if c.ContrastRatio(White) >= 2.2 {
		return White
	}
	return Black
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

// ParseColor parses #rgb or #rrggbb.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}
