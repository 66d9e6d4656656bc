package fragpipe

import (
	"fmt"
	"image/color"
)

// Color is a straight (non-premultiplied) 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(255, 255, 255)
	Transparent = Color{}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// ARGB creates a color with alpha first, matching the usual 0xAARRGGBB order.
func ARGB(a, r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color to Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with or without a
// leading '#'.
func Hex(hex string) (Color, error) {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var v [4]uint8
	v[3] = 255

	switch len(hex) {
	case 3, 4:
		for i := range len(hex) {
			d, ok := hexDigit(hex[i])
			if !ok {
				return Color{}, fmt.Errorf("%w: bad hex color %q", ErrInvalidArgument, hex)
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			hi, ok1 := hexDigit(hex[i])
			lo, ok2 := hexDigit(hex[i+1])
			if !ok1 || !ok2 {
				return Color{}, fmt.Errorf("%w: bad hex color %q", ErrInvalidArgument, hex)
			}
			v[i/2] = hi<<4 | lo
		}
	default:
		return Color{}, fmt.Errorf("%w: bad hex color %q", ErrInvalidArgument, hex)
	}

	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// NRGBA converts the color to the standard library representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

// Lerp interpolates from c toward other by t in [0, 1]. Channels are
// truncated toward zero.
func (c Color) Lerp(other Color, t float64) Color {
	t = min(max(t, 0), 1)
	k := 1 - t
	return Color{
		R: uint8(float64(c.R)*k + float64(other.R)*t),
		G: uint8(float64(c.G)*k + float64(other.G)*t),
		B: uint8(float64(c.B)*k + float64(other.B)*t),
		A: uint8(float64(c.A)*k + float64(other.A)*t),
	}
}

// Brightness returns the HSL lightness in [0, 1].
func (c Color) Brightness() float64 {
	hi := max(c.R, c.G, c.B)
	lo := min(c.R, c.G, c.B)
	return (float64(hi) + float64(lo)) / 510
}

// Chromaticity returns the largest difference between any two color
// channels, scaled to [0, 1]. Grays have chromaticity 0.
func (c Color) Chromaticity() float64 {
	hi := max(c.R, c.G, c.B)
	lo := min(c.R, c.G, c.B)
	return float64(hi-lo) / 255
}

// String formats the color as "#RRGGBBAA".
func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
