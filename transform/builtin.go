package transform

import (
	"math"

	"github.com/gogpu/fragpipe"
)

// Default thresholds for the stamp removal transforms.
const (
	DefaultChromaMin       = 0.2
	DefaultChromaMax       = 0.3
	DefaultWhitenThreshold = 0.1
)

// Descriptions of the builtin transforms, keyed by name.
var Descriptions = map[string]string{
	"identity":    "copy the source pixel",
	"invert":      "invert color channels, keep alpha",
	"grayscale":   "replace color with its HSL lightness",
	"borderalpha": "make the outermost pixel ring transparent",
	"antistamp":   "fade colored ink to transparent, keep gray text as alpha",
	"whiten":      "blend low-chroma pixels toward white",
	"sobel":       "darken pixels along brightness edges",
}

// Builtins returns a registry of the bundled transforms.
func Builtins() *Registry {
	r, err := NewRegistry(map[string]fragpipe.Transform{
		"identity":    fragpipe.Identity,
		"invert":      Invert,
		"grayscale":   Grayscale,
		"borderalpha": BorderAlpha,
		"antistamp":   AntiStamp(DefaultChromaMin, DefaultChromaMax),
		"whiten":      Whiten(DefaultWhitenThreshold, fragpipe.White),
		"sobel":       Sobel,
	})
	if err != nil {
		panic(err)
	}
	return r
}

// isBorder reports whether (x, y) lies on the outermost ring of the source.
func isBorder(x, y int, ctx *fragpipe.ThreadContext) bool {
	return x == 0 || y == 0 || x == ctx.Width()-1 || y == ctx.Height()-1
}

// Invert inverts the color channels.
func Invert(x, y int, ctx *fragpipe.ThreadContext) fragpipe.Color {
	c := ctx.At(x, y)
	return fragpipe.ARGB(c.A, 255-c.R, 255-c.G, 255-c.B)
}

// Grayscale replaces the color with its lightness.
func Grayscale(x, y int, ctx *fragpipe.ThreadContext) fragpipe.Color {
	c := ctx.At(x, y)
	l := uint8(c.Brightness() * 255)
	return fragpipe.ARGB(c.A, l, l, l)
}

// BorderAlpha copies the source with alpha 0 on the border ring.
func BorderAlpha(x, y int, ctx *fragpipe.ThreadContext) fragpipe.Color {
	c := ctx.At(x, y)
	if isBorder(x, y, ctx) {
		return c.WithAlpha(0)
	}
	return c
}

// AntiStamp turns a scanned page into a dark-on-transparent layer.
//
// Border pixels become transparent black. Pixels with chromaticity at or
// below chromaMin become gray with alpha 255-lightness, so dark text stays
// opaque. Pixels above chromaMax fade completely into transparent white;
// chromaticity in between blends linearly.
func AntiStamp(chromaMin, chromaMax float64) fragpipe.Transform {
	span := chromaMax - chromaMin
	transparentWhite := fragpipe.White.WithAlpha(0)

	return func(x, y int, ctx *fragpipe.ThreadContext) fragpipe.Color {
		if isBorder(x, y, ctx) {
			return fragpipe.Transparent
		}
		c := ctx.At(x, y)
		chroma := c.Chromaticity()
		br := uint8(c.Brightness() * 255)
		gray := fragpipe.ARGB(255-br, br, br, br)
		if chroma <= chromaMin {
			return gray
		}
		k := 1.0
		if chroma < chromaMax && span > 0 {
			k = (chromaMax - chroma) / span
		}
		return gray.Lerp(transparentWhite, k)
	}
}

// Whiten blends pixels whose chromaticity is below threshold toward
// background, the grayer the stronger, and replaces all other pixels with
// background.
func Whiten(threshold float64, background fragpipe.Color) fragpipe.Transform {
	return func(x, y int, ctx *fragpipe.ThreadContext) fragpipe.Color {
		c := ctx.At(x, y)
		chroma := c.Chromaticity()
		if chroma >= threshold || threshold >= 1 {
			return background
		}
		return c.Lerp(background, (threshold-chroma)/(1-threshold))
	}
}

// Sobel darkens pixels in proportion to the brightness gradient around them.
// Border pixels, which lack a full neighborhood, become transparent black.
func Sobel(x, y int, ctx *fragpipe.ThreadContext) fragpipe.Color {
	if isBorder(x, y, ctx) {
		return fragpipe.Transparent
	}
	p := func(dx, dy int) float64 {
		return ctx.At(x+dx, y+dy).Brightness()
	}

	gx := p(1, -1) + 2*p(1, 0) + p(1, 1) - p(-1, -1) - 2*p(-1, 0) - p(-1, 1)
	gy := p(-1, 1) + 2*p(0, 1) + p(1, 1) - p(-1, -1) - 2*p(0, -1) - p(1, -1)

	// Each kernel spans [-4, 4]; normalize the magnitude to [0, 1].
	g := min(math.Hypot(gx, gy)/4, 1)
	return ctx.At(x, y).Lerp(fragpipe.Black, g).WithAlpha(255)
}
