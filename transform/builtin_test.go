package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/fragpipe"
)

// apply runs fn over a buffer filled by fill and returns the result reader.
func apply(t *testing.T, w, h int, fill func(x, y int) fragpipe.Color, fn fragpipe.Transform) *fragpipe.Buffer {
	t.Helper()

	src, err := fragpipe.NewBuffer(w, h)
	require.NoError(t, err)
	require.NoError(t, src.EnableWrite())
	for y := range h {
		for x := range w {
			require.NoError(t, src.Set(x, y, fill(x, y)))
		}
	}
	require.NoError(t, src.Request(fragpipe.ReadOnly))

	dst, err := fragpipe.NewBuffer(w, h)
	require.NoError(t, err)
	require.NoError(t, dst.EnableWrite())

	require.NoError(t, fragpipe.Process(src, dst, fn, 3, 2, 2))
	require.NoError(t, dst.Request(fragpipe.ReadOnly))
	return dst
}

func at(t *testing.T, b *fragpipe.Buffer, x, y int) fragpipe.Color {
	t.Helper()
	c, err := b.At(x, y)
	require.NoError(t, err)
	return c
}

func solid(c fragpipe.Color) func(int, int) fragpipe.Color {
	return func(int, int) fragpipe.Color { return c }
}

func TestInvert(t *testing.T) {
	out := apply(t, 2, 2, solid(fragpipe.ARGB(77, 10, 20, 30)), Invert)
	assert.Equal(t, fragpipe.ARGB(77, 245, 235, 225), at(t, out, 1, 1))
}

func TestGrayscale(t *testing.T) {
	out := apply(t, 2, 2, solid(fragpipe.RGB(255, 0, 0)), Grayscale)
	assert.Equal(t, fragpipe.RGB(127, 127, 127), at(t, out, 0, 1))
}

func TestBorderAlpha(t *testing.T) {
	out := apply(t, 10, 10, solid(fragpipe.White), BorderAlpha)

	border, interior := 0, 0
	for y := range 10 {
		for x := range 10 {
			switch at(t, out, x, y).A {
			case 0:
				border++
			case 255:
				interior++
			}
		}
	}
	assert.Equal(t, 36, border)
	assert.Equal(t, 64, interior)
}

func TestAntiStamp(t *testing.T) {
	fn := AntiStamp(DefaultChromaMin, DefaultChromaMax)

	t.Run("border is transparent", func(t *testing.T) {
		out := apply(t, 3, 3, solid(fragpipe.Black), fn)
		assert.Equal(t, fragpipe.Transparent, at(t, out, 0, 0))
	})

	t.Run("gray text keeps opacity", func(t *testing.T) {
		out := apply(t, 3, 3, solid(fragpipe.Black), fn)
		assert.Equal(t, fragpipe.Black, at(t, out, 1, 1))
	})

	t.Run("saturated ink vanishes", func(t *testing.T) {
		out := apply(t, 3, 3, solid(fragpipe.RGB(0, 0, 255)), fn)
		assert.Equal(t, uint8(0), at(t, out, 1, 1).A)
	})

	t.Run("in-between chroma blends", func(t *testing.T) {
		// chroma = 64/255 ≈ 0.251, k ≈ 0.49
		out := apply(t, 3, 3, solid(fragpipe.RGB(128, 64, 128)), fn)
		c := at(t, out, 1, 1)
		assert.Greater(t, c.A, uint8(0))
		assert.Less(t, c.A, uint8(255-96))
	})
}

func TestWhiten(t *testing.T) {
	fn := Whiten(DefaultWhitenThreshold, fragpipe.White)

	out := apply(t, 2, 2, solid(fragpipe.RGB(255, 0, 0)), fn)
	assert.Equal(t, fragpipe.White, at(t, out, 0, 0), "colored pixels become background")

	out = apply(t, 2, 2, solid(fragpipe.RGB(0, 0, 0)), fn)
	c := at(t, out, 0, 0)
	assert.Equal(t, c.R, c.G)
	assert.Greater(t, c.R, uint8(0), "gray pixels move toward background")
	assert.Less(t, c.R, uint8(255))
}

func TestSobel(t *testing.T) {
	flat := apply(t, 5, 5, solid(fragpipe.RGB(100, 100, 100)), Sobel)
	assert.Equal(t, fragpipe.RGB(100, 100, 100), at(t, flat, 2, 2), "flat area is unchanged")
	assert.Equal(t, fragpipe.Transparent, at(t, flat, 0, 2))

	edge := apply(t, 5, 5, func(x, _ int) fragpipe.Color {
		if x < 2 {
			return fragpipe.Black
		}
		return fragpipe.White
	}, Sobel)
	c := at(t, edge, 2, 2)
	assert.Less(t, c.R, uint8(255), "edge pixel is darkened")
	assert.Equal(t, uint8(255), c.A)
}
