// Package image provides the pixel storage and codec layer for fragpipe.
//
// ImageBuf is the backing store of every fragpipe.Buffer: a contiguous slice
// of straight-alpha RGBA bytes with an explicit stride, laid out exactly like
// image.NRGBA. All single-pixel accessors are bounds-checked and report
// ErrOutOfBounds instead of touching memory outside the image.
package image

import (
	"errors"
	"image"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrSizeMismatch is returned when copying between images of different size.
	ErrSizeMismatch = errors.New("image: size mismatch")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// BytesPerPixel is the size of one R, G, B, A pixel.
const BytesPerPixel = 4

// ImageBuf is a strided RGBA pixel store.
//
// Thread safety: concurrent reads are safe. Concurrent writes are safe only
// when they target disjoint pixels; ImageBuf itself takes no locks.
type ImageBuf struct {
	pix    []byte
	width  int
	height int
	stride int

	// view is set for SubImage results, which share pix with a parent.
	view bool
}

// NewImageBuf creates a transparent-black image of the given size.
func NewImageBuf(width, height int) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	stride := width * BytesPerPixel
	return &ImageBuf{
		pix:    make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
	}, nil
}

// Width returns the image width in pixels.
func (b *ImageBuf) Width() int {
	return b.width
}

// Height returns the image height in pixels.
func (b *ImageBuf) Height() int {
	return b.height
}

// RowBytes returns the pixels of row y, without stride padding.
// Returns nil if y is out of bounds.
func (b *ImageBuf) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	return b.pix[start : start+b.width*BytesPerPixel]
}

// offset returns the index of pixel (x, y) in pix, or -1 outside the image.
func (b *ImageBuf) offset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return y*b.stride + x*BytesPerPixel
}

// GetRGBA returns the straight-alpha color at (x, y).
func (b *ImageBuf) GetRGBA(x, y int) (r, g, bl, a uint8, err error) {
	i := b.offset(x, y)
	if i < 0 {
		return 0, 0, 0, 0, ErrOutOfBounds
	}
	p := b.pix[i : i+BytesPerPixel : i+BytesPerPixel]
	return p[0], p[1], p[2], p[3], nil
}

// SetRGBA stores the straight-alpha color at (x, y).
func (b *ImageBuf) SetRGBA(x, y int, r, g, bl, a uint8) error {
	i := b.offset(x, y)
	if i < 0 {
		return ErrOutOfBounds
	}
	p := b.pix[i : i+BytesPerPixel : i+BytesPerPixel]
	p[0], p[1], p[2], p[3] = r, g, bl, a
	return nil
}

// Clear sets every pixel to transparent black.
func (b *ImageBuf) Clear() {
	for y := range b.height {
		clear(b.RowBytes(y))
	}
}

// Fill sets every pixel to the given color.
func (b *ImageBuf) Fill(r, g, bl, a uint8) {
	first := b.RowBytes(0)
	for x := 0; x < len(first); x += BytesPerPixel {
		first[x], first[x+1], first[x+2], first[x+3] = r, g, bl, a
	}
	for y := 1; y < b.height; y++ {
		copy(b.RowBytes(y), first)
	}
}

// SubImage returns a view into a rectangular region of the image.
// The view shares pixels with b. Returns nil if the rectangle is empty or
// not fully inside the image.
func (b *ImageBuf) SubImage(x, y, width, height int) *ImageBuf {
	if x < 0 || y < 0 || width <= 0 || height <= 0 {
		return nil
	}
	if x+width > b.width || y+height > b.height {
		return nil
	}

	start := y*b.stride + x*BytesPerPixel
	end := (y+height-1)*b.stride + (x+width)*BytesPerPixel
	return &ImageBuf{
		pix:    b.pix[start:end],
		width:  width,
		height: height,
		stride: b.stride,
		view:   true,
	}
}

// CopyFrom replaces the pixels of b with those of img, converting to
// straight alpha when needed. img must have the same size as b.
func (b *ImageBuf) CopyFrom(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() != b.width || bounds.Dy() != b.height {
		return ErrSizeMismatch
	}

	if src, ok := img.(*image.NRGBA); ok {
		for y := range b.height {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(b.RowBytes(y), row[:b.width*BytesPerPixel])
		}
		return nil
	}

	// Paletted, premultiplied and gray sources go through x/image/draw.
	drawSrc(b.nrgba(), img)
	return nil
}

// ToStdImage returns a newly allocated *image.NRGBA holding a copy of b.
func (b *ImageBuf) ToStdImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for y := range b.height {
		copy(out.Pix[y*out.Stride:], b.RowBytes(y))
	}
	return out
}

// nrgba exposes b as an *image.NRGBA sharing its pixels.
func (b *ImageBuf) nrgba() *image.NRGBA {
	return &image.NRGBA{Pix: b.pix, Stride: b.stride, Rect: image.Rect(0, 0, b.width, b.height)}
}
