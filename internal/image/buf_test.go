package image

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewImageBuf(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		wantErr error
	}{
		{"valid", 100, 100, nil},
		{"1x1 minimum", 1, 1, nil},
		{"zero width", 0, 100, ErrInvalidDimensions},
		{"zero height", 100, 0, ErrInvalidDimensions},
		{"negative width", -1, 100, ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewImageBuf(tt.width, tt.height)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewImageBuf() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if buf.Width() != tt.width || buf.Height() != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", buf.Width(), buf.Height(), tt.width, tt.height)
			}
			if got := len(buf.RowBytes(0)); got != tt.width*BytesPerPixel {
				t.Errorf("len(RowBytes(0)) = %d, want %d", got, tt.width*BytesPerPixel)
			}
		})
	}
}

func TestImageBuf_GetSetRGBA(t *testing.T) {
	buf, _ := NewImageBuf(3, 3)
	if err := buf.SetRGBA(2, 1, 200, 100, 50, 128); err != nil {
		t.Fatalf("SetRGBA() error = %v", err)
	}
	r, g, b, a, err := buf.GetRGBA(2, 1)
	if err != nil {
		t.Fatalf("GetRGBA() error = %v", err)
	}
	if r != 200 || g != 100 || b != 50 || a != 128 {
		t.Errorf("GetRGBA() = (%d,%d,%d,%d), want (200,100,50,128)", r, g, b, a)
	}

	// Neighbours are untouched.
	for _, p := range [][2]int{{1, 1}, {2, 0}, {0, 2}} {
		if _, _, _, a, _ := buf.GetRGBA(p[0], p[1]); a != 0 {
			t.Errorf("pixel %v alpha = %d, want 0", p, a)
		}
	}
}

func TestImageBuf_OutOfBounds(t *testing.T) {
	buf, _ := NewImageBuf(2, 2)

	tests := []struct {
		name string
		x, y int
	}{
		{"x past edge", 2, 0},
		{"y past edge", 0, 2},
		{"negative x", -1, 0},
		{"negative y", 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := buf.SetRGBA(tt.x, tt.y, 1, 1, 1, 1); !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("SetRGBA(%d, %d) error = %v, want ErrOutOfBounds", tt.x, tt.y, err)
			}
			if _, _, _, _, err := buf.GetRGBA(tt.x, tt.y); !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("GetRGBA(%d, %d) error = %v, want ErrOutOfBounds", tt.x, tt.y, err)
			}
		})
	}
}

func TestImageBuf_ClearFill(t *testing.T) {
	buf, _ := NewImageBuf(5, 3)
	buf.Fill(1, 2, 3, 4)

	for y := range 3 {
		for x := range 5 {
			r, g, b, a, _ := buf.GetRGBA(x, y)
			if r != 1 || g != 2 || b != 3 || a != 4 {
				t.Fatalf("pixel (%d,%d) = (%d,%d,%d,%d) after Fill", x, y, r, g, b, a)
			}
		}
	}

	buf.Clear()
	for y := range 3 {
		for i, v := range buf.RowBytes(y) {
			if v != 0 {
				t.Fatalf("row %d byte %d = %d after Clear, want 0", y, i, v)
			}
		}
	}
}

func TestImageBuf_SubImage(t *testing.T) {
	buf, _ := NewImageBuf(10, 10)
	sub := buf.SubImage(2, 3, 4, 5)
	if sub == nil {
		t.Fatal("SubImage() returned nil")
	}
	if sub.Width() != 4 || sub.Height() != 5 {
		t.Errorf("SubImage size = %dx%d, want 4x5", sub.Width(), sub.Height())
	}

	// Writes through the view land in the parent.
	_ = sub.SetRGBA(0, 0, 9, 9, 9, 9)
	r, _, _, _, _ := buf.GetRGBA(2, 3)
	if r != 9 {
		t.Errorf("parent pixel (2,3).R = %d, want 9", r)
	}

	// Clearing a view leaves the rest of the parent alone.
	_ = buf.SetRGBA(6, 3, 7, 7, 7, 7)
	sub.Clear()
	if r, _, _, _, _ := buf.GetRGBA(6, 3); r != 7 {
		t.Errorf("pixel outside view R = %d after Clear, want 7", r)
	}

	invalid := []struct {
		name       string
		x, y, w, h int
	}{
		{"negative origin", -1, 0, 2, 2},
		{"zero width", 0, 0, 0, 2},
		{"too wide", 8, 0, 3, 2},
		{"too tall", 0, 8, 2, 3},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if got := buf.SubImage(tt.x, tt.y, tt.w, tt.h); got != nil {
				t.Errorf("SubImage(%d,%d,%d,%d) = %v, want nil", tt.x, tt.y, tt.w, tt.h, got)
			}
		})
	}
}

func TestImageBuf_RowBytes(t *testing.T) {
	buf, _ := NewImageBuf(3, 2)
	if got := len(buf.RowBytes(1)); got != 12 {
		t.Errorf("len(RowBytes(1)) = %d, want 12", got)
	}
	if buf.RowBytes(2) != nil {
		t.Error("RowBytes(2) should be nil for a 2-row image")
	}
}

// =============================================================================
// Standard Library Conversion Tests
// =============================================================================

func TestImageBuf_CopyFrom(t *testing.T) {
	nrgba := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	nrgba.SetNRGBA(3, 1, color.NRGBA{R: 128, G: 64, B: 32, A: 200})

	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	gray.SetGray(3, 1, color.Gray{Y: 128})

	// Premultiplied 50% red becomes straight full red at half alpha.
	rgba := image.NewRGBA(image.Rect(0, 0, 4, 4))
	rgba.SetRGBA(3, 1, color.RGBA{R: 128, A: 128})

	// A sub-image whose bounds do not start at the origin.
	big := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	big.SetNRGBA(8, 6, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	offset := big.SubImage(image.Rect(5, 5, 9, 9))

	tests := []struct {
		name string
		src  image.Image
		want color.NRGBA
	}{
		{"nrgba", nrgba, color.NRGBA{R: 128, G: 64, B: 32, A: 200}},
		{"gray", gray, color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
		{"premultiplied", rgba, color.NRGBA{R: 255, A: 128}},
		{"offset bounds", offset, color.NRGBA{R: 1, G: 2, B: 3, A: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, _ := NewImageBuf(4, 4)
			buf.Fill(9, 9, 9, 9)
			if err := buf.CopyFrom(tt.src); err != nil {
				t.Fatalf("CopyFrom() error = %v", err)
			}
			r, g, b, a, _ := buf.GetRGBA(3, 1)
			if got := (color.NRGBA{R: r, G: g, B: b, A: a}); got != tt.want {
				t.Errorf("pixel (3,1) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImageBuf_CopyFromSizeMismatch(t *testing.T) {
	buf, _ := NewImageBuf(4, 4)
	err := buf.CopyFrom(image.NewNRGBA(image.Rect(0, 0, 4, 5)))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("CopyFrom() error = %v, want ErrSizeMismatch", err)
	}
}

func TestImageBuf_ToStdImage(t *testing.T) {
	buf, _ := NewImageBuf(2, 2)
	_ = buf.SetRGBA(1, 1, 10, 20, 30, 40)

	img := buf.ToStdImage()
	if c := img.NRGBAAt(1, 1); c != (color.NRGBA{R: 10, G: 20, B: 30, A: 40}) {
		t.Errorf("Pixel = %v, want {10 20 30 40}", c)
	}

	// The result is a copy.
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	if _, _, _, a, _ := buf.GetRGBA(0, 0); a != 0 {
		t.Error("ToStdImage() shares pixels with the store")
	}
}
