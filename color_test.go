package fragpipe

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

// Verify at compile time that Color implements color.Color.
var _ color.Color = Color{}

func TestColor_Constructors(t *testing.T) {
	if got := RGB(1, 2, 3); got != (Color{1, 2, 3, 255}) {
		t.Errorf("RGB() = %v", got)
	}
	if got := ARGB(4, 1, 2, 3); got != (Color{1, 2, 3, 4}) {
		t.Errorf("ARGB() = %v", got)
	}
	if got := FromColor(color.Gray{Y: 100}); got != (Color{100, 100, 100, 255}) {
		t.Errorf("FromColor(gray) = %v", got)
	}
	if got := FromColor(color.RGBA{R: 50, A: 128}); got.A != 128 || got.R < 99 || got.R > 100 {
		t.Errorf("FromColor(premultiplied) = %v, want R~100 A=128", got)
	}
	if got := White.WithAlpha(0); got != (Color{255, 255, 255, 0}) {
		t.Errorf("WithAlpha(0) = %v", got)
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#fff", White, false},
		{"000", Black, false},
		{"F008", Color{255, 0, 0, 136}, false},
		{"#102030", RGB(0x10, 0x20, 0x30), false},
		{"10203040", Color{0x10, 0x20, 0x30, 0x40}, false},
		{"#12", Color{}, true},
		{"zzzzzz", Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Hex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Hex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error %v does not wrap ErrInvalidArgument", err)
			}
			if got != tt.want {
				t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColor_Lerp(t *testing.T) {
	from := RGB(0, 100, 200)
	to := ARGB(0, 200, 100, 0)

	if got := from.Lerp(to, 0); got != from {
		t.Errorf("Lerp(0) = %v, want %v", got, from)
	}
	if got := from.Lerp(to, 1); got != to {
		t.Errorf("Lerp(1) = %v, want %v", got, to)
	}
	if got := from.Lerp(to, 0.5); got != (Color{100, 100, 100, 127}) {
		t.Errorf("Lerp(0.5) = %v, want {100 100 100 127}", got)
	}
	if got := from.Lerp(to, 7); got != to {
		t.Errorf("Lerp(7) = %v, want clamp to %v", got, to)
	}
}

func TestColor_BrightnessChromaticity(t *testing.T) {
	tests := []struct {
		name             string
		c                Color
		brightness, chro float64
	}{
		{"black", Black, 0, 0},
		{"white", White, 1, 0},
		{"gray", RGB(51, 51, 51), 0.2, 0},
		{"red", RGB(255, 0, 0), 0.5, 1},
		{"tinted", RGB(200, 180, 200), 190.0 / 255, 20.0 / 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Brightness(); math.Abs(got-tt.brightness) > 1e-9 {
				t.Errorf("Brightness() = %v, want %v", got, tt.brightness)
			}
			if got := tt.c.Chromaticity(); math.Abs(got-tt.chro) > 1e-9 {
				t.Errorf("Chromaticity() = %v, want %v", got, tt.chro)
			}
		})
	}
}

func TestColor_String(t *testing.T) {
	if got := ARGB(0x80, 0x12, 0xAB, 0x00).String(); got != "#12AB0080" {
		t.Errorf("String() = %q, want #12AB0080", got)
	}
}
