package parallel

import "testing"

// =============================================================================
// Fragment Tests
// =============================================================================

func TestFragment_Area(t *testing.T) {
	tests := []struct {
		name  string
		f     Fragment
		want  int
		empty bool
	}{
		{"full", Fragment{0, 0, 16, 16}, 256, false},
		{"edge", Fragment{16, 0, 4, 16}, 64, false},
		{"zero width", Fragment{0, 0, 0, 5}, 0, true},
		{"negative height", Fragment{0, 0, 5, -1}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Area(); got != tt.want {
				t.Errorf("Area() = %d, want %d", got, tt.want)
			}
			if got := tt.f.Empty(); got != tt.empty {
				t.Errorf("Empty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestFragment_Pixels_RowMajor(t *testing.T) {
	f := Fragment{X: 1, Y: 2, Width: 3, Height: 2}

	var got [][2]int
	for x, y := range f.Pixels() {
		got = append(got, [2]int{x, y})
	}

	want := [][2]int{{1, 2}, {2, 2}, {3, 2}, {1, 3}, {2, 3}, {3, 3}}
	if len(got) != len(want) {
		t.Fatalf("visited %d pixels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFragment_Pixels_Break(t *testing.T) {
	n := 0
	for range (Fragment{Width: 4, Height: 4}).Pixels() {
		n++
		if n == 5 {
			break
		}
	}
	if n != 5 {
		t.Errorf("visited %d pixels before break, want 5", n)
	}
}

func TestFragment_String(t *testing.T) {
	if got := (Fragment{X: 32, Y: 16, Width: 8, Height: 4}).String(); got != "8x4+32+16" {
		t.Errorf("String() = %q, want 8x4+32+16", got)
	}
}
