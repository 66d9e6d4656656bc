// Package parallel provides the fragment scheduling machinery for fragpipe.
//
// A region of a buffer is cut into axis-aligned fragments (see Grid), the
// fragments are distributed over a fixed set of Workers, and the workers are
// started together and joined together (see RunCrew). The package also
// implements the coarse alternative: exactly X×Y blocks executed on a bounded
// WorkerPool (see SplitBlocks and RunBlocks).
//
// Nothing in this package knows about pixels or colors. Workers are handed a
// callback that processes one Fragment; the caller decides what that means.
//
// Thread safety: Worker queues are guarded by a mutex. Grid is immutable after
// construction. Fragment is a value type.
package parallel

import (
	"fmt"
	"iter"
)

// Fragment is an axis-aligned rectangle of pixels processed as one unit of work.
//
// Edge fragments may be smaller than the grid's maximum fragment size when the
// region is not evenly divisible.
type Fragment struct {
	// X is the left edge in buffer space.
	X int

	// Y is the top edge in buffer space.
	Y int

	// Width is the number of columns (may be < max fragment width at the right edge).
	Width int

	// Height is the number of rows (may be < max fragment height at the bottom edge).
	Height int
}

// Empty reports whether the fragment covers no pixels.
func (f Fragment) Empty() bool {
	return f.Width <= 0 || f.Height <= 0
}

// Area returns the number of pixels covered by the fragment.
func (f Fragment) Area() int {
	if f.Empty() {
		return 0
	}
	return f.Width * f.Height
}

// Pixels yields the coordinates of every pixel of the fragment, all columns
// of the top row first, then the next row.
func (f Fragment) Pixels() iter.Seq2[int, int] {
	return func(yield func(x, y int) bool) {
		for y := f.Y; y < f.Y+f.Height; y++ {
			for x := f.X; x < f.X+f.Width; x++ {
				if !yield(x, y) {
					return
				}
			}
		}
	}
}

// String formats the fragment as "WxH+X+Y".
func (f Fragment) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", f.Width, f.Height, f.X, f.Y)
}
