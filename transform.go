package fragpipe

import "image"

// Transform computes the destination color of pixel (x, y).
//
// A Transform is called concurrently from several workers, each for distinct
// pixels, so it must not mutate shared state without synchronization. It must
// not retain ctx beyond the call. Panicking aborts the whole run.
type Transform func(x, y int, ctx *ThreadContext) Color

// ThreadContext gives a transform indexed access to the source and
// destination buffers of the current run.
type ThreadContext struct {
	// ThreadID is the index of the worker running the transform.
	ThreadID int

	// ThreadCount is the number of workers in the run.
	ThreadCount int

	src      *Buffer
	dst      *Buffer
	fragment image.Rectangle
}

// At returns the source color at (x, y). A failed read panics with the
// underlying error, which aborts the run and surfaces as a *SchedulerError.
// Use Lookup to handle neighbors outside the buffer.
func (c *ThreadContext) At(x, y int) Color {
	clr, err := c.src.At(x, y)
	if err != nil {
		panic(err)
	}
	return clr
}

// Lookup returns the source color at (x, y) or the read error.
func (c *ThreadContext) Lookup(x, y int) (Color, error) {
	return c.src.At(x, y)
}

// Set writes the destination color at (x, y) directly. The scheduler also
// stores the transform's return value, so Set is only needed to touch
// pixels other than the current one.
func (c *ThreadContext) Set(x, y int, clr Color) {
	if err := c.dst.Set(x, y, clr); err != nil {
		panic(err)
	}
}

// Width returns the source width.
func (c *ThreadContext) Width() int {
	return c.src.Width()
}

// Height returns the source height.
func (c *ThreadContext) Height() int {
	return c.src.Height()
}

// Fragment returns the rectangle currently being processed.
func (c *ThreadContext) Fragment() image.Rectangle {
	return c.fragment
}

// Identity copies the source pixel unchanged.
func Identity(x, y int, ctx *ThreadContext) Color {
	return ctx.At(x, y)
}
