package fragpipe

import (
	"fmt"
	"image"

	intImage "github.com/gogpu/fragpipe/internal/image"
)

// Buffer is a fixed-size 2-D grid of colors guarded by an access Mode.
//
// A new Buffer starts in NoAccess. Leaving NoAccess acquires a mapped region
// over the backing storage; pixel reads and writes go through that region
// and are bounds-checked. Returning to NoAccess releases it. Moving between
// two modes other than NoAccess keeps the region that is already held.
//
// Thread safety: mode changes are not safe for concurrent use and must not
// overlap a scheduler run on the same buffer. At and Set may be called
// concurrently for distinct pixels while the mode is fixed.
type Buffer struct {
	width  int
	height int
	mode   Mode

	// store owns the pixels for the lifetime of the buffer.
	store *intImage.ImageBuf

	// region is a view over store, held while mode != NoAccess.
	region *intImage.ImageBuf

	acquisitions int
	closed       bool
}

// NewBuffer creates a transparent-black buffer in NoAccess mode.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: buffer size %dx%d", ErrInvalidArgument, width, height)
	}
	store, err := intImage.DefaultPool().Get(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return newBuffer(store), nil
}

// NewBufferFromImage copies img into a new buffer in NoAccess mode.
// Premultiplied, gray and paletted images are converted to straight alpha.
func NewBufferFromImage(img image.Image) (*Buffer, error) {
	size := img.Bounds().Size()
	store, err := intImage.DefaultPool().Get(size.X, size.Y)
	if err != nil {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidArgument, size.X, size.Y)
	}
	if err := store.CopyFrom(img); err != nil {
		intImage.DefaultPool().Put(store)
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return newBuffer(store), nil
}

func newBuffer(store *intImage.ImageBuf) *Buffer {
	return &Buffer{
		width:  store.Width(),
		height: store.Height(),
		store:  store,
	}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int {
	return b.height
}

// Bounds returns the buffer rectangle anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Mode returns the current access mode.
func (b *Buffer) Mode() Mode {
	return b.mode
}

// Acquisitions returns how many times a mapped region has been acquired.
func (b *Buffer) Acquisitions() int {
	return b.acquisitions
}

// EnableWrite grants write permission.
func (b *Buffer) EnableWrite() error { return b.setMode(b.mode.EnableWrite()) }

// DisableWrite revokes write permission, keeping read permission.
func (b *Buffer) DisableWrite() error { return b.setMode(b.mode.DisableWrite()) }

// EnableRead grants read permission.
func (b *Buffer) EnableRead() error { return b.setMode(b.mode.EnableRead()) }

// DisableRead revokes read permission, keeping write permission.
func (b *Buffer) DisableRead() error { return b.setMode(b.mode.DisableRead()) }

// SetReadWrite switches to ReadWrite when on is true and to NoAccess otherwise.
func (b *Buffer) SetReadWrite(on bool) error { return b.setMode(b.mode.ReadWrite(on)) }

// Request moves the buffer to exactly the given mode.
func (b *Buffer) Request(m Mode) error {
	if !m.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidMode, m)
	}
	return b.setMode(b.mode.Toward(m))
}

// setMode applies a transition result, acquiring or releasing the region
// when crossing the NoAccess boundary.
func (b *Buffer) setMode(next Mode) error {
	if b.closed {
		return fmt.Errorf("%w: buffer is closed", ErrInvalidArgument)
	}
	if next == b.mode {
		return nil
	}

	switch {
	case b.mode == NoAccess:
		b.acquire()
	case next == NoAccess:
		b.release()
	}
	b.mode = next
	return nil
}

func (b *Buffer) acquire() {
	b.region = b.store.SubImage(0, 0, b.width, b.height)
	b.acquisitions++
	Logger().Debug("fragpipe: buffer region acquired",
		"width", b.width, "height", b.height, "acquisitions", b.acquisitions)
}

func (b *Buffer) release() {
	b.region = nil
	Logger().Debug("fragpipe: buffer region released", "width", b.width, "height", b.height)
}

// At returns the color at (x, y). The buffer must be readable.
func (b *Buffer) At(x, y int) (Color, error) {
	if !b.mode.CanRead() {
		return Color{}, &AccessError{Op: "read", Mode: b.mode}
	}
	r, g, bl, a, err := b.region.GetRGBA(x, y)
	if err != nil {
		return Color{}, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, b.width, b.height)
	}
	return Color{R: r, G: g, B: bl, A: a}, nil
}

// Set stores c at (x, y). The buffer must be writable.
func (b *Buffer) Set(x, y int, c Color) error {
	if !b.mode.CanWrite() {
		return &AccessError{Op: "write", Mode: b.mode}
	}
	if err := b.region.SetRGBA(x, y, c.R, c.G, c.B, c.A); err != nil {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, b.width, b.height)
	}
	return nil
}

// Fill sets every pixel to c. The buffer must be writable.
func (b *Buffer) Fill(c Color) error {
	if !b.mode.CanWrite() {
		return &AccessError{Op: "write", Mode: b.mode}
	}
	b.region.Fill(c.R, c.G, c.B, c.A)
	return nil
}

// Image returns a copy of the pixels. It fails while the buffer is writable
// so that a snapshot never observes a half-written result.
func (b *Buffer) Image() (*image.NRGBA, error) {
	if b.closed {
		return nil, fmt.Errorf("%w: buffer is closed", ErrInvalidArgument)
	}
	if b.mode.CanWrite() {
		return nil, &AccessError{Op: "snapshot", Mode: b.mode}
	}
	return b.store.ToStdImage(), nil
}

// Close releases the region and returns the backing storage to the shared
// pool, where a later NewBuffer of the same size may reuse it. Further mode
// changes fail. Close is idempotent.
func (b *Buffer) Close() {
	if b.closed {
		return
	}
	if b.mode != NoAccess {
		b.release()
		b.mode = NoAccess
	}
	intImage.DefaultPool().Put(b.store)
	b.store = nil
	b.closed = true
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(%dx%d, %s)", b.width, b.height, b.mode)
}
