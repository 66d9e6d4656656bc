package fragpipe

import (
	"fmt"

	intImage "github.com/gogpu/fragpipe/internal/image"
)

// Format identifies an image file encoding.
type Format = intImage.Codec

// Supported formats. FormatWebP can be loaded but not saved.
const (
	FormatPNG  = intImage.CodecPNG
	FormatJPEG = intImage.CodecJPEG
	FormatGIF  = intImage.CodecGIF
	FormatBMP  = intImage.CodecBMP
	FormatTIFF = intImage.CodecTIFF
	FormatWebP = intImage.CodecWebP
)

// ParseFormat converts a format name such as "png", "jpg" or ".tiff".
func ParseFormat(name string) (Format, error) {
	f, err := intImage.ParseCodec(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return f, nil
}

// FormatForPath returns the format implied by the file extension of path.
func FormatForPath(path string) (Format, error) {
	f, err := intImage.CodecForPath(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return f, nil
}

// Load decodes the image file at path into a new buffer in NoAccess mode.
// Failures are reported as *IOError.
func Load(path string) (*Buffer, error) {
	img, err := intImage.DecodeFile(path)
	if err != nil {
		return nil, &IOError{Op: "load", Path: path, Err: err}
	}
	return NewBufferFromImage(img)
}

// Save encodes b to path in format f. The buffer must not be writable.
// Encoding and file failures are reported as *IOError.
func (b *Buffer) Save(path string, f Format) error {
	if b.closed {
		return fmt.Errorf("%w: buffer is closed", ErrInvalidArgument)
	}
	if b.mode.CanWrite() {
		return &AccessError{Op: "save", Mode: b.mode}
	}
	if err := b.store.Save(path, f); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	return nil
}
