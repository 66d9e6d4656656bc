package image

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // registers the webp decoder with image.Decode
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the file format is not supported.
	ErrUnsupportedFormat = errors.New("image: unsupported format")
)

// DefaultJPEGQuality is the quality used by Encode for CodecJPEG.
const DefaultJPEGQuality = 90

// Codec identifies a file format.
type Codec uint8

const (
	// CodecPNG is lossless PNG.
	CodecPNG Codec = iota + 1

	// CodecJPEG is baseline JPEG.
	CodecJPEG

	// CodecGIF is GIF with the Plan 9 palette.
	CodecGIF

	// CodecBMP is uncompressed BMP.
	CodecBMP

	// CodecTIFF is deflate-compressed TIFF.
	CodecTIFF

	// CodecWebP is WebP. Decode only.
	CodecWebP
)

var codecNames = map[string]Codec{
	"png":  CodecPNG,
	"jpg":  CodecJPEG,
	"jpeg": CodecJPEG,
	"gif":  CodecGIF,
	"bmp":  CodecBMP,
	"tif":  CodecTIFF,
	"tiff": CodecTIFF,
	"webp": CodecWebP,
}

// ParseCodec resolves a format name ("png", "jpeg", ...) case-insensitively.
// A leading dot is accepted so file extensions can be passed directly.
func ParseCodec(name string) (Codec, error) {
	c, ok := codecNames[strings.TrimPrefix(strings.ToLower(name), ".")]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return c, nil
}

// CodecForPath returns the codec implied by the file extension of path.
func CodecForPath(path string) (Codec, error) {
	return ParseCodec(filepath.Ext(path))
}

// String returns the canonical name of the codec.
func (c Codec) String() string {
	switch c {
	case CodecPNG:
		return "png"
	case CodecJPEG:
		return "jpeg"
	case CodecGIF:
		return "gif"
	case CodecBMP:
		return "bmp"
	case CodecTIFF:
		return "tiff"
	case CodecWebP:
		return "webp"
	default:
		return "unknown"
	}
}

// Extension returns the conventional file extension, including the dot.
func (c Codec) Extension() string {
	switch c {
	case CodecJPEG:
		return ".jpg"
	case CodecPNG, CodecGIF, CodecBMP, CodecTIFF, CodecWebP:
		return "." + c.String()
	default:
		return ""
	}
}

// CanEncode reports whether Encode supports the codec.
func (c Codec) CanEncode() bool {
	switch c {
	case CodecPNG, CodecJPEG, CodecGIF, CodecBMP, CodecTIFF:
		return true
	default:
		return false
	}
}

// DecodeFile decodes the image file at path, detecting the format from its
// content.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Decode decodes an image from r, detecting the format from its content.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrInvalidDimensions
	}
	return img, nil
}

// Save encodes b with codec c and writes it to path.
func (b *ImageBuf) Save(path string, c Codec) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := b.Encode(f, c); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Encode writes b to w in the given format.
func (b *ImageBuf) Encode(w io.Writer, c Codec) error {
	img := b.ToStdImage()

	var err error
	switch c {
	case CodecPNG:
		err = png.Encode(w, img)
	case CodecJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: DefaultJPEGQuality})
	case CodecGIF:
		err = gif.Encode(w, img, nil)
	case CodecBMP:
		err = bmp.Encode(w, img)
	case CodecTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: cannot encode %s", ErrUnsupportedFormat, c)
	}
	if err != nil {
		return fmt.Errorf("image: encode %s: %w", c, err)
	}
	return nil
}

// drawSrc converts src into dst, un-premultiplying and expanding palettes.
func drawSrc(dst *image.NRGBA, src image.Image) {
	draw.Draw(dst, dst.Rect, src, src.Bounds().Min, draw.Src)
}
