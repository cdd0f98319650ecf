// Package imagesource decodes picked photos and detects whether a newly
// picked photo differs from the current one.
package imagesource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"inkframe/pkg/graphics"

	"github.com/cespare/xxhash/v2"
)

// ErrEmpty is returned for empty input.
var ErrEmpty = errors.New("empty image data")

// Image is a decoded photo. It is immutable once loaded.
type Image struct {
	Bitmap image.Image
	// Size is the pixel size of Bitmap.
	Size   graphics.Size
	Format string
	// Encoded holds the original bytes; change detection compares them.
	Encoded     []byte
	Fingerprint uint64
}

// Decode decodes an image in any registered format.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	bitmap, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := bitmap.Bounds()
	return &Image{
		Bitmap:      bitmap,
		Size:        graphics.Sz(float64(b.Dx()), float64(b.Dy())),
		Format:      format,
		Encoded:     data,
		Fingerprint: xxhash.Sum64(data),
	}, nil
}

// Load reads and decodes an image file.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// FromBitmap wraps an already decoded bitmap. There are no encoded bytes,
// so the fingerprint is taken over the pixels of RGBA-family images and
// two wrapped bitmaps only compare equal when they are the same value.
func FromBitmap(bitmap image.Image) *Image {
	b := bitmap.Bounds()
	img := &Image{
		Bitmap: bitmap,
		Size:   graphics.Sz(float64(b.Dx()), float64(b.Dy())),
		Format: "bitmap",
	}
	switch p := bitmap.(type) {
	case *image.RGBA:
		img.Fingerprint = xxhash.Sum64(p.Pix)
	case *image.NRGBA:
		img.Fingerprint = xxhash.Sum64(p.Pix)
	}
	return img
}

// SameAs reports whether other holds the same encoded image. Re-picking
// the same file is not a change.
func (img *Image) SameAs(other *Image) bool {
	if img == nil || other == nil {
		return img == other
	}
	if img == other {
		return true
	}
	if img.Encoded == nil || other.Encoded == nil {
		return false
	}
	return img.Fingerprint == other.Fingerprint && bytes.Equal(img.Encoded, other.Encoded)
}
