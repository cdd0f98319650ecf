package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Options controls how a flattened image is encoded.
type Options struct {
	// Format is "png" or "jpeg".
	Format string

	// Quality for JPEG (1-100)
	Quality int

	// Compression for PNG (0-9, where 0 is no compression)
	Compression int
}

// DefaultOptions returns default export options.
func DefaultOptions() Options {
	return Options{
		Format:      "png",
		Quality:     90,
		Compression: 6,
	}
}

// PNG returns export options for PNG format.
func PNG() Options {
	return Options{
		Format:      "png",
		Compression: 6,
	}
}

// JPEG returns export options for JPEG format with quality.
func JPEG(quality int) Options {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return Options{
		Format:  "jpeg",
		Quality: quality,
	}
}

// Normalize canonicalizes the format name and checks the ranges.
func (o Options) Normalize() (Options, error) {
	switch strings.ToLower(o.Format) {
	case "", "png":
		o.Format = "png"
		if o.Compression < 0 || o.Compression > 9 {
			return o, fmt.Errorf("png compression %d out of range 0-9", o.Compression)
		}
	case "jpeg", "jpg":
		o.Format = "jpeg"
		if o.Quality == 0 {
			o.Quality = DefaultOptions().Quality
		}
		if o.Quality < 1 || o.Quality > 100 {
			return o, fmt.Errorf("jpeg quality %d out of range 1-100", o.Quality)
		}
	default:
		return o, fmt.Errorf("unsupported export format %q", o.Format)
	}
	return o, nil
}

// Extension returns the file extension for the format, dot included.
func (o Options) Extension() string {
	if o.Format == "jpeg" || o.Format == "jpg" {
		return ".jpg"
	}
	return ".png"
}

// FormatForPath picks the format from a file extension, keeping o's
// quality and compression.
func (o Options) FormatForPath(path string) Options {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		o.Format = "jpeg"
	case ".png":
		o.Format = "png"
	}
	return o
}
