// Package export persists flattened images.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"inkframe/internal/logging"
)

// Failure reasons. Both are reported to the caller, never swallowed.
var (
	ErrRenderingFailed  = errors.New("rendering failed")
	ErrPermissionDenied = errors.New("permission denied")
)

// Sink receives a flattened image.
type Sink interface {
	Save(ctx context.Context, img image.Image) error
}

// Encode writes img to w using opts.
func Encode(w io.Writer, img image.Image, opts Options) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: nothing to encode", ErrRenderingFailed)
	}
	opts, err := opts.Normalize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderingFailed, err)
	}

	switch opts.Format {
	case "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: opts.Quality})
	default:
		enc := png.Encoder{CompressionLevel: pngLevel(opts.Compression)}
		err = enc.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", ErrRenderingFailed, opts.Format, err)
	}
	return nil
}

func pngLevel(c int) png.CompressionLevel {
	switch {
	case c <= 0:
		return png.NoCompression
	case c <= 3:
		return png.BestSpeed
	case c <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// classify maps file system errors to the sink's failure reasons.
func classify(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}

// WriteFile encodes img into path, creating parent directories. The format
// follows the path's extension when it names one.
func WriteFile(path string, img image.Image, opts Options) error {
	opts = opts.FormatForPath(path)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return classify(fmt.Errorf("failed to create directory: %w", err))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return classify(fmt.Errorf("failed to create file: %w", err))
	}
	return finish(f, path, img, opts)
}

func finish(f *os.File, path string, img image.Image, opts Options) error {
	if err := Encode(f, img, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return classify(fmt.Errorf("failed to write file: %w", err))
	}
	return nil
}

// FileSink saves each image as a new timestamped file in Dir.
type FileSink struct {
	Dir     string
	Options Options
	// Prefix starts every file name. Default "inkframe".
	Prefix string
	// Now is the clock used for file names. Default time.Now.
	Now func() time.Time
}

// NewFileSink returns a sink writing into dir.
func NewFileSink(dir string, opts Options) *FileSink {
	return &FileSink{Dir: dir, Options: opts}
}

// Save implements Sink.
func (s *FileSink) Save(ctx context.Context, img image.Image) error {
	_, err := s.SaveFile(ctx, img)
	return err
}

// SaveFile writes img and returns the path it was written to. An existing
// file is never overwritten; a numeric suffix is added instead.
func (s *FileSink) SaveFile(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opts, err := s.Options.Normalize()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderingFailed, err)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", classify(fmt.Errorf("failed to create directory: %w", err))
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	prefix := s.Prefix
	if prefix == "" {
		prefix = "inkframe"
	}
	base := fmt.Sprintf("%s-%s", prefix, now().Format("20060102-150405"))

	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s-%d", base, i)
		}
		path := filepath.Join(s.Dir, name+opts.Extension())
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", classify(fmt.Errorf("failed to create file: %w", err))
		}
		if err := finish(f, path, img, opts); err != nil {
			return "", err
		}
		logging.Logger().Info("image saved", "path", path, "format", opts.Format)
		return path, nil
	}
}

// WriterSink encodes images to a writer.
type WriterSink struct {
	W       io.Writer
	Options Options
}

// Save implements Sink.
func (s WriterSink) Save(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Encode(s.W, img, s.Options)
}
