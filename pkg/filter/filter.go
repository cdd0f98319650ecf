// Package filter implements the photo color filters offered by the editor.
package filter

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"
	"time"

	"inkframe/internal/logging"
)

// ErrFilterFailed is returned when a filter produces no output.
var ErrFilterFailed = errors.New("filter failed")

// ID names a filter.
type ID string

const (
	None     ID = "none"
	Sepia    ID = "sepia"
	Chrome   ID = "chrome"
	Noir     ID = "noir"
	Vignette ID = "vignette"
	Bloom    ID = "bloom"
)

var labels = map[ID]string{
	None:     "Original",
	Sepia:    "Sepia",
	Chrome:   "Chrome",
	Noir:     "Noir",
	Vignette: "Vignette",
	Bloom:    "Bloom",
}

// IDs lists the filters in menu order.
func IDs() []ID {
	return []ID{Sepia, Chrome, Noir, Vignette, Bloom, None}
}

// Label returns the display name of a filter.
func (id ID) Label() string {
	if l, ok := labels[id]; ok {
		return l
	}
	return string(id)
}

// Parse resolves a filter id or label, ignoring case.
func Parse(name string) (ID, error) {
	name = strings.TrimSpace(name)
	for id, label := range labels {
		if strings.EqualFold(name, string(id)) || strings.EqualFold(name, label) {
			return id, nil
		}
	}
	return None, fmt.Errorf("unknown filter %q", name)
}

// Service applies filters. The zero value is not ready; use NewService.
type Service struct {
	SepiaIntensity    float64
	VignetteIntensity float64
	// VignetteRadius is the fraction of the half diagonal left untouched.
	VignetteRadius float64
	BloomIntensity float64
	// BloomRadius is the blur radius in pixels.
	BloomRadius int
}

// NewService returns a service with the default filter parameters.
func NewService() *Service {
	return &Service{
		SepiaIntensity:    1,
		VignetteIntensity: 1,
		VignetteRadius:    0.5,
		BloomIntensity:    1,
		BloomRadius:       5,
	}
}

// Apply runs filter id over img. None returns img itself. The result of
// any other filter is a new image with the same bounds; img is not
// modified.
func (s *Service) Apply(id ID, img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no input image", ErrFilterFailed)
	}
	if id == None {
		return img, nil
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty input image", ErrFilterFailed)
	}

	start := time.Now()
	var out *image.NRGBA
	switch id {
	case Sepia:
		out = applyMatrix(img, sepiaMatrix(s.SepiaIntensity))
	case Noir:
		out = applyMatrix(img, noirMatrix())
	case Chrome:
		out = chrome(img)
	case Vignette:
		out = vignette(img, s.VignetteIntensity, s.VignetteRadius)
	case Bloom:
		out = bloom(img, s.BloomIntensity, s.BloomRadius)
	default:
		return nil, fmt.Errorf("%w: unknown filter %q", ErrFilterFailed, string(id))
	}

	logging.Logger().Debug("filter applied",
		"filter", string(id),
		"width", out.Bounds().Dx(),
		"height", out.Bounds().Dy(),
		"elapsed", time.Since(start))
	return out, nil
}

// toNRGBA copies img into a fresh straight-alpha image with the same bounds.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}
