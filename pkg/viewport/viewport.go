// Package viewport computes the on-screen container an image is laid out in.
//
// The container is always derived from the image and the available space;
// it is never stored. The live view and the compositor both call
// ContainerSize so exported pixels line up with what was displayed.
package viewport

import "inkframe/pkg/graphics"

// Default panel heights reserved above and below the canvas.
const (
	DefaultTopPanel    = 60
	DefaultBottomPanel = 150
)

// Insets are the screen edges unavailable to content.
type Insets struct {
	Top, Left, Bottom, Right float64
}

// Layout describes the screen the editor runs on.
type Layout struct {
	Screen      graphics.Size
	Insets      Insets
	TopPanel    float64
	BottomPanel float64
}

// DefaultLayout returns a layout for the given screen with the default panels
// and no insets.
func DefaultLayout(screen graphics.Size) Layout {
	return Layout{
		Screen:      screen,
		TopPanel:    DefaultTopPanel,
		BottomPanel: DefaultBottomPanel,
	}
}

// WithScreen returns l with a different screen size.
func (l Layout) WithScreen(screen graphics.Size) Layout {
	l.Screen = screen
	return l
}

// Available returns the space left for the canvas: the full screen width
// and the screen height minus insets and panels. Negative results are
// floored at zero.
func (l Layout) Available() graphics.Size {
	h := l.Screen.Height - l.Insets.Top - l.Insets.Bottom - l.TopPanel - l.BottomPanel
	w := l.Screen.Width
	if h < 0 {
		h = 0
	}
	if w < 0 {
		w = 0
	}
	return graphics.Size{Width: w, Height: h}
}

// ContainerSize fits an image of the given size into available space.
// The width fills the available width; if the aspect-correct height does
// not fit, both dimensions shrink to keep the aspect ratio. A missing or
// degenerate image, or no available space, yields the zero size.
func ContainerSize(image, available graphics.Size) graphics.Size {
	if image.IsEmpty() || available.IsEmpty() {
		return graphics.Size{}
	}

	width := available.Width
	aspect := image.Height / image.Width
	proposed := width * aspect
	height := proposed
	if available.Height < proposed {
		height = available.Height
		width *= height / proposed
	}
	return graphics.Size{Width: width, Height: height}
}
