// Package font reads display names from font files, renders sample text
// with them and builds the @font-face stylesheet of a gallery.
package font

import (
	"errors"
	"image"
)

// ErrBackendUnavailable is returned when render mode is requested but the
// backend cannot rasterize text.
var ErrBackendUnavailable = errors.New("font rendering backend unavailable")

// Backend reads font metadata and rasterizes text. Availability is checked
// once, when a Processor is created.
type Backend interface {
	Name() string
	Available() bool

	// Describe returns the family and subfamily of the font in data,
	// joined by a space, e.g. "Example Sans Bold".
	Describe(data []byte) (string, error)

	// Render draws text in black on white at size pixels. Lines are
	// separated by '\n'.
	Render(data []byte, size int, text string) (image.Image, error)
}
