// Package thumbnail scales staged images into the gallery thumbnail
// directory.
package thumbnail

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	// Decoders beyond the ones imaging registers.
	_ "golang.org/x/image/webp"

	"github.com/hluk/mkgallery/internal/config"
)

// ErrBackendUnavailable is returned when the requested backend cannot run
// in this build or on this machine.
var ErrBackendUnavailable = errors.New("thumbnail backend unavailable")

// Backend decodes an image and fits it into a square box.
type Backend interface {
	Name() string
	Available() bool

	// Fit returns the image at path scaled proportionally so that neither
	// side exceeds box. Images already inside the box keep their size.
	// The result is opaque.
	Fit(path string, box int) (image.Image, error)
}

// Select returns the backend for a configured name. "auto" prefers libvips
// when this build includes it.
func Select(name string) (Backend, error) {
	switch name {
	case config.BackendImaging:
		return Imaging{}, nil
	case config.BackendVips:
		b := newVips()
		if !b.Available() {
			return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, name)
		}
		return b, nil
	case config.BackendAuto, "":
		if b := newVips(); b.Available() {
			return b, nil
		}
		return Imaging{}, nil
	default:
		return nil, fmt.Errorf("unknown thumbnail backend %q", name)
	}
}

// Imaging is the pure Go backend.
type Imaging struct{}

func (Imaging) Name() string    { return "imaging" }
func (Imaging) Available() bool { return true }

func (Imaging) Fit(path string, box int) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	img = imaging.Fit(img, box, box, imaging.Lanczos)
	return flatten(img), nil
}

// flatten composes img over white, dropping transparency and palettes.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Point{}, 1.0)
}
