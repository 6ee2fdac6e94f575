//go:build !vips

package thumbnail

import "image"

// noVips stands in for the libvips backend in builds without the vips tag.
type noVips struct{}

func newVips() Backend { return noVips{} }

func (noVips) Name() string    { return "vips" }
func (noVips) Available() bool { return false }

func (noVips) Fit(string, int) (image.Image, error) {
	return nil, ErrBackendUnavailable
}
