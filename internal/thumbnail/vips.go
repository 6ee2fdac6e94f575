//go:build vips

package thumbnail

import (
	"fmt"
	"image"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/hluk/mkgallery/internal/logging"
)

var startVips = sync.OnceFunc(func() {
	logger := logging.Get("vips")
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		if level <= vips.LogLevelWarning {
			logger.Warn(msg, "domain", domain)
		} else {
			logger.Debug(msg, "domain", domain)
		}
	}, vips.LogLevelWarning)

	vips.Startup(&vips.Config{
		MaxCacheMem:  50 * 1024 * 1024,
		MaxCacheSize: 100,
	})
	logger.Debug("libvips started", "version", vips.Version)
})

// libvips shrinks on load, which keeps memory flat for large photos.
type vipsBackend struct{}

func newVips() Backend { return vipsBackend{} }

func (vipsBackend) Name() string { return "vips" }

func (vipsBackend) Available() bool {
	startVips()
	return true
}

func (vipsBackend) Fit(path string, box int) (image.Image, error) {
	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	if ref.Width() > box || ref.Height() > box {
		if err := ref.Thumbnail(box, box, vips.InterestingNone); err != nil {
			return nil, fmt.Errorf("vips resize: %w", err)
		}
	}
	if ref.HasAlpha() {
		if err := ref.Flatten(&vips.Color{R: 255, G: 255, B: 255}); err != nil {
			return nil, fmt.Errorf("vips flatten: %w", err)
		}
	}

	img, err := ref.ToImage(vips.NewDefaultExportParams())
	if err != nil {
		return nil, fmt.Errorf("vips export: %w", err)
	}
	return flatten(img), nil
}
