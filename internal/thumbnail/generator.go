package thumbnail

import (
	"context"
	"fmt"
	"io"
	"path"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/encoder"
	"github.com/hluk/mkgallery/internal/gallery"
	"github.com/hluk/mkgallery/internal/logging"
)

// Options configure a Generator.
type Options struct {
	// Resolution is the edge of the box thumbnails fit into. 0 disables
	// generation.
	Resolution int
	Format     string
	Quality    int
	// Workers bounds concurrent decodes; 0 means one per CPU.
	Workers int

	// Progress receives the progress bar; nil hides it.
	Progress      io.Writer
	ProgressWidth int
}

// Result counts what a Generate call did.
type Result struct {
	Generated int
	// Skipped counts images that never reached the backend: vector images,
	// or all images when the backend is unavailable.
	Skipped int
	Failed  int
}

// Generator writes one thumbnail per local raster image.
type Generator struct {
	gallery *gallery.Gallery
	backend Backend
	enc     encoder.Encoder
	opts    Options
	logger  *log.Logger
}

// New creates a generator. A nil or unavailable backend is accepted:
// Generate then clears old thumbnails and skips every image.
func New(g *gallery.Gallery, backend Backend, opts Options) (*Generator, error) {
	enc, err := encoder.NewRegistry().Thumbnail(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if backend != nil && !backend.Available() {
		backend = nil
	}
	return &Generator{
		gallery: g,
		backend: backend,
		enc:     enc,
		opts:    opts,
		logger:  logging.Get("thumbnail"),
	}, nil
}

// Name returns the path of the thumbnail for it, relative to the thumbnail
// directory.
func (g *Generator) Name(it *asset.Item) string {
	return it.Rel + "." + g.enc.Extension()
}

// Generate removes thumbnails left from earlier runs and, unless disabled,
// sets ThumbnailSize on every image item whose thumbnail was written.
// Items are independent: a failing image is logged and the rest proceed.
func (g *Generator) Generate(ctx context.Context, items []*asset.Item) (Result, error) {
	var res Result

	if err := g.gallery.ResetThumbnails(); err != nil {
		return res, err
	}
	if g.opts.Resolution <= 0 {
		g.logger.Debug("thumbnails disabled")
		return res, nil
	}

	var targets []*asset.Item
	for _, it := range items {
		if it.Kind != asset.Image || it.Remote {
			continue
		}
		if asset.IsVector(it.Rel) {
			g.logger.Debug("no thumbnail for vector image", "path", it.Source)
			res.Skipped++
			continue
		}
		targets = append(targets, it)
	}
	if len(targets) == 0 {
		return res, nil
	}
	if g.backend == nil {
		g.logger.Warn("no thumbnail backend available, skipping thumbnails", "images", len(targets))
		res.Skipped += len(targets)
		return res, nil
	}

	fs, err := g.gallery.Thumbnails()
	if err != nil {
		return res, err
	}

	bar := g.progressBar(len(targets))
	var generated, failed atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)
	for _, it := range targets {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			size, err := g.Thumbnail(fs, it)
			if err != nil {
				failed.Add(1)
				g.logger.Warn("cannot create thumbnail", "path", it.Source, "err", err)
			} else {
				generated.Add(1)
				it.ThumbnailSize = &size
			}
			_ = bar.Add(1)
			return nil
		})
	}
	err = eg.Wait()
	_ = bar.Finish()

	res.Generated = int(generated.Load())
	res.Failed = int(failed.Load())
	return res, err
}

// Thumbnail fits the image of it into the configured box, writes it under
// fs and returns the thumbnail size.
func (g *Generator) Thumbnail(fs billy.Filesystem, it *asset.Item) (asset.Size, error) {
	img, err := g.backend.Fit(it.Source, g.opts.Resolution)
	if err != nil {
		return asset.Size{}, err
	}
	data, err := g.enc.Encode(img, g.opts.Quality)
	if err != nil {
		return asset.Size{}, fmt.Errorf("encode: %w", err)
	}
	if err := gallery.WriteAtomic(fs, path.Clean(g.Name(it)), data); err != nil {
		return asset.Size{}, err
	}
	b := img.Bounds()
	return asset.Size{Width: b.Dx(), Height: b.Dy()}, nil
}

func (g *Generator) progressBar(total int) *progressbar.ProgressBar {
	w := g.opts.Progress
	if w == nil {
		w = io.Discard
	}
	width := g.opts.ProgressWidth
	if width <= 0 {
		width = 40
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(width),
		progressbar.OptionSetDescription("Creating thumbnails"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}
