// Package pipeline builds a gallery: discovery, staging, font handling,
// an early manifest, thumbnails and the final manifest.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/config"
	"github.com/hluk/mkgallery/internal/font"
	"github.com/hluk/mkgallery/internal/gallery"
	"github.com/hluk/mkgallery/internal/logging"
	"github.com/hluk/mkgallery/internal/manifest"
	"github.com/hluk/mkgallery/internal/materialize"
	"github.com/hluk/mkgallery/internal/thumbnail"
	"github.com/hluk/mkgallery/internal/walker"
)

// ErrNoItems is returned when no input file is a known media kind.
var ErrNoItems = errors.New("no media files found")

// Options are the run inputs that are not configuration.
type Options struct {
	// Inputs are files, directories or URLs. Empty means the current
	// directory.
	Inputs []string
	// Progress receives the discovery spinner and the thumbnail progress
	// bar. nil hides both.
	Progress io.Writer

	// FontBackend and ThumbnailBackend override the configured backends.
	FontBackend      font.Backend
	ThumbnailBackend thumbnail.Backend
}

// Report summarizes a finished run.
type Report struct {
	Gallery  string
	Scan     ScanStats
	Manifest manifest.Stats
	Strategy materialize.Strategy
	Staging  materialize.Stats

	FontsRendered int
	FontFailures  int
	FontRules     int

	ThumbnailBackend string
	Thumbnails       thumbnail.Result
	Elapsed          time.Duration
}

// Pipeline builds one gallery.
type Pipeline struct {
	cfg    config.Config
	opts   Options
	logger *log.Logger
}

// New creates a configured pipeline.
func New(cfg config.Config, opts Options) *Pipeline {
	if len(opts.Inputs) == 0 {
		opts.Inputs = []string{"."}
	}
	return &Pipeline{
		cfg:    cfg,
		opts:   opts,
		logger: logging.Get("pipeline"),
	}
}

// Run builds the gallery. Setup problems abort before any manifest is
// written; problems with single files are logged and skipped.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	// Step 1: Check inputs and backends.
	if err := checkInputs(p.opts.Inputs); err != nil {
		return nil, err
	}
	g, err := gallery.Open(p.cfg.Output)
	if err != nil {
		return nil, err
	}
	report := &Report{Gallery: g.Root()}

	fontBackend := p.opts.FontBackend
	if fontBackend == nil {
		fontBackend = font.SFNT{}
	}
	fonts, err := font.NewProcessor(g, fontBackend, font.Options{
		Render: p.cfg.Font.Render,
		Size:   p.cfg.Font.Size,
		Text:   p.cfg.Font.Text,
	})
	if err != nil {
		return nil, err
	}

	thumbBackend := p.opts.ThumbnailBackend
	if thumbBackend == nil && p.cfg.Resolution > 0 {
		thumbBackend, err = thumbnail.Select(p.cfg.Thumbnail.Backend)
		if err != nil {
			p.logger.Warn("thumbnails disabled", "err", err)
		}
	}
	if thumbBackend != nil {
		report.ThumbnailBackend = thumbBackend.Name()
	}
	thumbs, err := thumbnail.New(g, thumbBackend, thumbnail.Options{
		Resolution:    p.cfg.Resolution,
		Format:        p.cfg.Thumbnail.Format,
		Quality:       p.cfg.Thumbnail.Quality,
		Workers:       p.cfg.Workers,
		Progress:      p.opts.Progress,
		ProgressWidth: p.cfg.ProgressWidth,
	})
	if err != nil {
		return nil, err
	}

	// Step 2: Discover files, never descending into our own output.
	refs, scan := p.scan(walker.New(g.GeneratedDirs()...), p.opts.Inputs)
	report.Scan = scan
	p.logger.Debug("discovered", "files", scan.Files, "media", len(refs))
	if len(refs) == 0 {
		return nil, ErrNoItems
	}

	// Step 3: Stage.
	if err := g.PrepareAssets(p.cfg.Force); err != nil {
		return nil, err
	}
	stager, err := materialize.New(g, materialize.Options{Copy: p.cfg.Copy, Local: p.cfg.Local})
	if err != nil {
		return nil, err
	}
	report.Strategy = stager.Strategy()
	fonts.SetReserver(stager)

	m := manifest.New(p.cfg.Title)
	seen := make(map[*asset.Item]bool)
	for _, ref := range refs {
		it, err := stager.Stage(ref)
		if err != nil {
			p.logger.Warn("cannot stage file", "path", ref, "err", err)
			continue
		}
		if it == nil || seen[it] {
			continue
		}
		seen[it] = true

		// Step 4: Fonts.
		if it.Kind == asset.Font {
			it = fonts.Process(it)
		}
		if !m.Add(it) {
			p.logger.Warn("duplicate item, keeping the first", "key", it.Key, "path", ref)
		}
	}
	report.Staging = stager.Stats()
	report.FontsRendered = fonts.Rendered()
	report.FontFailures = fonts.Failed()
	report.FontRules = fonts.Stylesheet().Len()
	if m.Len() == 0 {
		return nil, ErrNoItems
	}

	// Step 5: Early write, so the gallery opens while thumbnails are made.
	if err := p.write(g, m, fonts.Stylesheet()); err != nil {
		return nil, err
	}

	// Step 6: Thumbnails.
	res, err := thumbs.Generate(ctx, m.Sorted())
	report.Thumbnails = res
	if err != nil {
		return nil, fmt.Errorf("thumbnails: %w", err)
	}

	// Step 7: Final write.
	if err := manifest.WriteJS(g, m); err != nil {
		return nil, err
	}

	report.Manifest = m.ComputeStats()
	report.Elapsed = time.Since(start)
	return report, nil
}

func (p *Pipeline) write(g *gallery.Gallery, m *manifest.Manifest, sheet *font.Stylesheet) error {
	if err := manifest.WriteJS(g, m); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := g.WriteFile(gallery.StylesheetFile, sheet.Encode()); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}
	return nil
}
