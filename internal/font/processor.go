package font

import (
	"fmt"
	"os"
	"path"

	"github.com/charmbracelet/log"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/encoder"
	"github.com/hluk/mkgallery/internal/gallery"
	"github.com/hluk/mkgallery/internal/logging"
)

// RenderSuffix is appended to the staged path of a font to name its
// rendered sample.
const RenderSuffix = ".png"

// Options configure a Processor.
type Options struct {
	// Render replaces each font by an image of Text drawn at Size pixels.
	Render bool
	Size   int
	Text   string
}

// Reserver hands out unique paths below the asset directory.
type Reserver interface {
	Reserve(rel, source string) string
}

// Processor attaches display names to font items and either collects
// stylesheet rules for them or replaces them by rendered samples.
type Processor struct {
	opts    Options
	backend Backend
	gallery *gallery.Gallery
	png     encoder.Encoder
	logger  *log.Logger
	names   Reserver

	sheet    *Stylesheet
	rendered int
	failed   int
}

// NewProcessor checks the backend once. An unavailable backend is fatal in
// render mode only; otherwise fonts are listed without display names.
func NewProcessor(g *gallery.Gallery, backend Backend, opts Options) (*Processor, error) {
	p := &Processor{
		opts:    opts,
		backend: backend,
		gallery: g,
		png:     &encoder.PNGEncoder{},
		logger:  logging.Get("font"),
		sheet:   NewStylesheet(),
	}
	if backend == nil || !backend.Available() {
		if opts.Render {
			return nil, ErrBackendUnavailable
		}
		p.backend = nil
		p.logger.Warn("font backend unavailable, fonts are listed without names")
		return p, nil
	}
	p.logger.Debug("font backend", "backend", backend.Name(), "render", opts.Render)
	return p, nil
}

// SetReserver makes rendered samples claim their names through r, so they
// never overwrite or block a staged asset of the same name.
func (p *Processor) SetReserver(r Reserver) { p.names = r }

// Process handles one font item and returns the item the manifest should
// list in its place: it itself with a display name, or in render mode a
// new image item linking back to it. A font that cannot be rendered is
// listed as in the default mode.
func (p *Processor) Process(it *asset.Item) *asset.Item {
	var data []byte
	if !it.Remote && p.backend != nil {
		var err error
		data, err = os.ReadFile(it.Source)
		if err != nil {
			p.failed++
			p.logger.Warn("cannot read font", "path", it.Source, "err", err)
			data = nil
		} else if name, err := p.backend.Describe(data); err != nil {
			p.logger.Warn("cannot read font name", "path", it.Source, "err", err)
		} else {
			it.Alias = name
		}
	}

	if p.opts.Render && data != nil {
		out, err := p.render(it, data)
		if err == nil {
			p.rendered++
			return out
		}
		p.logger.Warn("cannot render font", "path", it.Source, "err", err)
	}
	if data != nil && (it.Alias == "" || p.opts.Render) {
		p.failed++
	}

	family := it.Alias
	if family == "" {
		family = it.Key
	}
	p.sheet.Add(family, it.Key)
	return it
}

func (p *Processor) render(it *asset.Item, data []byte) (*asset.Item, error) {
	img, err := p.backend.Render(data, p.opts.Size, p.opts.Text)
	if err != nil {
		return nil, err
	}
	encoded, err := p.png.Encode(img, 0)
	if err != nil {
		return nil, fmt.Errorf("encode sample: %w", err)
	}

	rel := it.Rel + RenderSuffix
	if p.names != nil {
		rel = p.names.Reserve(rel, "sample:"+it.Source)
	}
	name := path.Join(gallery.AssetDir, rel)
	if err := p.gallery.WriteFile(name, encoded); err != nil {
		return nil, err
	}
	return &asset.Item{
		Key:    name,
		Kind:   asset.Image,
		Source: p.gallery.Path(gallery.AssetDir, rel),
		Rel:    rel,
		Alias:  it.Alias,
		Link:   it.Key,
	}, nil
}

// Stylesheet returns the rules collected for fonts that were not rendered.
func (p *Processor) Stylesheet() *Stylesheet { return p.sheet }

// Rendered returns the number of fonts replaced by samples.
func (p *Processor) Rendered() int { return p.rendered }

// Failed returns the number of fonts whose name or sample could not be
// produced.
func (p *Processor) Failed() int { return p.failed }
