// Package materialize stages local assets inside the gallery asset
// directory and assigns every item its manifest key.
package materialize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/gallery"
	"github.com/hluk/mkgallery/internal/logging"
)

// Strategy selects how local files are staged. One strategy applies to the
// whole run.
type Strategy int

const (
	// Link stages symbolic links to the originals.
	Link Strategy = iota
	// Copy stages full copies.
	Copy
)

func (s Strategy) String() string {
	if s == Copy {
		return "copy"
	}
	return "link"
}

// Options configure a Materializer.
type Options struct {
	// Copy forces full copies instead of links.
	Copy bool
	// Local skips staging and keys local items by file:// URLs.
	Local bool
}

// Stats summarizes what was staged.
type Stats struct {
	Linked      int
	Copied      int
	CopiedBytes int64
	Renamed     int
}

// Materializer stages items and keeps keys unique.
type Materializer struct {
	opts      Options
	strategy  Strategy
	assets    billy.Filesystem
	assetRoot string
	logger    *log.Logger

	bySource map[string]*asset.Item
	byRel    map[string]string
	stats    Stats
}

// New prepares staging into the asset directory of g. Unless copies are
// requested, symbolic link support is probed once and the whole run falls
// back to copying when links cannot be created.
func New(g *gallery.Gallery, opts Options) (*Materializer, error) {
	m := &Materializer{
		opts:      opts,
		strategy:  Link,
		assetRoot: g.Path(gallery.AssetDir),
		logger:    logging.Get("materialize"),
		bySource:  make(map[string]*asset.Item),
		byRel:     make(map[string]string),
	}
	if opts.Local {
		return m, nil
	}

	fs, err := g.Assets()
	if err != nil {
		return nil, err
	}
	m.assets = fs

	if opts.Copy {
		m.strategy = Copy
	} else if err := probeSymlink(fs); err != nil {
		m.logger.Warn("symbolic links unsupported, copying files instead", "err", err)
		m.strategy = Copy
	}
	m.logger.Debug("staging strategy", "strategy", m.strategy)
	return m, nil
}

func probeSymlink(fs billy.Filesystem) error {
	const probe = ".mkgallery-link-probe"
	_ = fs.Remove(probe)
	if err := fs.Symlink(".", probe); err != nil {
		return err
	}
	return fs.Remove(probe)
}

// Strategy returns the staging strategy in effect.
func (m *Materializer) Strategy() Strategy { return m.strategy }

// Stats returns counters of the staging done so far.
func (m *Materializer) Stats() Stats { return m.stats }

// Stage classifies ref and, for local references, stages it. It returns
// nil for references of unknown kind. A source staged earlier in the run
// returns the item created then.
func (m *Materializer) Stage(ref string) (*asset.Item, error) {
	kind := asset.Classify(ref)
	if kind == asset.Unknown {
		return nil, nil
	}

	if asset.IsRemote(ref) {
		if it, ok := m.bySource[ref]; ok {
			return it, nil
		}
		it := &asset.Item{Key: ref, Kind: kind, Remote: true, Source: ref}
		m.bySource[ref] = it
		return it, nil
	}

	abs, err := filepath.Abs(ref)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	if it, ok := m.bySource[abs]; ok {
		return it, nil
	}

	// Local items have no staged copy, so their thumbnail path is derived
	// from the absolute path to stay stable across working directories.
	rel := SafeRel(ref)
	if m.opts.Local {
		rel = SafeRel(abs)
	}
	if rel == "" {
		return nil, fmt.Errorf("no usable path for %s", ref)
	}
	rel = m.Reserve(rel, abs)
	key := m.keyFor(rel, abs)

	if !m.opts.Local {
		if err := m.stage(abs, rel); err != nil {
			delete(m.byRel, rel)
			return nil, err
		}
	}

	it := &asset.Item{Key: key, Kind: kind, Source: abs, Rel: rel}
	m.bySource[abs] = it
	m.logger.Debug("staged", "key", key, "kind", kind)
	return it, nil
}

// Reserve claims rel for source and returns the relative path actually
// assigned. Staged assets and thumbnails share these names, so a path
// already claimed by another source is disambiguated with a digest of
// source.
func (m *Materializer) Reserve(rel, source string) string {
	if other, taken := m.byRel[rel]; taken && other != source {
		renamed := disambiguate(rel, source)
		m.stats.Renamed++
		m.logger.Warn("name collision, renamed", "path", rel, "other", other, "as", renamed)
		rel = renamed
	}
	m.byRel[rel] = source
	return rel
}

func (m *Materializer) keyFor(rel, abs string) string {
	if m.opts.Local {
		return LocalURL(abs)
	}
	return path.Join(gallery.AssetDir, rel)
}

func (m *Materializer) stage(abs, rel string) error {
	if dir := path.Dir(rel); dir != "." {
		if err := m.assets.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	if m.strategy == Link {
		linkDir := filepath.Dir(filepath.Join(m.assetRoot, filepath.FromSlash(rel)))
		target, err := filepath.Rel(resolveDir(linkDir), resolveDir(filepath.Dir(abs)))
		if err != nil {
			target = abs
		} else {
			target = filepath.Join(target, filepath.Base(abs))
		}
		if err := m.assets.Symlink(target, rel); err != nil {
			return fmt.Errorf("link %s: %w", rel, err)
		}
		m.stats.Linked++
		return nil
	}

	n, err := copyFile(m.assets, abs, rel)
	if err != nil {
		return fmt.Errorf("copy %s: %w", rel, err)
	}
	m.stats.Copied++
	m.stats.CopiedBytes += n
	return nil
}

// resolveDir returns dir with symbolic links resolved. Relative link
// targets are interpreted from the real location of the link, so both ends
// must be resolved before computing one.
func resolveDir(dir string) string {
	if r, err := filepath.EvalSymlinks(dir); err == nil {
		return r
	}
	return dir
}

func copyFile(fs billy.Filesystem, src, dst string) (n int64, err error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	return io.Copy(out, in)
}
