// Package gallery owns the on-disk layout of a gallery directory: where
// staged assets, thumbnails and the generated text files live, and how
// they are replaced between runs.
package gallery

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Layout of a gallery directory, relative to its root.
const (
	AssetDir       = "imgs"
	ThumbDir       = "thumbs"
	FilesDir       = "files"
	ManifestFile   = "items.js"
	StylesheetFile = "fonts.css"

	// ownerMarker is written into AssetDir so later runs can tell that the
	// directory is disposable.
	ownerMarker = ".mkgallery"
)

// ErrNotOwned is returned when the asset directory holds files that mkgallery
// did not create and the caller did not force the overwrite.
var ErrNotOwned = errors.New("asset directory contains files not created by mkgallery")

// Gallery is a gallery root directory.
type Gallery struct {
	root string
	fs   billy.Filesystem
}

// Open creates root if needed and returns the gallery rooted there.
func Open(root string) (*Gallery, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve gallery path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create gallery dir: %w", err)
	}
	return &Gallery{root: abs, fs: osfs.New(abs)}, nil
}

// New wraps an existing filesystem. root is the OS path fs is rooted at;
// it is only used to compute link targets and exclusions.
func New(fs billy.Filesystem, root string) *Gallery {
	return &Gallery{root: root, fs: fs}
}

// Root returns the absolute gallery directory.
func (g *Gallery) Root() string { return g.root }

// FS returns the filesystem rooted at the gallery directory.
func (g *Gallery) FS() billy.Filesystem { return g.fs }

// Path joins elem onto the gallery root as an OS path.
func (g *Gallery) Path(elem ...string) string {
	return filepath.Join(append([]string{g.root}, elem...)...)
}

// GeneratedDirs returns the OS paths of the subtrees the gallery generates
// itself. Walking must never descend into them.
func (g *Gallery) GeneratedDirs() []string {
	return []string{g.Path(AssetDir), g.Path(ThumbDir), g.Path(FilesDir)}
}

// Assets returns a filesystem rooted at the asset directory.
func (g *Gallery) Assets() (billy.Filesystem, error) {
	if err := g.fs.MkdirAll(AssetDir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return g.fs.Chroot(AssetDir)
}

// Thumbnails returns a filesystem rooted at the thumbnail directory.
func (g *Gallery) Thumbnails() (billy.Filesystem, error) {
	if err := g.fs.MkdirAll(ThumbDir, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail dir: %w", err)
	}
	return g.fs.Chroot(ThumbDir)
}

// PrepareAssets empties the asset directory left by a previous run. If the
// directory holds anything other than symbolic links and is not marked as
// mkgallery output, ErrNotOwned is returned unless force is set.
func (g *Gallery) PrepareAssets(force bool) error {
	owned, err := g.ownsAssets()
	if err != nil {
		return err
	}
	if !owned && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrNotOwned, g.Path(AssetDir))
	}
	if err := util.RemoveAll(g.fs, AssetDir); err != nil {
		return fmt.Errorf("clear asset dir: %w", err)
	}
	if err := g.fs.MkdirAll(AssetDir, 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}
	if err := util.WriteFile(g.fs, path.Join(AssetDir, ownerMarker), nil, 0o644); err != nil {
		return fmt.Errorf("mark asset dir: %w", err)
	}
	return nil
}

// ResetThumbnails removes any thumbnails of a previous run.
func (g *Gallery) ResetThumbnails() error {
	if err := util.RemoveAll(g.fs, ThumbDir); err != nil {
		return fmt.Errorf("clear thumbnail dir: %w", err)
	}
	return nil
}

func (g *Gallery) ownsAssets() (bool, error) {
	info, err := g.fs.Lstat(AssetDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("stat asset dir: %w", err)
	case info.Mode()&os.ModeSymlink != 0:
		// Older galleries linked the whole asset directory.
		return true, nil
	case !info.IsDir():
		return false, nil
	}

	if _, err := g.fs.Lstat(path.Join(AssetDir, ownerMarker)); err == nil {
		return true, nil
	}

	onlyLinks := true
	err = util.Walk(g.fs, AssetDir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
			onlyLinks = false
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		return false, fmt.Errorf("inspect asset dir: %w", err)
	}
	return onlyLinks, nil
}

// WriteFile replaces name with data in one rename, so readers see either
// the old or the new content.
func (g *Gallery) WriteFile(name string, data []byte) error {
	return WriteAtomic(g.fs, name, data)
}

// WriteAtomic writes data to a temporary file next to name and renames it
// over name.
func WriteAtomic(fs billy.Filesystem, name string, data []byte) (err error) {
	dir := path.Dir(name)
	if dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	tmp, err := util.TempFile(fs, dir, "."+path.Base(name)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := fs.Rename(tmpName, name); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
