// Package walker enumerates the leaf files below a set of input paths.
package walker

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/logging"
)

// ErrCycle is reported for a directory that resolves to one of its own
// ancestors, i.e. a symbolic link loop.
var ErrCycle = errors.New("directory cycle")

// Walker produces depth-first sequences of leaf paths and never descends
// into the excluded directories.
type Walker struct {
	exclude map[string]bool
}

// New creates a walker that skips the given directories (typically the
// gallery's own generated subtrees). Directories that do not exist yet are
// matched by their absolute path.
func New(exclude ...string) *Walker {
	w := &Walker{exclude: make(map[string]bool, len(exclude))}
	for _, dir := range exclude {
		w.exclude[realPath(dir)] = true
	}
	return w
}

type node struct {
	path   string
	isDir  bool
	parent *frame
}

// frame is a directory being expanded, linked to the one containing it.
type frame struct {
	real   string
	parent *frame
}

func (f *frame) contains(real string) bool {
	for ; f != nil; f = f.parent {
		if f.real == real {
			return true
		}
	}
	return false
}

// Walk returns the leaf paths under root in lexical depth-first order.
// Directories are expanded, everything else is yielded as-is; a root that
// is not a directory (or is a remote reference) is yielded once.
//
// Problems with individual directories are yielded as (path, err) pairs
// and the walk continues. A directory reached again through another link
// is expanded only the first time. Each call returns a fresh sequence.
func (w *Walker) Walk(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if asset.IsRemote(root) {
			yield(root, nil)
			return
		}

		info, err := os.Stat(root)
		if err != nil {
			yield(root, fmt.Errorf("stat %s: %w", root, err))
			return
		}
		if !info.IsDir() {
			yield(root, nil)
			return
		}

		logger := logging.Get("walker")
		visited := make(map[string]bool)
		stack := []node{{path: root, isDir: true}}

		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !n.isDir {
				if !yield(n.path, nil) {
					return
				}
				continue
			}

			resolved := realPath(n.path)
			if w.exclude[resolved] {
				logger.Debug("skipping generated directory", "path", n.path)
				continue
			}
			if n.parent.contains(resolved) {
				if !yield(n.path, fmt.Errorf("%w: %s", ErrCycle, n.path)) {
					return
				}
				continue
			}
			if visited[resolved] {
				logger.Debug("skipping directory visited through another path", "path", n.path)
				continue
			}
			visited[resolved] = true
			f := &frame{real: resolved, parent: n.parent}

			entries, err := os.ReadDir(n.path)
			if err != nil {
				if !yield(n.path, fmt.Errorf("read directory %s: %w", n.path, err)) {
					return
				}
				continue
			}

			// Push in reverse so that popping restores lexical order.
			for i := len(entries) - 1; i >= 0; i-- {
				child := filepath.Join(n.path, entries[i].Name())
				stack = append(stack, node{path: child, isDir: isDir(child, entries[i]), parent: f})
			}
		}
	}
}

// isDir follows symbolic links so that linked directories are expanded.
func isDir(path string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func realPath(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		p = r
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
