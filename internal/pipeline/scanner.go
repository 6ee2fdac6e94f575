package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/walker"
)

// ScanStats counts what discovery saw.
type ScanStats struct {
	Files   int
	Unknown int
	Errors  int
}

// checkInputs fails if any local input cannot be read at all.
func checkInputs(inputs []string) error {
	for _, in := range inputs {
		if asset.IsRemote(in) {
			continue
		}
		if err := readable(in); err != nil {
			return fmt.Errorf("cannot read input: %w", err)
		}
	}
	return nil
}

// readable opens path and, for a directory, lists its first entry.
func readable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read directory %s: %w", path, err)
		}
	}
	return nil
}

// scan walks every input and returns the references of known kind in walk
// order. Directories that cannot be read are logged and skipped.
func (p *Pipeline) scan(w *walker.Walker, inputs []string) ([]string, ScanStats) {
	var stats ScanStats

	if isTerminal(p.opts.Progress) {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(p.opts.Progress))
		s.Suffix = " Discovering files"
		s.Start()
		defer s.Stop()
	}

	var refs []string
	for _, in := range inputs {
		for ref, err := range w.Walk(in) {
			if err != nil {
				stats.Errors++
				if errors.Is(err, walker.ErrCycle) {
					p.logger.Warn("skipping directory cycle", "path", ref)
				} else {
					p.logger.Warn("cannot read directory", "path", ref, "err", err)
				}
				continue
			}
			stats.Files++
			if asset.Classify(ref) == asset.Unknown {
				stats.Unknown++
				p.logger.Debug("skipping unknown file", "path", ref)
				continue
			}
			refs = append(refs, ref)
		}
	}
	return refs, stats
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
