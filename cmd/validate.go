package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/encoder"
	"github.com/hluk/mkgallery/internal/gallery"
	"github.com/hluk/mkgallery/internal/manifest"
	"github.com/hluk/mkgallery/internal/materialize"
)

var validateCmd = &cobra.Command{
	Use:   "validate <gallery_dir_or_manifest>",
	Short: "Validate a gallery manifest and check referenced files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path, err := manifestPath(args[0])
	if err != nil {
		return err
	}
	d, err := manifest.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	errors := validateManifest(d, filepath.Dir(path))

	if len(errors) == 0 {
		s := d.ComputeStats()
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d items, %d thumbnails, all files present\n", s.Items, s.Thumbnails)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

func validateManifest(d *manifest.Decoded, baseDir string) []string {
	var errs []string

	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, "empty title")
	}

	// Check ordering and uniqueness.
	for i := 1; i < len(d.Keys); i++ {
		prev, key := d.Keys[i-1], d.Keys[i]
		switch c := manifest.CompareKeys(prev, key); {
		case prev == key:
			errs = append(errs, fmt.Sprintf("duplicate item %q", key))
		case c > 0:
			errs = append(errs, fmt.Sprintf("item %q listed after %q", key, prev))
		}
	}

	// Check each item.
	for _, it := range d.Sorted() {
		if it.Kind == asset.Unknown {
			errs = append(errs, fmt.Sprintf("item %q: unknown media type", it.Key))
		}
		if it.Remote {
			continue
		}

		file, rels := localFile(it.Key, baseDir)
		if _, err := os.Stat(file); err != nil {
			errs = append(errs, fmt.Sprintf("item %q: file not found", it.Key))
		}
		if it.Link != "" && !asset.IsRemote(it.Link) {
			if linked, _ := localFile(it.Link, baseDir); !exists(linked) {
				errs = append(errs, fmt.Sprintf("item %q: link target %q not found", it.Key, it.Link))
			}
		}

		ts := it.ThumbnailSize
		if ts == nil {
			continue
		}
		if ts.Width <= 0 || ts.Height <= 0 {
			errs = append(errs, fmt.Sprintf("item %q: invalid thumbnail size %s", it.Key, ts))
		}
		if it.Kind != asset.Image {
			errs = append(errs, fmt.Sprintf("item %q: thumbnail on a %s", it.Key, it.Kind))
		}
		if !slices.ContainsFunc(rels, func(rel string) bool { return thumbnailExists(baseDir, rel) }) {
			errs = append(errs, fmt.Sprintf("item %q: thumbnail not found", it.Key))
		}
	}

	return errs
}

// localFile maps a local manifest key to the file it names and to the
// paths relative to the asset directory its thumbnail may be stored under.
func localFile(key, baseDir string) (file string, rels []string) {
	if strings.HasPrefix(key, "file://") {
		abs, err := materialize.LocalPath(key)
		if err != nil {
			return "", nil
		}
		return abs, materialize.LocalRels(abs)
	}
	rel := strings.TrimPrefix(key, gallery.AssetDir+"/")
	return filepath.Join(baseDir, filepath.FromSlash(key)), []string{rel}
}

func thumbnailExists(baseDir, rel string) bool {
	for _, ext := range encoder.NewRegistry().ThumbnailExtensions() {
		name := path.Join(gallery.ThumbDir, rel) + "." + ext
		if exists(filepath.Join(baseDir, filepath.FromSlash(name))) {
			return true
		}
	}
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
