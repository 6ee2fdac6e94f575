package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/gallery"
	"github.com/hluk/mkgallery/internal/manifest"
)

var statsCmd = &cobra.Command{
	Use:   "stats <gallery_dir_or_manifest>",
	Short: "Display statistics for a built gallery",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// manifestPath accepts a gallery directory or a manifest file.
func manifestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, gallery.ManifestFile), nil
	}
	return path, nil
}

func runStats(_ *cobra.Command, args []string) error {
	path, err := manifestPath(args[0])
	if err != nil {
		return err
	}
	d, err := manifest.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	printStats(d, filepath.Dir(path))
	return nil
}

func printStats(d *manifest.Decoded, baseDir string) {
	s := d.ComputeStats()

	fmt.Println()
	fmt.Printf("  Title:            %s\n", d.Title)
	fmt.Printf("  Items:            %d\n", s.Items)
	fmt.Printf("    images          %d\n", s.Images)
	fmt.Printf("    fonts           %d\n", s.Fonts)
	fmt.Printf("    videos          %d\n", s.Videos)
	fmt.Printf("    remote          %d\n", s.Remote)
	fmt.Println()

	local := s.Images - remoteImages(d)
	fmt.Printf("  Thumbnail coverage: %d / %d local images\n", s.Thumbnails, local)
	if n, size := dirUsage(filepath.Join(baseDir, gallery.ThumbDir)); n > 0 {
		fmt.Printf("  Thumbnail files:    %d (%s)\n", n, humanize.Bytes(uint64(size)))
	}
	fmt.Printf("  Aliases:            %d\n", s.Aliases)
	fmt.Printf("  Links:              %d\n", s.Links)

	var aliases []string
	for _, it := range d.Sorted() {
		if it.Alias != "" {
			aliases = append(aliases, it.Alias)
		}
	}
	slices.Sort(aliases)
	aliases = slices.Compact(aliases)
	if len(aliases) > 0 {
		fmt.Println()
		fmt.Println("  Font names:")
		for _, a := range aliases {
			fmt.Printf("    %s\n", a)
		}
	}
	fmt.Println()
}

func remoteImages(d *manifest.Decoded) int {
	n := 0
	for _, it := range d.Sorted() {
		if it.Remote && it.Kind == asset.Image {
			n++
		}
	}
	return n
}

// dirUsage counts regular files below dir and their total size.
func dirUsage(dir string) (files int, size int64) {
	_ = filepath.WalkDir(dir, func(_ string, e os.DirEntry, err error) error {
		if err != nil || e.IsDir() {
			return nil
		}
		if info, err := e.Info(); err == nil {
			files++
			size += info.Size()
		}
		return nil
	})
	return files, size
}
