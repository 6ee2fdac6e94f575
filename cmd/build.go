package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hluk/mkgallery/internal/config"
	"github.com/hluk/mkgallery/internal/logging"
	"github.com/hluk/mkgallery/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [path|url...]",
	Short: "Build a gallery from files, directories and URLs",
	Long: `Walks the given paths (default: the current directory), stages every
image, font, audio and video file into the gallery as a link or copy,
writes items.js and fonts.css, then generates thumbnails and rewrites
items.js with their sizes.

Files that cannot be read or decoded are reported and skipped.`,
	Args: cobra.ArbitraryArgs,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringP("title", "t", config.DefaultTitle, "gallery title, also names the default output directory")
	f.StringP("out", "o", "", "gallery directory (default $XDG_DATA_HOME/mkgallery/galleries/<title>)")
	f.IntP("resolution", "r", config.DefaultResolution, "thumbnail box size in pixels (0 = no thumbnails)")
	f.BoolP("copy", "c", false, "copy files instead of linking them")
	f.BoolP("local", "l", false, "reference originals by file:// URLs instead of staging them")
	f.BoolP("force", "f", false, "clear an asset directory not created by mkgallery")
	f.IntP("workers", "w", 0, "parallel thumbnail workers (0 = NumCPU)")
	f.String("thumbnail-format", config.DefaultThumbnailFormat, "thumbnail format (jpeg, webp)")
	f.IntP("quality", "q", config.DefaultThumbnailQuality, "thumbnail quality 1-100")
	f.String("backend", config.BackendAuto, "thumbnail backend (auto, imaging, vips)")
	f.Bool("render-fonts", false, "show fonts as rendered sample text instead of @font-face rules")
	f.Int("font-size", config.DefaultFontSize, "sample text size in pixels")
	f.String("font-text", config.DefaultFontText, `sample text, "\n" separates lines`)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Source{File: cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	if err := logging.Init(effectiveLogLevel(cfg.LogLevel), os.Stderr); err != nil {
		return err
	}

	logger := logging.Get("build")
	logger.Debug("configuration", "output", cfg.Output, "resolution", cfg.Resolution,
		"copy", cfg.Copy, "local", cfg.Local, "render_fonts", cfg.Font.Render)

	p := pipeline.New(cfg, pipeline.Options{
		Inputs:   args,
		Progress: os.Stderr,
	})
	report, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	printBuildReport(report)
	return nil
}

func printBuildReport(r *pipeline.Report) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║            mkgallery build complete              ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	m := r.Manifest
	fmt.Printf("  Items:       %d (%d images, %d fonts, %d videos, %d remote)\n",
		m.Items, m.Images, m.Fonts, m.Videos, m.Remote)
	fmt.Printf("  Scanned:     %d files, %d skipped as unknown\n", r.Scan.Files, r.Scan.Unknown)
	if r.Scan.Errors > 0 {
		fmt.Printf("  Unreadable:  %d directories\n", r.Scan.Errors)
	}

	s := r.Staging
	switch {
	case s.Copied > 0:
		fmt.Printf("  Staged:      %d copied (%s), %d linked\n", s.Copied, humanize.Bytes(uint64(s.CopiedBytes)), s.Linked)
	case s.Linked > 0:
		fmt.Printf("  Staged:      %d linked\n", s.Linked)
	}
	if s.Renamed > 0 {
		fmt.Printf("  Renamed:     %d (name collisions)\n", s.Renamed)
	}

	if r.FontsRendered > 0 {
		fmt.Printf("  Fonts:       %d rendered\n", r.FontsRendered)
	}
	if r.FontRules > 0 {
		fmt.Printf("  Font faces:  %d\n", r.FontRules)
	}
	if r.FontFailures > 0 {
		fmt.Printf("  Font errors: %d\n", r.FontFailures)
	}

	t := r.Thumbnails
	if r.ThumbnailBackend != "" {
		fmt.Printf("  Thumbnails:  %d (%s)\n", t.Generated, r.ThumbnailBackend)
	} else {
		fmt.Printf("  Thumbnails:  %d\n", t.Generated)
	}
	if t.Failed > 0 {
		fmt.Printf("  Failed:      %d images (see log)\n", t.Failed)
	}
	if t.Skipped > 0 {
		fmt.Printf("  Skipped:     %d images without thumbnail\n", t.Skipped)
	}
	fmt.Printf("  Time:        %s\n", r.Elapsed.Round(time.Millisecond))
	fmt.Println()
	fmt.Printf("  Gallery:     %s\n", r.Gallery)
	fmt.Println()
}
