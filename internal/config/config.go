package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ThumbnailConfig configures thumbnail generation.
type ThumbnailConfig struct {
	Format  string `mapstructure:"format"`
	Quality int    `mapstructure:"quality"`
	Backend string `mapstructure:"backend"`
}

// FontConfig configures font handling.
type FontConfig struct {
	// Render rasterizes Text with each font instead of exposing the font file.
	Render bool   `mapstructure:"render"`
	Size   int    `mapstructure:"size"`
	Text   string `mapstructure:"text"`
}

// Config is the immutable configuration of one gallery build. It is
// passed by value to every component.
type Config struct {
	Title string `mapstructure:"title"`
	// Output is the gallery root directory.
	Output string `mapstructure:"output"`
	// Resolution is the thumbnail box edge in pixels; 0 disables thumbnails.
	Resolution int `mapstructure:"resolution"`
	// Copy stages full copies instead of symbolic links.
	Copy bool `mapstructure:"copy"`
	// Local references the originals through file:// URLs and stages nothing.
	Local bool `mapstructure:"local"`
	// Force allows clearing an asset directory not created by mkgallery.
	Force   bool `mapstructure:"force"`
	Workers int  `mapstructure:"workers"`

	ProgressWidth int             `mapstructure:"progress_width"`
	Thumbnail     ThumbnailConfig `mapstructure:"thumbnail"`
	Font          FontConfig      `mapstructure:"font"`
	LogLevel      string          `mapstructure:"log_level"`
}

// Source tells Load where configuration comes from besides defaults and
// the environment.
type Source struct {
	// File is an explicit config file. When empty, config.yaml is looked up
	// in SearchDirs.
	File string
	// SearchDirs defaults to $XDG_CONFIG_HOME/mkgallery.
	SearchDirs []string
	// Flags are bound on top of everything else. Only flags listed in
	// FlagKeys are considered.
	Flags *pflag.FlagSet
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"title":            "title",
	"out":              "output",
	"resolution":       "resolution",
	"copy":             "copy",
	"local":            "local",
	"force":            "force",
	"workers":          "workers",
	"thumbnail-format": "thumbnail.format",
	"quality":          "thumbnail.quality",
	"backend":          "thumbnail.backend",
	"render-fonts":     "font.render",
	"font-size":        "font.size",
	"font-text":        "font.text",
	"log-level":        "log_level",
}

// Load builds a Config from defaults, an optional YAML file, MKGALLERY_*
// environment variables and bound flags, in increasing precedence.
func Load(src Source) (Config, error) {
	v := viper.New()

	v.SetDefault("title", DefaultTitle)
	v.SetDefault("output", "")
	v.SetDefault("resolution", DefaultResolution)
	v.SetDefault("copy", false)
	v.SetDefault("local", false)
	v.SetDefault("force", false)
	v.SetDefault("workers", 0)
	v.SetDefault("progress_width", DefaultProgressWidth)
	v.SetDefault("thumbnail.format", DefaultThumbnailFormat)
	v.SetDefault("thumbnail.quality", DefaultThumbnailQuality)
	v.SetDefault("thumbnail.backend", BackendAuto)
	v.SetDefault("font.render", false)
	v.SetDefault("font.size", DefaultFontSize)
	v.SetDefault("font.text", DefaultFontText)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("MKGALLERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if src.File != "" {
		v.SetConfigFile(src.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		dirs := src.SearchDirs
		if dirs == nil {
			dirs = []string{filepath.Join(xdg.ConfigHome, "mkgallery")}
		}
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if src.Flags != nil {
		for name, key := range FlagKeys {
			if f := src.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Font.Text = ExpandEscapes(cfg.Font.Text)
	if cfg.Output == "" {
		cfg.Output = DefaultOutput(cfg.Title)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can work with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, errors.New("title must not be empty"))
	}
	if c.Resolution < 0 {
		errs = append(errs, fmt.Errorf("resolution must be >= 0, got %d", c.Resolution))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Thumbnail.Quality < 1 || c.Thumbnail.Quality > 100 {
		errs = append(errs, fmt.Errorf("thumbnail quality must be within 1-100, got %d", c.Thumbnail.Quality))
	}
	switch c.Thumbnail.Format {
	case FormatJPEG, FormatWebP:
	default:
		errs = append(errs, fmt.Errorf("unsupported thumbnail format %q", c.Thumbnail.Format))
	}
	switch c.Thumbnail.Backend {
	case BackendAuto, BackendImaging, BackendVips:
	default:
		errs = append(errs, fmt.Errorf("unknown thumbnail backend %q", c.Thumbnail.Backend))
	}
	if c.Font.Render && c.Font.Size <= 0 {
		errs = append(errs, fmt.Errorf("font size must be positive, got %d", c.Font.Size))
	}
	if c.Font.Render && c.Font.Text == "" {
		errs = append(errs, errors.New("font render text must not be empty"))
	}
	if c.ProgressWidth <= 0 {
		errs = append(errs, fmt.Errorf("progress width must be positive, got %d", c.ProgressWidth))
	}
	return errors.Join(errs...)
}

// ExpandEscapes turns the two-character sequence `\n` into a newline.
func ExpandEscapes(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// DefaultOutput returns the gallery directory used when none is configured.
func DefaultOutput(title string) string {
	return filepath.Join(xdg.DataHome, "mkgallery", "galleries", title)
}
