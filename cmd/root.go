package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/hluk/mkgallery/internal/logging"
)

var (
	version  = "0.1.0"
	verbose  bool
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "mkgallery",
	Short: "Build a browsable web gallery of images, fonts and videos",
	Long: `mkgallery collects images, fonts, audio and video from files,
directories and URLs into a gallery directory: staged links or copies,
thumbnails, an items.js manifest and a fonts.css stylesheet for the
gallery viewer.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return logging.Init(effectiveLogLevel(logLevel), os.Stderr)
	},
}

// Execute runs the command line and cancels running work on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logging.Get("mkgallery").Error(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/mkgallery/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output, same as --log-level=debug")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"mkgallery %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func effectiveLogLevel(level string) string {
	if verbose {
		return "debug"
	}
	return level
}
