// Package logging hands out per-component charmbracelet loggers that share
// one level and one output.
//
//	logging.Init("debug", os.Stderr)
//	logger := logging.Get("walker")
//	logger.Warn("skipping directory", "path", dir, "err", err)
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

type state struct {
	mu      sync.Mutex
	out     io.Writer
	level   log.Level
	loggers map[string]*log.Logger
}

var global = &state{
	out:     os.Stderr,
	level:   log.InfoLevel,
	loggers: make(map[string]*log.Logger),
}

// Init sets the level and output of every logger, including those already
// handed out by Get. A nil writer keeps the current output.
func Init(level string, w io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	global.level = lvl
	if w != nil {
		global.out = w
	}
	for _, l := range global.loggers {
		l.SetLevel(global.level)
		l.SetOutput(global.out)
	}
	return nil
}

// Get returns the logger for component, creating it on first use.
func Get(component string) *log.Logger {
	global.mu.Lock()
	defer global.mu.Unlock()

	if l, ok := global.loggers[component]; ok {
		return l
	}
	l := log.NewWithOptions(global.out, log.Options{
		Prefix: component,
		Level:  global.level,
	})
	global.loggers[component] = l
	return l
}

// IsDebug reports whether debug messages are currently emitted.
func IsDebug() bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.level <= log.DebugLevel
}
