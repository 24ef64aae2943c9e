// Package logging builds the structured logger shared by all components.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error; empty means info
	Prefix string // empty means "callscope"
	Debug  bool   // forces debug level
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	lg.SetLevel(ParseLevel(opts.Level))
	if opts.Debug {
		lg.SetLevel(log.DebugLevel)
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "callscope"
	}
	return lg.WithPrefix(prefix)
}

// NewStderr creates a logger writing to stderr.
func NewStderr(opts Options) *log.Logger {
	return New(os.Stderr, opts)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel maps a level name to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
