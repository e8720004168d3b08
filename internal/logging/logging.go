// Package logging builds the leveled console logger used by the CLI.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Options holds configuration for the logger.
type Options struct {
	Level  string
	Prefix string
}

// NewLogger creates a text logger writing to w.
// The level is parsed from opts; defaults to info if invalid or empty.
func NewLogger(opts Options, w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       log.TextFormatter,
		Prefix:          opts.Prefix,
		ReportTimestamp: false,
		ReportCaller:    false,
	})
}

// ParseLevel maps a level name to a log.Level, accepting "warning" as an alias.
func ParseLevel(level string) log.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
