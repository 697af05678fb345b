// Package logger holds the process-wide zerolog logger for the forum client.
// Call Setup once during startup; New returns component-scoped children.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.Mutex
	root = zerolog.Nop()
)

// Setup configures the root logger. level is one of trace, debug, info,
// warn, error (anything else means info). When pretty is true, output is
// rendered for a terminal instead of JSON. A nil out defaults to stderr.
func Setup(level string, pretty bool, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	mu.Lock()
	defer mu.Unlock()
	root = zerolog.New(out).Level(parseLevel(level)).With().Timestamp().Logger()
	return root
}

// New returns a child of the root logger tagged with a component name.
// Before Setup is called, children are no-op loggers, which keeps library
// consumers and tests quiet by default.
func New(component string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return root.With().Str("component", component).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
