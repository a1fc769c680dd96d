// Package logging builds the zerolog logger. Logs go to stderr so stdout
// stays a clean JSON event stream.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Configure returns a logger writing to w at levelStr. format is "console"
// for human-readable output or "json".
func Configure(levelStr, format string, w io.Writer) (zerolog.Logger, error) {
	level, err := parseLevel(levelStr)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := w
	switch strings.ToLower(format) {
	case "", "console", "text":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}

// Component derives a logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
