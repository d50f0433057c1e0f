// Package logging configures the process-wide zerolog logger used by the
// policyscan command and library components.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures Setup.
type Options struct {
	// Level is a zerolog level name or "hit". Empty means "info".
	Level string
	// JSON selects machine-readable output instead of the console writer.
	JSON bool
	// Out defaults to os.Stderr.
	Out io.Writer
}

// Setup installs the global logger and returns it.
func Setup(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := ParseLevel(opts.Level)
		if err != nil {
			return log.Logger, err
		}
		level = l
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var sink io.Writer = out
	if !opts.JSON {
		sink = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	hitWriter := NewHitLevelWriter(sink)
	SetGlobalHitWriter(hitWriter)

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(hitWriter).With().Timestamp().Logger()
	return log.Logger, nil
}

// ParseLevel extends zerolog's ParseLevel to support "hit" level.
func ParseLevel(levelStr string) (zerolog.Level, error) {
	levelStr = strings.ToLower(strings.TrimSpace(levelStr))
	if levelStr == "hit" {
		return HitLevel, nil
	}
	return zerolog.ParseLevel(levelStr)
}

// Nop returns a logger that discards everything. Used by tests and by
// library callers that want silence.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
