// Package obslog wires up the job's structured logger. Per spec §9
// ("global mutable state ... should be threaded through a context
// parameter"), loggers here are always constructed values passed
// explicitly between components, never package-level globals.
package obslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options controls the base logger's output format and level.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	Writer io.Writer
}

// New builds the job's base logger.
func New(jobName string, opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var w io.Writer = opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("job", jobName).
		Logger()
}

// ForGeneration returns a child logger annotated with the generation
// index.
func ForGeneration(base zerolog.Logger, generation int) zerolog.Logger {
	return base.With().Int("gen", generation).Logger()
}

// ForBootstrapIter returns a child logger annotated with the bootstrap
// iteration index.
func ForBootstrapIter(base zerolog.Logger, iter int) zerolog.Logger {
	return base.With().Int("bootstrap_iter", iter).Logger()
}
