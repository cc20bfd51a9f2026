package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options selects the level, output format and base attributes of a logger.
type Options struct {
	Level  string
	Text   bool
	App    string
	Env    string
	Output io.Writer
}

// New creates a slog logger configured from opts. An invalid level falls back
// to info. Output defaults to stdout and is JSON unless opts.Text is set.
func New(opts Options) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(opts.Level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if opts.Text {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	logger := slog.New(handler)
	if opts.App != "" {
		logger = logger.With(slog.String("app", opts.App))
	}
	if opts.Env != "" {
		logger = logger.With(slog.String("env", opts.Env))
	}
	return logger
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}
