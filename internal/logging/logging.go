// Package logging configures the process logger.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. Debug enables debug level.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithComponent returns a logger with the component field set.
func WithComponent(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String("component", name))
}
