// Package logging wraps slog with the small amount of setup Aisle needs.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Config controls handler construction.
type Config struct {
	Level   string // debug, info, warn, error (default info)
	Format  string // json or text (default text)
	Output  io.Writer
	Service string // tagged on every record when set
}

// New builds a slog.Logger from the config.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	return slog.New(handler)
}
