package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler and threshold for the process logger.
type Config struct {
	Level  slog.Level `config:"level"`
	Format string     `config:"format" validate:"omitempty,oneof=text json"`
	// Output defaults to stdout.
	Output io.Writer `config:"-"`
}

func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	// Text in dev is easier to read; json for anything shipped to a collector.
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h)
}
