// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"alcyxob/gym-manager/internal/config"

	"github.com/rs/zerolog"
)

// New returns a logger writing to stdout. Pretty selects the human console
// format; otherwise one JSON object is written per event.
func New(cfg config.LogConfig) *zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(cfg config.LogConfig, w io.Writer) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Str("app", "gym-manager").Logger()
	return &l
}
