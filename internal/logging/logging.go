// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type Config struct {
	Level       string
	Format      string // json, text; empty picks by environment
	Environment string
	Writer      io.Writer
}

// New creates a structured logger. Production environments and an explicit
// json format get slog's JSON handler; everything else gets a human readable
// handler backed by charmbracelet/log.
func New(cfg Config) *slog.Logger {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}
	return slog.New(newHandler(cfg, writer))
}

// Init creates the logger and installs it as slog's default.
func Init(cfg Config) *slog.Logger {
	logger := New(cfg)
	slog.SetDefault(logger)
	return logger
}

func newHandler(cfg Config, writer io.Writer) slog.Handler {
	level := ParseLevel(cfg.Level)

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" {
		if strings.EqualFold(cfg.Environment, "production") {
			format = "json"
		} else {
			format = "text"
		}
	}

	if format == "json" {
		return slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	}

	return charmlog.NewWithOptions(writer, charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: true,
	})
}

// ParseLevel maps a configured level name onto slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a logger annotated with the provided component field.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", component))
}
