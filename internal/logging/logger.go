// Package logging builds the process-wide slog.Logger from configuration.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/hazman-azhar/kitapay/backend/internal/config"
)

// New returns a logger writing to stdout in the configured format. Unknown
// levels and formats degrade to info-level text rather than failing startup.
func New(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(level string) slog.Level {
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
