package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"feedview/internal/config"
)

// NewLogger builds the process logger from the logging section.
// The returned closer is a no-op unless output goes to a file.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, func() error, error) {
	var (
		out    io.Writer
		closer = func() error { return nil }
	)
	switch strings.ToLower(strings.TrimSpace(cfg.OutputPath)) {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log output: %w", err)
		}
		out = f
		closer = f.Close
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closer, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
