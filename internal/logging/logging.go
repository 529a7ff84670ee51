// Package logging builds the application's structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"pagepulse/internal/config"
)

// NewLogger returns a slog logger configured from cfg.
// Development logs human-readable text to stdout. Other environments log JSON to
// stdout and to a size-rotated file under cfg.LogsDirectory.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}

	var out io.Writer = os.Stdout
	if cfg.LogsDirectory != "" {
		out = io.MultiWriter(os.Stdout, newRotatingFile(cfg))
	}

	return slog.New(slog.NewJSONHandler(out, opts)).With(
		slog.String("app", cfg.AppName),
		slog.String("env", cfg.Environment),
	)
}

func newRotatingFile(cfg *config.Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogsDirectory, cfg.AppName+".log"),
		MaxSize:    cfg.LogsMaxSizeInMb,
		MaxBackups: cfg.LogsMaxBackups,
		MaxAge:     cfg.LogsMaxAgeInDays,
		Compress:   true,
	}
}

func parseLevel(level config.LogLevel) slog.Level {
	switch strings.ToLower(string(level)) {
	case string(config.LogLevelDebug):
		return slog.LevelDebug
	case string(config.LogLevelWarn):
		return slog.LevelWarn
	case string(config.LogLevelError):
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
