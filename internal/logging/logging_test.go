package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"pagepulse/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel(config.LogLevelDebug))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel(config.LogLevelError))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	cfg := &config.Config{
		AppName:     "pagepulse",
		Environment: config.Test,
		LogLevel:    config.LogLevelError,
	}

	logger := NewLogger(cfg)

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewRotatingFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		AppName:          "pagepulse",
		LogsDirectory:    dir,
		LogsMaxSizeInMb:  5,
		LogsMaxBackups:   2,
		LogsMaxAgeInDays: 7,
	}

	w := newRotatingFile(cfg)
	t.Cleanup(func() { w.Close() })

	assert.Equal(t, dir+"/pagepulse.log", w.Filename)
	assert.Equal(t, 5, w.MaxSize)
	assert.Equal(t, 2, w.MaxBackups)
	assert.Equal(t, 7, w.MaxAge)
}
