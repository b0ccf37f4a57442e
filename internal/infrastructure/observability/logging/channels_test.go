package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *ChanneledLogger {
	t.Helper()
	logger, err := NewChanneledLogger(&LoggerConfig{
		OutputToFile:    true,
		OutputToConsole: false,
		LogDirectory:    t.TempDir(),
		JSONFormat:      true,
		DefaultLevel:    slog.LevelInfo,
		ChannelLevels:   make(map[Channel]slog.Level),
	})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestSetChannelLevel(t *testing.T) {
	t.Run("Adjusts A Known Channel", func(t *testing.T) {
		logger := newTestLogger(t)

		require.NoError(t, logger.SetChannelLevel(ChannelSearch, slog.LevelDebug))

		levels := logger.GetChannelLevels()
		assert.Equal(t, "DEBUG", levels[string(ChannelSearch)])
	})

	t.Run("Rejects An Unknown Channel", func(t *testing.T) {
		logger := newTestLogger(t)

		err := logger.SetChannelLevel(Channel("no-such-channel"), slog.LevelDebug)
		assert.Error(t, err)
	})
}

func TestGetChannelLevels(t *testing.T) {
	logger := newTestLogger(t)

	levels := logger.GetChannelLevels()
	require.Contains(t, levels, string(ChannelSystem))
	assert.Equal(t, "INFO", levels[string(ChannelSystem)], "channels without overrides report the default level")
}
