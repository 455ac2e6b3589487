package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewFromSettingsFallsBack(t *testing.T) {
	logger := NewFromSettings("loud", false)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestFallbackFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core))

	logger.Fallback("news_api", "latest", "retry_exhausted", errors.New("timeout"), zap.Int("attempts", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "news_api", fields["dependency"])
	assert.Equal(t, "latest", fields["operation"])
	assert.Equal(t, "fallback", fields["source"])
	assert.Equal(t, "retry_exhausted", fields["reason"])
	assert.Equal(t, "timeout", fields["error"])
	assert.Equal(t, int64(3), fields["attempts"])
}

func TestWrapNil(t *testing.T) {
	assert.NotPanics(t, func() {
		Wrap(nil).Info("discarded")
	})
}
