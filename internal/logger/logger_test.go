package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"transcriptcleaner/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("should create a new zap logger instance", func(t *testing.T) {
		// Act
		logger := NewLogger()

		// Assert
		assert.NotNil(t, logger)
		assert.IsType(t, &zap.Logger{}, logger)
	})

	t.Run("should create logger with JSON encoder for production", func(t *testing.T) {
		// Act
		logger, err := NewProductionLogger()

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, logger)
		assert.IsType(t, &zap.Logger{}, logger)
	})

	t.Run("should create logger with development config for testing", func(t *testing.T) {
		// Act
		logger, err := NewDevelopmentLogger()

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, logger)
		assert.IsType(t, &zap.Logger{}, logger)
	})
}

func TestNewLoggerFromConfig(t *testing.T) {
	t.Run("should build a production logger by default", func(t *testing.T) {
		// Arrange
		cfg := config.NewConfiguration()

		// Act
		logger, err := NewLoggerFromConfig(cfg)

		// Assert
		assert.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("should build a development logger when enabled", func(t *testing.T) {
		// Arrange
		cfg := config.NewConfiguration()
		cfg.Set("log.development", true)

		// Act
		logger, err := NewLoggerFromConfig(cfg)

		// Assert
		assert.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("should build a production logger without configuration", func(t *testing.T) {
		logger, err := NewLoggerFromConfig(nil)

		assert.NoError(t, err)
		assert.NotNil(t, logger)
	})
}
