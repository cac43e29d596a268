package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"transcriptcleaner/internal/logger"
)

func TestPrintHelp(t *testing.T) {
	t.Run("should list usage and every flag", func(t *testing.T) {
		var buf bytes.Buffer

		printHelp(&buf)

		assert.Contains(t, buf.String(), "USAGE:")
		for _, flag := range []string{"-help", "-version", "-config", "-env-file", "-input", "-output", "-workers"} {
			assert.Contains(t, buf.String(), flag)
		}
	})
}

func TestPrintVersion(t *testing.T) {
	t.Run("should print version information", func(t *testing.T) {
		var buf bytes.Buffer

		printVersion(&buf)

		assert.Contains(t, buf.String(), "Transcript Cleaner")
		assert.Contains(t, buf.String(), "Version: "+version)
	})
}

func TestParseFlags(t *testing.T) {
	t.Run("should parse overrides", func(t *testing.T) {
		opts, err := parseFlags([]string{"-input", "in", "-output", "out", "-workers", "3"})

		require.NoError(t, err)
		assert.Equal(t, "in", opts.input)
		assert.Equal(t, "out", opts.output)
		assert.Equal(t, 3, opts.workers)
		assert.False(t, opts.help)
	})

	t.Run("should reject unknown flags", func(t *testing.T) {
		_, err := parseFlags([]string{"-nope"})

		assert.Error(t, err)
	})
}

func TestLoadConfiguration(t *testing.T) {
	t.Run("should apply flag overrides on top of the env file", func(t *testing.T) {
		// Arrange
		envFile := filepath.Join(t.TempDir(), "cleaner.env")
		require.NoError(t, os.WriteFile(envFile, []byte("INPUT_PATH=/data/in\nWORKERS_COUNT=2\nOUTPUT_BUCKET=/data/out\n"), 0644))

		// Act
		cfg, err := loadConfiguration(&options{envFile: envFile, output: "/elsewhere", workers: 7})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "/data/in", cfg.GetInputPath())
		assert.Equal(t, "/elsewhere", cfg.GetOutputPath())
		assert.Equal(t, 7, cfg.GetWorkersCount())
	})

	t.Run("should fail on a missing config file", func(t *testing.T) {
		_, err := loadConfiguration(&options{configFile: filepath.Join(t.TempDir(), "missing.yaml")})

		assert.Error(t, err)
	})

	t.Run("should reject an invalid continuation policy", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), "cleaner.env")
		require.NoError(t, os.WriteFile(envFile, []byte("CONTINUATION_POLICY=sometimes\n"), 0644))

		_, err := loadConfiguration(&options{envFile: envFile})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestRunApplication(t *testing.T) {
	t.Run("should clean a directory end to end", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		input := filepath.Join(dir, "in")
		output := filepath.Join(dir, "out")
		require.NoError(t, os.MkdirAll(input, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(input, "call_transcription.txt"),
			[]byte("[0.00 - 1.50] so i said hello.\n[1.50 - 3.00] Then we left."), 0644))

		envFile := filepath.Join(dir, "cleaner.env")
		require.NoError(t, os.WriteFile(envFile, []byte("ERROR_LOGS_BUCKET="+filepath.Join(dir, "errors")+"\n"), 0644))

		// Act
		err := runApplication(&options{envFile: envFile, input: input, output: output, workers: 1})

		// Assert
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(output, "Diarization-clean", "call_cleaned_transcription.txt"))
		require.NoError(t, err)
		assert.Equal(t, "[0.00 - 1.50] so I said hello.\n[1.50 - 3.00] Then we left.", string(data))
	})

	t.Run("should fail when the input path does not exist", func(t *testing.T) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, "cleaner.env")
		require.NoError(t, os.WriteFile(envFile, []byte("OUTPUT_BUCKET="+filepath.Join(dir, "out")+"\n"), 0644))

		err := runApplication(&options{envFile: envFile, input: filepath.Join(dir, "missing")})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid input path")
	})
}

type developmentSetting bool

func (d developmentSetting) GetDevelopmentLogging() bool {
	return bool(d)
}

func TestBuildLogger(t *testing.T) {
	t.Run("should build the configured development logger", func(t *testing.T) {
		log := buildLogger(developmentSetting(true), logger.NewLoggerFromConfig)

		require.NotNil(t, log)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("should build a production logger without configuration", func(t *testing.T) {
		log := buildLogger(nil, logger.NewLoggerFromConfig)

		require.NotNil(t, log)
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("should fall back to the default logger when the configured one fails", func(t *testing.T) {
		failing := func(logger.DevelopmentSetting) (*zap.Logger, error) {
			return nil, errors.New("sink unavailable")
		}

		log := buildLogger(developmentSetting(true), failing)

		require.NotNil(t, log)
		assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	})
}
