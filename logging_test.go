package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestNewLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warning")

	l.Info().Msg("hidden")
	l.Warn().Str("series", "Baseline").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "series=Baseline")
}

func TestSetupLoggingToFile(t *testing.T) {
	saved := logger
	defer func() { logger = saved }()

	config := DefaultConfig()
	config.Logging.Enabled = true
	config.Logging.Logfile = filepath.Join(t.TempDir(), "rttcompare.log")

	closeLog, err := setupLogging(config)
	require.NoError(t, err)
	logger.Info().Msg("parsed ping output")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(config.Logging.Logfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "parsed ping output")
}

func TestSetupLoggingBadPath(t *testing.T) {
	config := DefaultConfig()
	config.Logging.Enabled = true
	config.Logging.Logfile = filepath.Join(t.TempDir(), "missing", "rttcompare.log")

	_, err := setupLogging(config)
	assert.ErrorContains(t, err, "open log file")
}
