package main

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// logger writes to stderr so that stdout carries only the summary.
var logger = newLogger(os.Stderr, "info")

func newLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != os.Stderr}
	return zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warning", "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// setupLogging points the package logger at the configured destination. The
// returned close func releases the log file, if one was opened.
func setupLogging(config *Config) (func() error, error) {
	if !config.Logging.Enabled {
		logger = newLogger(os.Stderr, config.Logging.Level)
		return func() error { return nil }, nil
	}

	logFile, err := os.OpenFile(config.Logging.Logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	logger = newLogger(logFile, config.Logging.Level)
	return logFile.Close, nil
}
