package main

import (
	"fmt"
	"os"

	"github.com/finbot-ai/finbot/pkg/logger"
)

const (
	// LogLevelEnvVar is the environment variable name for log level.
	LogLevelEnvVar = "LOG_LEVEL"
	// LogFileEnvVar is the environment variable name for log file path.
	LogFileEnvVar = "LOG_FILE"
	// LogFormatEnvVar is the environment variable name for log format.
	LogFormatEnvVar = "LOG_FORMAT"
	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "simple"
)

// initLoggerFromCLI initializes the logger from CLI flags and environment
// variables. Priority: CLI flags > env vars > defaults. Returns a cleanup
// function when logging goes to a file.
func initLoggerFromCLI(cliLogLevel, cliLogFile, cliLogFormat string) (func(), error) {
	logLevel := cliLogLevel
	if logLevel == "" {
		logLevel = os.Getenv(LogLevelEnvVar)
	}
	if logLevel == "" {
		logLevel = "info"
	}

	logFile := cliLogFile
	if logFile == "" {
		logFile = os.Getenv(LogFileEnvVar)
	}

	logFormat := cliLogFormat
	if logFormat == "" {
		logFormat = os.Getenv(LogFormatEnvVar)
	}
	if logFormat == "" {
		logFormat = DefaultLogFormat
	}

	output := os.Stderr
	var cleanup func()
	if logFile != "" {
		file, cleanupFn, err := logger.OpenLogFile(logFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
		cleanup = cleanupFn
	}

	logger.Init(logger.ParseLevel(logLevel), output, logFormat)
	return cleanup, nil
}
