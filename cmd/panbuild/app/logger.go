package app

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/louib/panbuild/pkg/logging"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger creates the application logger. Level precedence, highest
// first:
//  1. --log-level (or log.level / PB_LOG_LEVEL)
//  2. -v/--verbose (debug)
//  3. -q/--quiet (warn)
//  4. info
func NewLogger(config *Config) zerolog.Logger {
	level, warning := determineLogLevel(config)

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:      level,
		Format:     config.LogFormat,
		Output:     config.LogOutput,
		TimeFormat: "kitchen",
		NoColor:    config.NoColor,
		AddCaller:  level == "debug" || level == "trace",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 28,
	})
	if warning != "" {
		logger.Warn().Msg(warning)
	}
	return logger
}

// determineLogLevel resolves the level and explains any input it had to
// override.
func determineLogLevel(config *Config) (string, string) {
	if config.LogLevel != "" {
		if slices.Contains(logLevels, config.LogLevel) {
			return config.LogLevel, ""
		}
		return "info", "invalid log level " + config.LogLevel + ", using info"
	}
	switch {
	case config.Verbose && config.Quiet:
		return "warn", "both --verbose and --quiet specified, using --quiet"
	case config.Verbose:
		return "debug", ""
	case config.Quiet:
		return "warn", ""
	}
	return "info", ""
}
