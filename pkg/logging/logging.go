// Package logging builds and installs the process-global zap logger.
package logging

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/takoyaki65/dsa-watchdog/internal/constants"
)

// NewLogger builds a zap.Logger from an optional tuning file, replaces the
// package-global logger with it, and returns it so main can defer its
// Sync. A nil v (no tuning file given) produces a production logger at
// info level, matching this tool's default. levelOverride, if non-nil,
// wins over both the tuning file and the default (the CLI's --log-level
// flag uses this).
func NewLogger(v *viper.Viper, levelOverride *zapcore.Level) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if v != nil && v.IsSet("logging.level") {
		if err := level.UnmarshalText([]byte(v.GetString("logging.level"))); err != nil {
			return nil, err
		}
	}
	if levelOverride != nil {
		level = *levelOverride
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}

// LevelFromString maps the ambient log level constants onto zapcore
// levels, used when a caller wants to force a level outside the tuning
// file (e.g. the CLI's --log-level flag).
func LevelFromString(s string) zapcore.Level {
	switch s {
	case constants.LogLevelDebug:
		return zapcore.DebugLevel
	case constants.LogLevelWarn:
		return zapcore.WarnLevel
	case constants.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
