// Package logging builds the zap logger used across aquascope. The level
// is held in an atomic so the config watcher can adjust it at runtime
// without rebuilding the logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap with a runtime-adjustable level.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// New builds a production zap logger at the given level.
func New(level string) (*Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	atomic := zap.NewAtomicLevelAt(lvl)
	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{Logger: logger, level: atomic}, nil
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}
}

// SetLevel changes the level at runtime. Unknown levels are ignored so a
// bad config reload cannot silence the process.
func (l *Logger) SetLevel(level string) {
	lvl, err := parseLevel(level)
	if err != nil {
		l.Warn("ignoring unknown log level", zap.String("level", level))
		return
	}
	l.level.SetLevel(lvl)
}

// Named returns a child logger for one subsystem (store, server, sweep).
func (l *Logger) Named(name string) *zap.Logger {
	return l.Logger.Named(name)
}

func parseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
