// Package logging wraps zap with the small leveled API the embassy
// components use.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured key/value logger.
type Logger struct {
	sugared *zap.SugaredLogger
}

// Options configure New.
type Options struct {
	// Mode is "development" (console) or "production" (JSON).
	Mode string
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// File, when set, sends output there instead of stderr.
	File string
}

// New builds a logger for the given options.
func New(opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{sugared: z.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sugared: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger. Used by tests with zaptest/observer.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{sugared: z.Sugar()}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugared.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugared.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugared.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugared.Errorw(msg, keysAndValues...)
}

// With returns a child logger that always carries keysAndValues.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugared: l.sugared.With(keysAndValues...)}
}

// Named returns a child logger with name appended to the logger name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{sugared: l.sugared.Named(name)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.sugared.Sync()
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
