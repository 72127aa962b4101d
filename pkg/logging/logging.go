// Package logging builds the zap loggers used across the tour guide.
package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the log level and an optional rotated log file.
type Config struct {
	Level      string `json:"level"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// DefaultConfig logs info and above to stdout.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// Validate checks the level name.
func (c Config) Validate() error {
	_, err := parseLevel(c.Level)
	return err
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, errors.Wrapf(err, "log level %q", s)
	}
	return lvl, nil
}

// NewLoggerConfig returns the console config: no stacktraces, colored levels.
func NewLoggerConfig() zap.Config {
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// New builds a sugared logger. With File set, output goes to a rotated file instead of
// stdout so it does not interfere with a full-screen terminal UI. The returned closer
// flushes the logger and closes the file.
func New(cfg Config) (*zap.SugaredLogger, func() error, error) {
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	if cfg.File == "" {
		zcfg := NewLoggerConfig()
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
		logger, err := zcfg.Build()
		if err != nil {
			return nil, nil, errors.Wrap(err, "build logger")
		}
		return logger.Sugar(), func() error { return ignoreSyncErr(logger.Sync()) }, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	logger := NewWriterLogger(rotator, lvl)
	return logger, func() error {
		_ = logger.Sync()
		return rotator.Close()
	}, nil
}

// NewWriterLogger writes plain console-encoded entries at lvl and above to w.
func NewWriterLogger(w io.Writer, lvl zapcore.Level) *zap.SugaredLogger {
	enc := NewLoggerConfig().EncoderConfig
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core).Sugar()
}

// stdout sync fails on terminals with "invalid argument"; nothing was lost.
func ignoreSyncErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "invalid argument") {
		return nil
	}
	return err
}
