// Package logging builds the zap logger. The terminal is owned by the TUI,
// so output goes to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level, output and encoding.
type Options struct {
	Level string
	// Path is a file path, or "stdout"/"stderr".
	Path string
	// Format is "json" (default) or "console".
	Format string
}

// New returns a sugared logger and a flush func to defer in main.
func New(opt Options) (*zap.SugaredLogger, func(), error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(opt.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	out := opt.Path
	if out == "" {
		out = "stderr"
	}
	if out != "stdout" && out != "stderr" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, nil, fmt.Errorf("log dir: %w", err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{out}
	config.ErrorOutputPaths = []string{out}
	config.DisableStacktrace = true
	config.Encoding = "json"
	if strings.EqualFold(opt.Format, "console") {
		config.Encoding = "console"
	}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	sugar := logger.Sugar()
	return sugar, func() { _ = sugar.Sync() }, nil
}

// Nop discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
