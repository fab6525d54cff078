// Package logging builds the tasklist logger: a console core for the user and
// a rotated debug file for troubleshooting.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02 15:04:05"

// Options configures New.
type Options struct {
	// Verbose lowers the console level to debug.
	Verbose bool
	// Level overrides the console level when set (debug, info, warn, error).
	Level string
	// LogFile is the debug log path; empty disables the file core.
	LogFile string
	// Console receives user-facing log lines; nil means stderr.
	Console io.Writer
}

// New creates the logger. The returned function flushes and closes the log
// file and should be deferred by the caller.
func New(opts Options) (*zap.Logger, func(), error) {
	consoleLevel := zapcore.InfoLevel
	if opts.Verbose {
		consoleLevel = zapcore.DebugLevel
	}
	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(strings.TrimSpace(opts.Level))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		consoleLevel = lvl
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig()), zapcore.AddSync(console), consoleLevel),
	}

	closeFn := func() {}
	if opts.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileEncoderConfig()), zapcore.AddSync(rotator), zapcore.DebugLevel))
		closeFn = func() { _ = rotator.Close() }
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named("tasklist")
	return logger, func() {
		_ = logger.Sync()
		closeFn()
	}, nil
}

// consoleEncoderConfig renders "2006-01-02 15:04:05 - INFO - message".
func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
}

// fileEncoderConfig adds the logger name, e.g. "tasklist.sync".
func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := consoleEncoderConfig()
	cfg.NameKey = "logger"
	cfg.EncodeName = zapcore.FullNameEncoder
	return cfg
}
