package main

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits of the log file.
const (
	logMaxSizeMB  = 64
	logMaxBackups = 3
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// newLogger builds the process logger. With an empty path it writes console
// output to stderr; otherwise JSON lines to a size-rotated file.
func newLogger(level, path string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	if path == "" {
		cfg := zap.Config{
			Level:             zap.NewAtomicLevelAt(lvl),
			Encoding:          "console",
			EncoderConfig:     encoderConfig(),
			DisableStacktrace: true,
			OutputPaths:       []string{"stderr"},
			ErrorOutputPaths:  []string{"stderr"},
		}
		logger, err := cfg.Build()
		if err != nil {
			return nil, errors.Wrap(err, "failed to build logger")
		}
		return logger.Sugar(), nil
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		Compress:   true,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), w, lvl)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))).Sugar(), nil
}
