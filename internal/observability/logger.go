package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions controls logger construction.
type LogOptions struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	File       string // optional rotated file sink, in addition to stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewLogger builds a zap logger. JSON goes to stdout unless Format is "console";
// when File is set every entry is also written to a lumberjack-rotated file.
func NewLogger(opts LogOptions) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var stdoutEnc zapcore.Encoder
	if opts.Format == "console" {
		devCfg := zap.NewDevelopmentEncoderConfig()
		devCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		stdoutEnc = zapcore.NewConsoleEncoder(devCfg)
	} else {
		stdoutEnc = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEnc, zapcore.Lock(os.Stdout), level),
	}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Ticker is the structured field used for ticker symbols across components.
func Ticker(symbol string) zap.Field {
	return zap.String("ticker", symbol)
}
