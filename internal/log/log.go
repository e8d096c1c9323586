// Package log provides categorized structured logging for vault131.
//
// The terminal UI owns stdout, so log output only ever goes to a rotating
// file. Until Init is called every call is a no-op.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Category groups log lines by subsystem.
type Category string

const (
	CatConfig  Category = "config"
	CatDB      Category = "db"
	CatUI      Category = "ui"
	CatAudio   Category = "audio"
	CatVault   Category = "vault"
	CatTracing Category = "tracing"
)

// Options configures the file logger.
type Options struct {
	Path       string
	Debug      bool
	MaxSizeMB  int
	MaxBackups int
	RunID      string
}

var logger atomic.Pointer[zap.SugaredLogger]

func init() {
	logger.Store(zap.NewNop().Sugar())
}

// Init installs a file logger and returns a flush function.
func Init(opts Options) (func() error, error) {
	if opts.Path == "" {
		return func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    max(opts.MaxSizeMB, 1),
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if opts.RunID != "" {
		l = l.With(zap.String("run_id", opts.RunID))
	}

	sugar := l.Sugar()
	logger.Store(sugar)
	return func() error {
		_ = sugar.Sync()
		return rotator.Close()
	}, nil
}

// Reset restores the no-op logger.
func Reset() {
	logger.Store(zap.NewNop().Sugar())
}

func with(cat Category, kv []any) []any {
	return append([]any{"category", string(cat)}, kv...)
}

func Debug(cat Category, msg string, kv ...any) {
	logger.Load().Debugw(msg, with(cat, kv)...)
}

func Info(cat Category, msg string, kv ...any) {
	logger.Load().Infow(msg, with(cat, kv)...)
}

func Warn(cat Category, msg string, kv ...any) {
	logger.Load().Warnw(msg, with(cat, kv)...)
}

func Error(cat Category, msg string, kv ...any) {
	logger.Load().Errorw(msg, with(cat, kv)...)
}

// ErrorErr logs msg at error level with err attached under the "error" key.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	logger.Load().Errorw(msg, with(cat, append(kv, "error", err))...)
}

// SafeGo runs fn in a goroutine, logging a panic under cat instead of
// crashing.
func SafeGo(cat Category, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Error(cat, "Recovered panic in goroutine",
					"goroutine", name,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
