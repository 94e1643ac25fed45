// Package logging owns the process-global structured logger used by the
// HTTP handlers and the relay command, configured once from the
// WEBMETRO_LOG environment variable.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envLogLevel = "WEBMETRO_LOG"

var (
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	global   *zap.SugaredLogger
	initOnce sync.Once
)

// Init builds the global logger. Safe to call more than once; only the
// first call takes effect.
func Init() {
	initOnce.Do(func() {
		level.SetLevel(detectLevel())
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(os.Stdout), level)
		global = zap.New(core).Sugar()
	})
}

func detectLevel() zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envLogLevel))) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error", "err":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLevel changes the runtime log level, bypassing WEBMETRO_LOG; mainly
// useful from tests.
func SetLevel(l zapcore.Level) {
	Init()
	level.SetLevel(l)
}

// Logger returns the global logger, initializing it on first use.
func Logger() *zap.SugaredLogger {
	Init()
	return global
}

// Component returns a child logger tagged with a component name, mirroring
// the `.With("component", ...)` convention used throughout this codebase's
// component loggers.
func Component(name string) *zap.SugaredLogger {
	return Logger().With("component", name)
}
