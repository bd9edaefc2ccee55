package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger used by the hotel service.
// Package-level helpers write through a shared zap logger; Init swaps the level
// at runtime so callers never hold a stale instance.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	level  Level = LevelInfo
	atom         = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar        = newSugar(zapcore.Lock(os.Stdout))
)

func newSugar(ws zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, atom)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = LevelDebug
		atom.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		level = LevelWarn
		atom.SetLevel(zapcore.WarnLevel)
	case "error":
		level = LevelError
		atom.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		level = LevelFatal
		atom.SetLevel(zapcore.FatalLevel)
	default:
		level = LevelInfo
		atom.SetLevel(zapcore.InfoLevel)
	}
}

// SetOutput redirects all log output; used by tests.
func SetOutput(ws zapcore.WriteSyncer) {
	mu.Lock()
	defer mu.Unlock()
	sugar = newSugar(ws)
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// With returns a child logger carrying the given key/value pairs.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return current().Desugar().WithOptions(zap.AddCallerSkip(-1)).Sugar().With(keysAndValues...)
}

func Debugf(format string, v ...interface{}) { current().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { current().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { current().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { current().Errorf(format, v...) }

// Fatalf logs regardless of level and exits.
func Fatalf(format string, v ...interface{}) { current().Fatalf(format, v...) }

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// Sync flushes buffered entries.
func Sync() { _ = current().Sync() }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
