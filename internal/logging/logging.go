// Package logging provides the codec's ambient logging and stream
// statistics surface: a small level-based Logger interface, a zap-backed
// implementation with lumberjack log rotation, and a Stats accumulator
// for bitrate/duration/coding-speed reporting.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the interface the codec's engines log through. A caller that
// doesn't care about logging can pass a no-op implementation.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warning(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// zapLogger adapts a *zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

// New wraps an existing zap logger.
func New(l *zap.Logger) Logger {
	return &zapLogger{s: l.Sugar()}
}

// NewFile builds a Logger that writes JSON-encoded entries to path,
// rotating via lumberjack once the file exceeds maxSizeMB.
func NewFile(path string, maxSizeMB, maxBackups, maxAgeDays int) Logger {
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(sink), zapcore.DebugLevel)
	return New(zap.New(core))
}

func (l *zapLogger) Debug(msg string, args ...interface{})   { l.s.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...interface{})     { l.s.Infow(msg, args...) }
func (l *zapLogger) Warning(msg string, args ...interface{})  { l.s.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...interface{})    { l.s.Errorw(msg, args...) }
func (l *zapLogger) Fatal(msg string, args ...interface{})    { l.s.Fatalw(msg, args...) }

// NopLogger discards everything; used by callers that don't want logging.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{})   {}
func (NopLogger) Info(string, ...interface{})    {}
func (NopLogger) Warning(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{})   {}
func (NopLogger) Fatal(string, ...interface{})   {}
