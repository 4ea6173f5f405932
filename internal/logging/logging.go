// Package logging defines the structured-logging interface the rest of
// this module programs against, so any component can be exercised in
// tests against a no-op implementation without pulling in zap.
package logging

import "go.uber.org/zap"

// Logger is a minimal structured-logging interface. Fields are supplied
// as alternating key/value pairs, matching zap's SugaredLogger shape.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// zapLogger adapts a *zap.SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZap wraps logger as a Logger.
func NewZap(logger *zap.Logger) Logger {
	return zapLogger{s: logger.Sugar()}
}

func (z zapLogger) Debug(msg string, keyvals ...interface{}) { z.s.Debugw(msg, keyvals...) }
func (z zapLogger) Info(msg string, keyvals ...interface{})  { z.s.Infow(msg, keyvals...) }
func (z zapLogger) Warn(msg string, keyvals ...interface{})  { z.s.Warnw(msg, keyvals...) }
func (z zapLogger) Error(msg string, keyvals ...interface{}) { z.s.Errorw(msg, keyvals...) }

// Nop discards every log call; used by tests and by components that
// received no logger.
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}
