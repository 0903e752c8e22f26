// Package logging contains the structured logger used by the calibration evaluation tools.
package logging

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	globalOnce   sync.Once
	globalLogger Logger
)

// Global returns the process-wide logger, created on first use.
func Global() Logger {
	globalOnce.Do(func() {
		globalLogger = NewLogger("calibeval")
	})
	return globalLogger
}

// NewLogger returns a logger that writes Info and above to stderr in UTC.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, true, NewStderrAppender())
}

// NewBlankLogger returns a Debug level logger in UTC with no outputs. Callers add appenders.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, true)
}

// NewTestLogger returns a Debug level logger writing through the test object in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also records entries for assertions.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	observerCore, observedLogs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	return newImpl("", DEBUG, false, NewTestAppender(tb), observerCore), observedLogs
}
