package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// tbAppender routes entries to tb.Log so they show up under the test that produced them.
type tbAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender writing through tb.
func NewTestAppender(tb testing.TB) Appender {
	return tbAppender{tb: tb}
}

func (a tbAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	a.tb.Helper()
	line, err := formatEntry(entry, fields)
	a.tb.Log(line)
	return err
}

func (a tbAppender) Sync() error {
	return nil
}
