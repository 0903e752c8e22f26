package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TimeFormat is the timestamp layout of every appender in this package.
const TimeFormat = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface, so zap
// cores such as the test observer can be used directly.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync flushes anything buffered by Write.
	Sync() error
}

// ConsoleAppender writes tab separated lines:
// `2024-05-02T09:12:09.459Z	WARN	calibeval	evaluation/evaluator.go:91	skipping collection	{"collection":"4"}`.
type ConsoleAppender struct {
	io.Writer
}

// NewStderrAppender returns an appender writing to stderr.
func NewStderrAppender() ConsoleAppender {
	return ConsoleAppender{os.Stderr}
}

// NewWriterAppender returns an appender writing to w.
func NewWriterAppender(w io.Writer) ConsoleAppender {
	return ConsoleAppender{w}
}

// Write outputs the log entry to the underlying stream.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	if _, werr := fmt.Fprintln(appender.Writer, line); werr != nil {
		return werr
	}
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

// formatEntry renders an entry as one tab separated line. Fields are JSON encoded in the order given.
// When the fields cannot be encoded the line is still returned, without them, along with the error.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	parts := []string{
		entry.Time.Format(TimeFormat),
		strings.ToUpper(entry.Level.String()),
		entry.LoggerName,
	}
	if entry.Caller.Defined {
		parts = append(parts, shortCaller(entry.Caller))
	}
	parts = append(parts, entry.Message)
	if len(fields) == 0 {
		return strings.Join(parts, "\t"), nil
	}

	// An empty entry makes the encoder emit only the fields.
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := enc.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return strings.Join(parts, "\t"), err
	}
	defer buf.Free()
	return strings.Join(append(parts, buf.String()), "\t"), nil
}

// shortCaller keeps the last directory and the file name, e.g. "chessboard/resolver.go:88".
func shortCaller(caller zapcore.EntryCaller) string {
	file := caller.File
	if i := strings.LastIndex(file, "/"); i >= 0 {
		if j := strings.LastIndex(file[:i], "/"); j >= 0 {
			file = file[j+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, caller.Line)
}
