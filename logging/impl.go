package logging

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// impl fans every entry at or above its level out to its appenders. Subloggers share the appenders
// of their parent but own their level.
type impl struct {
	name      string
	level     AtomicLevel
	inUTC     bool
	appenders []Appender
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return newImpl(name, imp.level.Get(), imp.inUTC, imp.appenders...)
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

// AsZap returns a zap logger writing through the same appenders at the same level.
func (imp *impl) AsZap() *zap.SugaredLogger {
	return zap.New(appenderCore{imp: imp}, zap.AddCaller()).Named(imp.name).Sugar()
}

func (imp *impl) Desugar() *zap.Logger {
	return imp.AsZap().Desugar()
}

func (imp *impl) enabled(level Level) bool {
	return level >= imp.level.Get()
}

func (imp *impl) write(entry zapcore.Entry, fields []zapcore.Field) error {
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Write(entry, fields))
	}
	return err
}

// emit must be called directly from the exported logging method so the caller lookup lands on the
// line that logged.
func (imp *impl) emit(level Level, msg string, fields []zapcore.Field) {
	const skipToLogCaller = 3
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     callerAt(skipToLogCaller),
	}
	if err := imp.write(entry, fields); err != nil {
		fmt.Fprint(os.Stderr, err)
	}
}

// fieldsOf pairs up keysAndValues. A trailing key without a value is kept with an error value so the
// mistake shows in the output.
func fieldsOf(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.enabled(DEBUG) {
		imp.emit(DEBUG, fmt.Sprint(args...), nil)
	}
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.enabled(DEBUG) {
		imp.emit(DEBUG, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.enabled(DEBUG) {
		imp.emit(DEBUG, msg, fieldsOf(keysAndValues))
	}
}

func (imp *impl) Info(args ...interface{}) {
	if imp.enabled(INFO) {
		imp.emit(INFO, fmt.Sprint(args...), nil)
	}
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.enabled(INFO) {
		imp.emit(INFO, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.enabled(INFO) {
		imp.emit(INFO, msg, fieldsOf(keysAndValues))
	}
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.enabled(WARN) {
		imp.emit(WARN, fmt.Sprint(args...), nil)
	}
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.enabled(WARN) {
		imp.emit(WARN, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.enabled(WARN) {
		imp.emit(WARN, msg, fieldsOf(keysAndValues))
	}
}

func (imp *impl) Error(args ...interface{}) {
	if imp.enabled(ERROR) {
		imp.emit(ERROR, fmt.Sprint(args...), nil)
	}
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.enabled(ERROR) {
		imp.emit(ERROR, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.enabled(ERROR) {
		imp.emit(ERROR, msg, fieldsOf(keysAndValues))
	}
}

// The Fatal methods log at ERROR regardless of level, then exit the process.
func (imp *impl) Fatal(args ...interface{}) {
	imp.emit(ERROR, fmt.Sprint(args...), nil)
	os.Exit(1)
}

func (imp *impl) Fatalf(template string, args ...interface{}) {
	imp.emit(ERROR, fmt.Sprintf(template, args...), nil)
	os.Exit(1)
}

func (imp *impl) Fatalw(msg string, keysAndValues ...interface{}) {
	imp.emit(ERROR, msg, fieldsOf(keysAndValues))
	os.Exit(1)
}

func callerAt(skip int) zapcore.EntryCaller {
	pc, file, line, ok := runtime.Caller(skip)
	caller := zapcore.NewEntryCaller(pc, file, line, ok)
	if fn := runtime.FuncForPC(pc); ok && fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}

// appenderCore adapts a logger to zapcore.Core for callers that need a zap logger.
type appenderCore struct {
	imp    *impl
	fields []zapcore.Field
}

func (c appenderCore) Enabled(level zapcore.Level) bool {
	return level >= c.imp.level.Get().AsZap()
}

func (c appenderCore) With(fields []zapcore.Field) zapcore.Core {
	return appenderCore{imp: c.imp, fields: append(append([]zapcore.Field(nil), c.fields...), fields...)}
}

func (c appenderCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c appenderCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.imp.write(entry, append(append([]zapcore.Field(nil), c.fields...), fields...))
}

func (c appenderCore) Sync() error {
	return c.imp.Sync()
}
