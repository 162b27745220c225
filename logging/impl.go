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

type (
	impl struct {
		name  string
		level AtomicLevel
		inUTC bool

		appenders []Appender
	}

	// entry is a zapcore Entry plus the structured fields of a `*w` call.
	entry struct {
		zapcore.Entry
		fields []zapcore.Field
	}
)

// newEntry stamps time, logger name and caller. It must be called directly from one of the
// exported level methods so the caller depth lines up.
func (imp *impl) newEntry(level Level, msg string) *entry {
	ret := &entry{}
	ret.Time = time.Now()
	if imp.inUTC {
		ret.Time = ret.Time.UTC()
	}
	ret.LoggerName = imp.name
	ret.Caller = getCaller()
	ret.Level = level.AsZap()
	ret.Message = msg
	return ret
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
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	// Sublogger levels start at the parent's level but are independent afterwards.
	return &impl{
		name:      newName,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
	}
}

func (imp *impl) Sync() error {
	var errs []error
	for _, appender := range imp.appenders {
		if err := appender.Sync(); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

func (imp *impl) shouldLog(logLevel Level) bool {
	return logLevel >= imp.level.Get()
}

func (imp *impl) write(e *entry) {
	for _, appender := range imp.appenders {
		if err := appender.Write(e.Entry, e.fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

// writew attaches `keysAndValues` as zap fields, odd elements being keys, and writes the entry.
func (imp *impl) writew(e *entry, keysAndValues []interface{}) {
	e.fields = make([]zapcore.Field, 0, len(keysAndValues)/2)
	for keyIdx := 0; keyIdx < len(keysAndValues); keyIdx += 2 {
		var key string
		if stringer, ok := keysAndValues[keyIdx].(fmt.Stringer); ok {
			key = stringer.String()
		} else {
			key = fmt.Sprintf("%v", keysAndValues[keyIdx])
		}

		if keyIdx+1 < len(keysAndValues) {
			e.fields = append(e.fields, zap.Any(key, keysAndValues[keyIdx+1]))
		} else {
			// Keep the dangling key visible instead of dropping it.
			e.fields = append(e.fields, zap.Any(key, errors.New("unpaired log key")))
		}
	}
	imp.write(e)
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.write(imp.newEntry(DEBUG, fmt.Sprint(args...)))
	}
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.write(imp.newEntry(DEBUG, fmt.Sprintf(template, args...)))
	}
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.writew(imp.newEntry(DEBUG, msg), keysAndValues)
	}
}

func (imp *impl) Info(args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.write(imp.newEntry(INFO, fmt.Sprint(args...)))
	}
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.write(imp.newEntry(INFO, fmt.Sprintf(template, args...)))
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.writew(imp.newEntry(INFO, msg), keysAndValues)
	}
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.write(imp.newEntry(WARN, fmt.Sprint(args...)))
	}
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.write(imp.newEntry(WARN, fmt.Sprintf(template, args...)))
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.writew(imp.newEntry(WARN, msg), keysAndValues)
	}
}

func (imp *impl) Error(args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.write(imp.newEntry(ERROR, fmt.Sprint(args...)))
	}
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.write(imp.newEntry(ERROR, fmt.Sprintf(template, args...)))
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.writew(imp.newEntry(ERROR, msg), keysAndValues)
	}
}

// getCaller reports the frame that called a level method, e.g. "tracker/tracker.go:263".
func getCaller() zapcore.EntryCaller {
	// getCaller <- newEntry <- level method <- caller.
	const skipToLogCaller = 3
	var caller zapcore.EntryCaller
	var ok bool
	caller.PC, caller.File, caller.Line, ok = runtime.Caller(skipToLogCaller)
	if !ok {
		return caller
	}
	caller.Defined = true
	if fn := runtime.FuncForPC(caller.PC); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
