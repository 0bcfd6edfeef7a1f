// Package ops provides the structured logging facade used throughout
// recall. Call sites never import logrus directly; they depend on the
// small Logger interface here, which can be backed by the process's
// standard logrus logger or decorated with fixed fields for a task.
package ops

import (
	log "github.com/sirupsen/logrus"
)

// Logger publishes structured log events carrying a level, a message,
// and a set of fields. Components obtain one at construction time and
// never touch logrus directly, so tests can substitute a recording
// Logger without a global logrus override.
type Logger interface {
	// Log writes a log event. The event may be filtered based on |level|
	// against the Logger's configured Level().
	Log(level log.Level, fields log.Fields, message string) error
	// Level returns the currently configured level filter.
	Level() log.Level
}

// NewLoggerWithFields wraps delegate, returning a Logger that merges
// |add| into the fields of every event it publishes. Used to stamp a
// job kind, scope key, or session id onto every log line a component
// emits without threading those values through every call site.
func NewLoggerWithFields(delegate Logger, add log.Fields) Logger {
	return &withFieldsLogger{delegate: delegate, add: add}
}

type withFieldsLogger struct {
	delegate Logger
	add      log.Fields
}

func (l *withFieldsLogger) Level() log.Level { return l.delegate.Level() }

func (l *withFieldsLogger) Log(level log.Level, fields log.Fields, message string) error {
	var final log.Fields
	if l.requiresCopy(level, len(fields)) {
		final = make(log.Fields, len(fields)+len(l.add))
		for k, v := range l.add {
			final[k] = v
		}
		for k, v := range fields {
			final[k] = v
		}
	} else {
		final = l.add
	}
	return l.delegate.Log(level, final, message)
}

// requiresCopy avoids copying the fields map when there's nothing to
// merge, or when the event would be filtered by level anyway.
func (l *withFieldsLogger) requiresCopy(level log.Level, givenLen int) bool {
	return givenLen > 0 && level <= l.delegate.Level()
}

type stdLogAppender struct{}

func (stdLogAppender) Level() log.Level { return log.GetLevel() }

func (l stdLogAppender) Log(level log.Level, fields log.Fields, message string) error {
	if level > l.Level() {
		return nil
	}
	log.WithFields(fields).Log(level, message)
	return nil
}

// StdLogger returns a Logger that forwards directly to the process's
// standard logrus logger.
func StdLogger() Logger {
	return stdLogAppender{}
}
