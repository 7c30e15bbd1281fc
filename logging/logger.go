package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// DefaultLog provides a default implementation of the Logger interface.
// The zero value logs through the logrus standard logger.
type DefaultLog struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// Logger instances provide custom logging.
type Logger interface {

	// Log with level ERROR
	Error(...interface{})

	// Log formatted messages with level ERROR
	Errorf(string, ...interface{})

	// Log with level WARN
	Warn(...interface{})

	// Log formatted messages with level WARN
	Warnf(string, ...interface{})

	// Log with level INFO
	Info(...interface{})

	// Log formatted messages with level INFO
	Infof(string, ...interface{})

	// Log with level DEBUG
	Debug(...interface{})

	// Log formatted messages with level DEBUG
	Debugf(string, ...interface{})

	WithFields(map[string]interface{}) Logger
}

// New returns a DefaultLog writing through its own logrus logger.
func New() *DefaultLog {
	return &DefaultLog{logger: logrus.New()}
}

func (dl *DefaultLog) entry() *logrus.Entry {
	l := dl.logger
	if l == nil {
		l = logrus.StandardLogger()
	}
	return l.WithFields(dl.fields)
}

func (dl *DefaultLog) Error(a ...interface{}) { dl.entry().Error(a...) }
func (dl *DefaultLog) Errorf(f string, a ...interface{}) { dl.entry().Errorf(f, a...) }
func (dl *DefaultLog) Warn(a ...interface{}) { dl.entry().Warn(a...) }
func (dl *DefaultLog) Warnf(f string, a ...interface{}) { dl.entry().Warnf(f, a...) }
func (dl *DefaultLog) Info(a ...interface{}) { dl.entry().Info(a...) }
func (dl *DefaultLog) Infof(f string, a ...interface{}) { dl.entry().Infof(f, a...) }
func (dl *DefaultLog) Debug(a ...interface{}) { dl.entry().Debug(a...) }
func (dl *DefaultLog) Debugf(f string, a ...interface{}) { dl.entry().Debugf(f, a...) }

// WithFields returns a new logger carrying the fields of dl and the
// given fields. dl itself is not modified.
func (dl *DefaultLog) WithFields(fields map[string]interface{}) Logger {
	merged := make(logrus.Fields, len(dl.fields)+len(fields))
	for k, v := range dl.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &DefaultLog{logger: dl.logger, fields: merged}
}

// SetOutput sets the output of the underlying logrus logger. Calling it
// on the zero value changes the standard logger.
func (dl *DefaultLog) SetOutput(w io.Writer) { dl.base().SetOutput(w) }

func (dl *DefaultLog) SetLevel(level logrus.Level) { dl.base().SetLevel(level) }

func (dl *DefaultLog) SetFormatter(f logrus.Formatter) { dl.base().SetFormatter(f) }

func (dl *DefaultLog) base() *logrus.Logger {
	if dl.logger == nil {
		dl.logger = logrus.StandardLogger()
	}
	return dl.logger
}
