package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// ParseLevel maps a level name to a Level. Unknown names fall back to INFO.
func ParseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger is a levelled printf-style logger. Child loggers created with
// WithFields share the parent's output and level.
type Logger struct {
	level Level
	entry *logrus.Entry
}

func New(level string) *Logger {
	lvl := ParseLevel(level)

	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(lvl.logrusLevel())
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05.000000",
	})

	return &Logger{
		level: lvl,
		entry: logrus.NewEntry(base),
	}
}

// Level returns the configured minimum level.
func (l *Logger) Level() Level {
	return l.level
}

// SetOutput redirects this logger and every logger derived from it.
func (l *Logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

// WithFields returns a child logger that attaches fields to every line.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		level: l.level,
		entry: l.entry.WithFields(logrus.Fields(fields)),
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Debug(format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Warn(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(format, args...)
}
