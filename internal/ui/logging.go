package ui

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	Debug bool
	l     *logrus.Logger
}

func NewLogger(debug bool) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return &Logger{Debug: debug, l: l}
}

// NewSilentLogger discards everything; used by tests and as the fallback
// when no logger is wired.
func NewSilentLogger() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{l: l}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.l.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.l.Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.l.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.l.Errorf(format, args...)
}
