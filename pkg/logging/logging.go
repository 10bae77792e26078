// Package logging provides the logger used across the TemStaPro runner.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface used throughout the runner. It is
// satisfied by *logrus.Entry.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Info(args ...interface{})
	Warnf(format string, args ...interface{})
	Warn(args ...interface{})
	Warnln(args ...interface{})
	Errorf(format string, args ...interface{})
	Writer() *io.PipeWriter
}

var root = newRoot()

func newRoot() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l
}

// NewComponent returns a logger scoped to the given component name.
func NewComponent(component string) Logger {
	return root.WithField("component", component)
}

// SetDebug enables or disables debug-level logging process-wide.
func SetDebug(enabled bool) {
	if enabled {
		root.SetLevel(logrus.DebugLevel)
	} else {
		root.SetLevel(logrus.InfoLevel)
	}
}
