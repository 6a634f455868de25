// Package logging provides the single *logrus.Entry every other
// package logs through. Log output carries no protocol semantics —
// nothing here affects simulation state or outcome.
package logging

import "github.com/sirupsen/logrus"

var logger *logrus.Entry

// Fields is re-exported so callers never need to import logrus
// directly just to build a log line.
type Fields = logrus.Fields

func init() {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
}

// SetLevel adjusts the package-wide log level, used by internal/config
// when the --verbose flag is set.
func SetLevel(l logrus.Level) {
	logger.Logger.SetLevel(l)
}

// SetFormatter swaps the underlying logrus formatter (for example to
// select text vs. JSON output).
func SetFormatter(f logrus.Formatter) {
	logger.Logger.SetFormatter(f)
}

// Entry returns the shared logger entry.
func Entry() *logrus.Entry {
	return logger
}

// WithError returns a derived entry carrying err, for the common
// error-then-log call site.
func WithError(err error) *logrus.Entry {
	return logger.WithError(err)
}
