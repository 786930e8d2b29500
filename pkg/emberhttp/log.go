package emberhttp

import "github.com/sirupsen/logrus"

// Logger is the subset of *logrus.Logger this package calls into. A nil
// Logger is valid everywhere it is accepted. Every call site here goes
// through the package-level helpers below, which silently no-op on nil
// rather than force every caller to construct a logger just to embed
// the engine in a test or a tool that doesn't want log output.
type Logger interface {
	WithError(err error) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

func logDebugf(l Logger, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.Debugf(format, args...)
}

func logWarnf(l Logger, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.Warnf(format, args...)
}

func logErrorf(l Logger, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.Errorf(format, args...)
}
