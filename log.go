package dmtx

import "log/slog"

// logger is the process-wide logger shared by the encode, decode, and
// detection paths. Configure it before starting any decode; it is not
// guarded against concurrent replacement.
var logger = slog.Default()

// SetLogger replaces the package logger. A nil argument is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Logger returns the current package logger.
func Logger() *slog.Logger {
	return logger
}
