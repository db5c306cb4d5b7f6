package routespec

import "log/slog"

// Logger is the minimal logging interface used across the module. Arguments
// after the message alternate between keys and values, slog style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NewSlogAdapter wraps an *slog.Logger in the Logger interface. A nil
// logger wraps slog.Default().
func NewSlogAdapter(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogAdapter{logger: logger}
}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
