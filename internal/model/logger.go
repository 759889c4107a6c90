package model

//
// Logger
//

// DebugLogger is a logger emitting only debug messages.
type DebugLogger interface {
	// Debug emits a debug message.
	Debug(msg string)

	// Debugf formats and emits a debug message.
	Debugf(format string, v ...interface{})
}

// Logger is the logger used by the relay and by the commands. It is
// out of the box compatible with `log.Log` in `apex/log`.
type Logger interface {
	DebugLogger

	// Info emits an informational message.
	Info(msg string)

	// Infof formats and emits an informational message.
	Infof(format string, v ...interface{})

	// Warn emits a warning message.
	Warn(msg string)

	// Warnf formats and emits a warning message.
	Warnf(format string, v ...interface{})
}

// DiscardLogger is a [Logger] that discards its input.
var DiscardLogger Logger = discardLogger{}

type discardLogger struct{}

func (discardLogger) Debug(msg string)                       {}
func (discardLogger) Debugf(format string, v ...interface{}) {}
func (discardLogger) Info(msg string)                        {}
func (discardLogger) Infof(format string, v ...interface{})  {}
func (discardLogger) Warn(msg string)                        {}
func (discardLogger) Warnf(format string, v ...interface{})  {}

// ValidLoggerOrDefault returns logger when it is not nil and
// [DiscardLogger] otherwise.
func ValidLoggerOrDefault(logger Logger) Logger {
	if logger != nil {
		return logger
	}
	return DiscardLogger
}
