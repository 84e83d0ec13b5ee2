package core

// Logger is any service the app can log through. Implementations may inspect
// args for well-known types (errors, users) and tag log entries with them.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
