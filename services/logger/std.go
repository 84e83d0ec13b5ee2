package logsvc

import (
	"io"
	"log"

	"github.com/PeaceIshola/eduhub/core"
)

// StdLogger logs to a standard library logger only. Used in DEV|TEST where
// rollbar would be noise.
type StdLogger struct {
	std     *log.Logger
	enabled bool
}

var _ core.Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger) *StdLogger {
	return &StdLogger{std: std, enabled: true}
}

// NewDiscardLogger returns a logger that writes nowhere; handy in tests.
func NewDiscardLogger() *StdLogger {
	return NewStdLogger(log.New(io.Discard, "", 0))
}

func (l *StdLogger) Enable(enabled bool) { l.enabled = enabled }

func (l *StdLogger) output(level, msg string, args []interface{}) {
	if !l.enabled {
		return
	}
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l *StdLogger) Debug(msg string, args ...interface{}) { l.output("DEBUG", msg, args) }
func (l *StdLogger) Info(msg string, args ...interface{})  { l.output("INFO", msg, args) }
func (l *StdLogger) Warn(msg string, args ...interface{})  { l.output("WARN", msg, args) }
func (l *StdLogger) Error(msg string, args ...interface{}) { l.output("ERROR", msg, args) }
