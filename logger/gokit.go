package logger

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// KitLogger adapts a go-kit logger to the Logger interface, so servers
// already logging through logfmt or JSON keyvals can plug into chainok
// components.
type KitLogger struct {
	log kitlog.Logger
}

// Kit wraps a go-kit logger into a Logger.
func Kit(l kitlog.Logger) *KitLogger {
	return &KitLogger{log: l}
}

// Printf logs a formatted message at info level.
func (l *KitLogger) Printf(format string, v ...interface{}) {
	level.Info(l.log).Log("msg", fmt.Sprintf(format, v...))
}

// Warnf logs a formatted message at warn level.
func (l *KitLogger) Warnf(format string, v ...interface{}) {
	level.Warn(l.log).Log("msg", fmt.Sprintf(format, v...))
}

// Errorf logs a formatted message at error level.
func (l *KitLogger) Errorf(format string, v ...interface{}) {
	level.Error(l.log).Log("msg", fmt.Sprintf(format, v...))
}

// Fatalf logs a formatted message at error level and terminates the
// program.
func (l *KitLogger) Fatalf(format string, v ...interface{}) {
	level.Error(l.log).Log("msg", fmt.Sprintf(format, v...))
	os.Exit(1)
}
