// Package cmdlogger is the slog handler used by the ndsrom command, writing
// plain messages to stdout and errors to stderr.
package cmdlogger

import (
	"fmt"
	"log/slog"
)

type CmdLogger interface {
	slog.Handler
	SendEverythingToStderr()
	HasErrored() bool
	HasErroredBecauseInvalidConfig() bool
	SetLevel(level slog.Leveler)
}

// SendEverythingToStderr tells the default logger, if it is a CmdLogger, to
// send all logs to stderr regardless of their level.
//
// Commands call this before writing data such as file contents or JSON to
// stdout, which cannot be mixed with log lines.
func SendEverythingToStderr() {
	if l, ok := slog.Default().Handler().(CmdLogger); ok {
		l.SendEverythingToStderr()
	}
}

// HasErrored reports whether the default logger has handled an error record.
// It is always false when the default logger is not a CmdLogger.
func HasErrored() bool {
	if l, ok := slog.Default().Handler().(CmdLogger); ok {
		return l.HasErrored()
	}

	return false
}

func SetLevel(level slog.Leveler) {
	if l, ok := slog.Default().Handler().(CmdLogger); ok {
		l.SetLevel(level)
	}
}

func Debugf(msg string, args ...any) {
	slog.Debug(fmt.Sprintf(msg, args...))
}

func Infof(msg string, args ...any) {
	slog.Info(fmt.Sprintf(msg, args...))
}

func Warnf(msg string, args ...any) {
	slog.Warn(fmt.Sprintf(msg, args...))
}

func Errorf(msg string, args ...any) {
	slog.Error(fmt.Sprintf(msg, args...))
}
