// Package testlogger provides a slog handler which can be installed as the
// global handler while t.Parallel() tests each run the CLI, routing every
// record to the cmdlogger instance of the test that produced it.
package testlogger

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
)

// fallback receives records that cannot be tied to a test, such as those
// logged by extraction workers. It only lets errors through.
var fallback = func() cmdlogger.CmdLogger {
	l := cmdlogger.New(io.Discard, io.Discard)
	l.SetLevel(slog.LevelError)

	return l
}()

// Handler is installed as the default handler in TestMain, individual
// tests then register their own cmdlogger.CmdLogger with AddInstance.
type Handler struct {
	loggers sync.Map // map[string]cmdlogger.CmdLogger
}

var _ cmdlogger.CmdLogger = &Handler{}

func New() *Handler {
	return &Handler{}
}

func (tl *Handler) logger() cmdlogger.CmdLogger {
	key := callerInstance()
	if key == "" {
		return fallback
	}

	l, ok := tl.loggers.Load(key)
	if !ok {
		panic("logger not found: " + key)
	}

	return l.(cmdlogger.CmdLogger)
}

// AddInstance registers the logger of the calling test.
func (tl *Handler) AddInstance(logger cmdlogger.CmdLogger) {
	if prev, _ := tl.loggers.Swap(callerInstance(), logger); prev != nil {
		panic("same logger being added twice")
	}
}

// Delete removes the logger registered by AddInstance. It must be called
// before the test ends as the key can be reused by a later test.
func (tl *Handler) Delete() {
	tl.loggers.Delete(callerInstance())
}

func (tl *Handler) SendEverythingToStderr() {
	tl.logger().SendEverythingToStderr()
}

func (tl *Handler) SetLevel(level slog.Leveler) {
	tl.logger().SetLevel(level)
}

func (tl *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return tl.logger().Enabled(ctx, level)
}

func (tl *Handler) Handle(ctx context.Context, record slog.Record) error {
	l := tl.logger()
	if l == fallback {
		// an error nobody can see would silently pass a test
		panic("error logged outside of a test goroutine: " + record.Message)
	}

	return l.Handle(ctx, record)
}

func (tl *Handler) HasErrored() bool {
	return tl.logger().HasErrored()
}

func (tl *Handler) HasErroredBecauseInvalidConfig() bool {
	return tl.logger().HasErroredBecauseInvalidConfig()
}

func (tl *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return tl.logger().WithAttrs(attrs)
}

func (tl *Handler) WithGroup(g string) slog.Handler {
	return tl.logger().WithGroup(g)
}

// callerInstance finds the testing.tRunner frame of the current test in the
// call stack, for example
//
//	testing.tRunner(0x12345678, 0x98765432)
//
// The pointer arguments are unique while the test runs. Goroutines started
// by the code under test have no such frame and return "".
func callerInstance() string {
	sc := bufio.NewScanner(bytes.NewReader(debug.Stack()))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "testing.tRunner(") {
			return line
		}
		if strings.HasPrefix(line, "created by ") && strings.Contains(line, " in goroutine ") {
			return ""
		}
	}

	return ""
}
