package cmdlogger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// InvalidConfigPrefix starts the error logged when a config file is skipped.
const InvalidConfigPrefix = "Ignored invalid config file"

type Handler struct {
	stdout io.Writer
	stderr io.Writer

	// records may come from extraction workers
	mu                             sync.Mutex
	hasErrored                     bool
	hasErroredBecauseInvalidConfig bool
	everythingToStderr             bool
	level                          slog.Leveler
}

var _ CmdLogger = &Handler{}

func New(stdout, stderr io.Writer) CmdLogger {
	return &Handler{
		stdout: stdout,
		stderr: stderr,
		level:  slog.LevelInfo,
	}
}

// SendEverythingToStderr tells the logger to send all logs to stderr
// regardless of their level.
func (c *Handler) SendEverythingToStderr() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.everythingToStderr = true
}

func (c *Handler) SetLevel(level slog.Leveler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.level = level
}

func (c *Handler) Enabled(_ context.Context, level slog.Level) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return level >= c.level.Level()
}

func (c *Handler) Handle(_ context.Context, record slog.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := c.stdout
	if record.Level >= slog.LevelError {
		c.hasErrored = true
		if strings.HasPrefix(record.Message, InvalidConfigPrefix) {
			c.hasErroredBecauseInvalidConfig = true
		}
	}
	if c.everythingToStderr || record.Level >= slog.LevelWarn {
		w = c.stderr
	}

	_, err := fmt.Fprintln(w, record.Message)

	return err
}

// HasErrored returns true if there have been any calls to Handle with
// a level of [slog.LevelError]
func (c *Handler) HasErrored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hasErrored
}

// HasErroredBecauseInvalidConfig returns true if one of the errors handled
// was about a config file being ignored.
func (c *Handler) HasErroredBecauseInvalidConfig() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hasErroredBecauseInvalidConfig
}

func (c *Handler) WithAttrs(_ []slog.Attr) slog.Handler {
	panic("not supported")
}

func (c *Handler) WithGroup(_ string) slog.Handler {
	panic("not supported")
}
