package cmdlogger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
)

func TestHandler_RoutesByLevel(t *testing.T) {
	t.Parallel()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	h := cmdlogger.New(stdout, stderr)
	log := slog.New(h)

	log.Debug("hidden")
	log.Info("listing")
	log.Warn("careful")

	if got, want := stdout.String(), "listing\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if got, want := stderr.String(), "careful\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
	if h.HasErrored() {
		t.Errorf("HasErrored() = true before any error was logged")
	}

	log.Error(cmdlogger.InvalidConfigPrefix + " at ndsrom.toml")

	if !h.HasErrored() {
		t.Errorf("HasErrored() = false after an error was logged")
	}
	if !h.HasErroredBecauseInvalidConfig() {
		t.Errorf("HasErroredBecauseInvalidConfig() = false after a config error")
	}
}

func TestHandler_SendEverythingToStderr(t *testing.T) {
	t.Parallel()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	h := cmdlogger.New(stdout, stderr)
	h.SetLevel(slog.LevelDebug)
	h.SendEverythingToStderr()

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug should be enabled after SetLevel")
	}

	slog.New(h).Debug("tables decoded")

	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", stdout.String())
	}
	if got, want := stderr.String(), "tables decoded\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}
