package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
	"github.com/ndstoolkit/ndsrom/internal/config"
	"github.com/ndstoolkit/ndsrom/internal/testlogger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write %s: %v", p, err)
	}

	return p
}

// withLogger registers a logger for the calling test and returns its stderr
func withLogger(t *testing.T) (cmdlogger.CmdLogger, *bytes.Buffer) {
	t.Helper()

	stderr := &bytes.Buffer{}
	logger := cmdlogger.New(&bytes.Buffer{}, stderr)

	handler, ok := slog.Default().Handler().(*testlogger.Handler)
	if !ok {
		t.Fatalf("default logger is not a testlogger.Handler")
	}
	handler.AddInstance(logger)
	t.Cleanup(handler.Delete)

	return logger, stderr
}

func intPtr(i int) *int { return &i }

func TestManager_Get(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    config.Config
	}{
		{
			name:    "all keys",
			content: "Jobs = 3\nSequential = true\nOverwrite = true\nCacheSize = 0\nVerbosity = \"debug\"\n",
			want: config.Config{
				Jobs:       3,
				Sequential: true,
				Overwrite:  true,
				CacheSize:  intPtr(0),
				Verbosity:  "debug",
			},
		},
		{
			name:    "empty file",
			content: "",
			want:    config.Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, _ := withLogger(t)

			dir := t.TempDir()
			rom := writeFile(t, dir, "game.nds", "")
			tt.want.LoadPath = writeFile(t, dir, config.ConfigName, tt.content)

			got := config.NewManager().Get(rom)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Get() mismatch (-want +got):\n%s", diff)
			}
			if logger.HasErrored() {
				t.Errorf("a valid config should not log an error")
			}
		})
	}
}

func TestManager_Get_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{name: "unknown key", content: "Threads = 2\n", msg: "unknown keys in config file: Threads"},
		{name: "negative jobs", content: "Jobs = -1\n", msg: "Jobs must not be negative"},
		{name: "bad verbosity", content: "Verbosity = \"loud\"\n", msg: "invalid verbosity level"},
		{name: "not toml", content: "Jobs = [\n", msg: "toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, stderr := withLogger(t)

			dir := t.TempDir()
			writeFile(t, dir, config.ConfigName, tt.content)

			m := config.NewManager()
			m.DefaultConfig = config.Config{Jobs: 7}

			got := m.Get(dir)

			if diff := cmp.Diff(m.DefaultConfig, got); diff != "" {
				t.Errorf("invalid config should fall back to the default (-want +got):\n%s", diff)
			}
			if !logger.HasErroredBecauseInvalidConfig() {
				t.Errorf("expected the invalid config to be reported")
			}
			if !strings.Contains(stderr.String(), tt.msg) {
				t.Errorf("stderr = %q, want it to mention %q", stderr.String(), tt.msg)
			}
		})
	}
}

func TestManager_Get_Missing(t *testing.T) {
	t.Parallel()
	logger, _ := withLogger(t)

	m := config.NewManager()
	got := m.Get(t.TempDir())

	if diff := cmp.Diff(config.Config{}, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
	if logger.HasErrored() {
		t.Errorf("a missing config file is not an error")
	}
}

func TestManager_UseOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	override := writeFile(t, t.TempDir(), "custom.toml", "Jobs = 2\n")
	writeFile(t, dir, config.ConfigName, "Jobs = 9\n")

	m := config.NewManager()
	if err := m.UseOverride(override); err != nil {
		t.Fatalf("UseOverride() error = %v", err)
	}

	if got := m.Get(dir).Jobs; got != 2 {
		t.Errorf("Get().Jobs = %d, want the override's 2", got)
	}

	if err := m.UseOverride(filepath.Join(dir, "missing.toml")); err == nil {
		t.Errorf("UseOverride() of a missing file should fail")
	}
}
