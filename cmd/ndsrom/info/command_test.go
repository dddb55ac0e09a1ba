package info_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/testcmd"
	"github.com/ndstoolkit/ndsrom/internal/testrom"
	"github.com/ndstoolkit/ndsrom/internal/testutility"
)

func TestCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sample := testrom.Sample().Build().WriteFile(t, dir, "sample.nds")
	minimal := testrom.Minimal().Build().WriteFile(t, dir, "minimal.nds")

	truncated := filepath.Join(dir, "truncated.nds")
	if err := os.WriteFile(truncated, make([]byte, 0x100), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []testcmd.Case{
		{
			Name: "table",
			Args: []string{"", "info", sample},
			Exit: 0,
		},
		{
			Name: "info is the default command",
			Args: []string{"", minimal},
			Exit: 0,
		},
		{
			Name:         "json",
			Args:         []string{"", "info", "--format", "json", sample},
			Exit:         0,
			ReplaceRules: []testutility.JSONReplaceRule{testutility.OnlyBaseNameRule},
		},
		{
			Name: "yaml",
			Args: []string{"", "info", "--format=yaml", sample},
			Exit: 0,
		},
		{
			Name: "without memory mapping",
			Args: []string{"", "info", "--no-mmap", minimal},
			Exit: 0,
		},
		{
			Name: "debug logging",
			Args: []string{"", "info", "--verbosity", "debug", minimal},
			Exit: 0,
		},
		{
			Name: "unsupported format",
			Args: []string{"", "info", "--format", "xml", sample},
			Exit: 127,
		},
		{
			Name: "invalid verbosity",
			Args: []string{"", "info", "--verbosity", "loud", sample},
			Exit: 127,
		},
		{
			Name: "missing rom",
			Args: []string{"", "info", filepath.Join(dir, "missing.nds")},
			Exit: 127,
		},
		{
			Name: "truncated rom",
			Args: []string{"", "info", truncated},
			Exit: 2,
		},
		{
			Name: "no arguments",
			Args: []string{"", "info"},
			Exit: 127,
		},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			tc.Replacements = map[string]string{dir: "<tempdir>"}
			testcmd.RunAndMatchSnapshots(t, tc)
		})
	}
}

func TestCommand_ConfigCacheSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rom := testrom.Minimal().Build().WriteFile(t, dir, "minimal.nds")

	if err := os.WriteFile(filepath.Join(dir, "ndsrom-test.toml"), []byte("CacheSize = 0\nVerbosity = \"debug\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	testcmd.RunAndMatchSnapshots(t, testcmd.Case{
		Name:         "config next to the rom",
		Args:         []string{"", "info", rom},
		Exit:         0,
		Replacements: map[string]string{dir: "<tempdir>"},
	})
}

func TestCommand_InvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rom := testrom.Minimal().Build().WriteFile(t, dir, "minimal.nds")

	if err := os.WriteFile(filepath.Join(dir, "ndsrom-test.toml"), []byte("Colour = \"blue\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	testcmd.RunAndMatchSnapshots(t, testcmd.Case{
		Name:         "unknown key",
		Args:         []string{"", "info", rom},
		Exit:         130,
		Replacements: map[string]string{dir: "<tempdir>"},
	})
}
