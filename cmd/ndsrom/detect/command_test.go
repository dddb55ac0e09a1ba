package detect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/testcmd"
	"github.com/ndstoolkit/ndsrom/internal/testrom"
)

func TestCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sample := testrom.Sample().Build().WriteFile(t, dir, "sample.nds")

	layout := filepath.Join(dir, "layout")
	testcmd.Run(t, testcmd.Case{
		Args: []string{"", "extract", "--verbosity", "error", sample, layout},
		Exit: 0,
	})

	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("not a rom"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []testcmd.Case{
		{
			Name: "rom",
			Args: []string{"", "detect", sample},
			Exit: 0,
		},
		{
			Name: "extracted layout",
			Args: []string{"", "detect", layout},
			Exit: 0,
		},
		{
			Name: "several paths",
			Args: []string{"", "detect", sample, layout},
			Exit: 0,
		},
		{
			Name: "not a rom",
			Args: []string{"", "detect", sample, text, dir},
			Exit: 127,
		},
		{
			Name: "missing path",
			Args: []string{"", "detect", filepath.Join(dir, "missing")},
			Exit: 127,
		},
		{
			Name: "no arguments",
			Args: []string{"", "detect"},
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
