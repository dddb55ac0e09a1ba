package ls_test

import (
	"testing"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/testcmd"
	"github.com/ndstoolkit/ndsrom/internal/testrom"
)

func TestCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sample := testrom.Sample().Build().WriteFile(t, dir, "sample.nds")
	minimal := testrom.Minimal().Build().WriteFile(t, dir, "minimal.nds")

	tests := []testcmd.Case{
		{
			Name: "root",
			Args: []string{"", "ls", sample},
			Exit: 0,
		},
		{
			Name: "root without an icon",
			Args: []string{"", "ls", minimal, "/"},
			Exit: 0,
		},
		{
			Name: "data directory",
			Args: []string{"", "ls", sample, "/data"},
			Exit: 0,
		},
		{
			Name: "nested directory with other case and separators",
			Args: []string{"", "ls", sample, `\DATA\Sound`},
			Exit: 0,
		},
		{
			Name: "overlays",
			Args: []string{"", "ls", sample, "/overlay7"},
			Exit: 0,
		},
		{
			Name: "single file",
			Args: []string{"", "ls", sample, "/data/sound/bgm.sdat"},
			Exit: 0,
		},
		{
			Name: "recursive",
			Args: []string{"", "ls", "--recursive", sample, "/data"},
			Exit: 0,
		},
		{
			Name: "recursive from the root",
			Args: []string{"", "ls", "-r", minimal},
			Exit: 0,
		},
		{
			Name: "missing directory",
			Args: []string{"", "ls", sample, "/data/music"},
			Exit: 3,
		},
		{
			Name: "unknown root",
			Args: []string{"", "ls", sample, "/banner.bin"},
			Exit: 3,
		},
		{
			Name: "too many arguments",
			Args: []string{"", "ls", sample, "/data", "/overlay"},
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
