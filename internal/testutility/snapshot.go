// Package testutility holds the snapshot helpers shared by the package and
// command tests.
package testutility

import (
	"runtime"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

type Snapshot struct {
	Replacements        map[string]string
	WindowsReplacements map[string]string
}

// NewSnapshot creates a snapshot that can be passed around within tests
func NewSnapshot() Snapshot {
	return Snapshot{
		Replacements:        map[string]string{},
		WindowsReplacements: map[string]string{},
	}
}

// WithReplacements replaces every key with its value before comparing, which
// is how temporary directories are kept out of snapshots.
func (s Snapshot) WithReplacements(replacements map[string]string) Snapshot {
	s.Replacements = replacements

	return s
}

// WithWindowsReplacements adds replacements that only apply when running on
// Windows
func (s Snapshot) WithWindowsReplacements(replacements map[string]string) Snapshot {
	s.WindowsReplacements = replacements

	return s
}

func (s Snapshot) apply(content string) string {
	for match, replacement := range s.Replacements {
		if match != "" {
			content = strings.ReplaceAll(content, match, replacement)
		}
	}

	if //goland:noinspection GoBoolExpressions
	runtime.GOOS == "windows" {
		for match, replacement := range s.WindowsReplacements {
			content = strings.ReplaceAll(content, match, replacement)
		}
		content = strings.ReplaceAll(content, "\\", "/")
	}

	return content
}

// MatchText asserts the existing snapshot matches what was gotten in the test
func (s Snapshot) MatchText(t *testing.T, got string) {
	t.Helper()

	snaps.MatchSnapshot(t, s.apply(got))
}

// MatchJSON normalises the JSON document got with rules, then asserts it
// matches the existing snapshot
func (s Snapshot) MatchJSON(t *testing.T, got string, rules ...JSONReplaceRule) {
	t.Helper()

	snaps.MatchSnapshot(t, s.apply(NormalizeJSON(t, got, rules...)))
}

// CleanSnapshots ensures that snapshots are relevant and sorted for
// consistency. It is called from TestMain after m.Run().
func CleanSnapshots(m *testing.M) {
	snaps.Clean(m, snaps.CleanOpts{Sort: true})
}
