package cachedregexp_test

import (
	"testing"

	"github.com/ndstoolkit/ndsrom/internal/cachedregexp"
)

func TestMustCompile_Cached(t *testing.T) {
	t.Parallel()

	if cachedregexp.MustCompile(`^a+$`) != cachedregexp.MustCompile(`^a+$`) {
		t.Errorf("MustCompile() compiled the same expression twice")
	}
}

func TestSubmatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		exp, s    string
		want      string
		wantMatch bool
	}{
		{`^overlay_(\d{4})\.bin$`, "overlay_0012.bin", "0012", true},
		{`^overlay_(\d{4})\.bin$`, "overlay_12.bin", "", false},
		{`^overlay_\d{4}\.bin$`, "overlay_0012.bin", "", true},
	}
	for _, tt := range tests {
		got, ok := cachedregexp.Submatch(tt.exp, tt.s)
		if got != tt.want || ok != tt.wantMatch {
			t.Errorf("Submatch(%q, %q) = %q, %v, want %q, %v", tt.exp, tt.s, got, ok, tt.want, tt.wantMatch)
		}
	}
}
