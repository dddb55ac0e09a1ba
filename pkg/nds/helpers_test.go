package nds_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ndstoolkit/ndsrom/internal/testrom"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
)

var sortStrings = cmpopts.SortSlices(func(a, b string) bool { return strings.Compare(a, b) < 0 })

func open(t *testing.T, b testrom.Builder) (*nds.ROM, *testrom.Image) {
	t.Helper()

	img := b.Build()
	rom, err := nds.Open(nds.NewBytesSource(img.Bytes))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = rom.Close() })

	return rom, img
}

func le32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}

func le16(b []byte, off int, v uint16) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
}
