package nds_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ndstoolkit/ndsrom/internal/testrom"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
)

func TestParseOverlayTable(t *testing.T) {
	t.Parallel()

	rom, _ := open(t, testrom.Sample())

	want9 := []nds.OverlayEntry{
		{ID: 0, RAMAddress: 0x02100000, RAMSize: 5, FileID: 0},
		{ID: 1, RAMAddress: 0x02100000, RAMSize: 5, FileID: 1},
	}
	want7 := []nds.OverlayEntry{
		{ID: 0, RAMAddress: 0x03800000, RAMSize: 5, FileID: 2},
	}

	if diff := cmp.Diff(want9, rom.Overlays(nds.ARM9)); diff != "" {
		t.Errorf("ARM9 overlays mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want7, rom.Overlays(nds.ARM7)); diff != "" {
		t.Errorf("ARM7 overlays mismatch (-want +got):\n%s", diff)
	}

	names := make([]string, 0, len(want9))
	for _, ov := range rom.Overlays(nds.ARM9) {
		names = append(names, ov.FileName())
	}
	if diff := cmp.Diff([]string{"overlay_0000.bin", "overlay_0001.bin"}, names); diff != "" {
		t.Errorf("FileName() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOverlayTable_Empty(t *testing.T) {
	t.Parallel()

	rom, _ := open(t, testrom.Minimal())

	if got := len(rom.Overlays(nds.ARM9)) + len(rom.Overlays(nds.ARM7)); got != 0 {
		t.Errorf("got %d overlays, want none", got)
	}
}

func TestParseOverlayTable_PartialRecord(t *testing.T) {
	t.Parallel()

	img := testrom.Sample().Build()

	for _, size := range []uint32{1, 31, 33, 63} {
		ovs, err := nds.ParseOverlayTable(nds.NewBytesSource(img.Bytes), uint32(img.ARM9Overlays.Offset), size)
		if !errors.Is(err, nds.ErrMalformed) {
			t.Errorf("ParseOverlayTable() of 0x%X bytes error = %v, want %v", size, err, nds.ErrMalformed)
		}
		if ovs != nil {
			t.Errorf("ParseOverlayTable() returned records for a partial table")
		}
	}
}

func TestOverlayFileName(t *testing.T) {
	t.Parallel()

	tests := map[uint32]string{
		0:     "overlay_0000.bin",
		42:    "overlay_0042.bin",
		9999:  "overlay_9999.bin",
		12345: "overlay_12345.bin",
	}
	for id, want := range tests {
		if got := nds.OverlayFileName(id); got != want {
			t.Errorf("OverlayFileName(%d) = %q, want %q", id, got, want)
		}
	}
}
