package nds_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ndstoolkit/ndsrom/internal/testrom"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
)

func TestReadHeader(t *testing.T) {
	t.Parallel()

	img := testrom.Sample().Build()

	h, err := nds.ReadHeader(bytes.NewReader(img.Bytes), int64(len(img.Bytes)))
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}

	want := &nds.Header{
		GameTitle: "SAMPLE GAME",
		GameCode:  "ASME",
		MakerCode: "01",
		ARM9: nds.Segment{
			ROMOffset:    uint32(img.ARM9.Offset),
			EntryAddress: 0x02000000,
			RAMAddress:   0x02000000,
			Size:         uint32(img.ARM9.Size),
		},
		ARM7: nds.Segment{
			ROMOffset:    uint32(img.ARM7.Offset),
			EntryAddress: 0x02380000,
			RAMAddress:   0x02380000,
			Size:         uint32(img.ARM7.Size),
		},
		FNT:             nds.Table{Offset: uint32(img.FNT.Offset), Size: uint32(img.FNT.Size)},
		FAT:             nds.Table{Offset: uint32(img.FAT.Offset), Size: uint32(img.FAT.Size)},
		ARM9Overlays:    nds.Table{Offset: uint32(img.ARM9Overlays.Offset), Size: 64},
		ARM7Overlays:    nds.Table{Offset: uint32(img.ARM7Overlays.Offset), Size: 32},
		IconTitleOffset: uint32(img.Icon.Offset),
		LogoChecksum:    0xCF56,
	}

	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("ReadHeader() mismatch (-want +got):\n%s", diff)
	}
	if !h.HasIconTitle() {
		t.Errorf("HasIconTitle() = false, want true")
	}
	if got := h.CapacityBytes(); got != 128*1024 {
		t.Errorf("CapacityBytes() = %d, want %d", got, 128*1024)
	}
}

func TestReadHeader_Truncated(t *testing.T) {
	t.Parallel()

	img := testrom.Minimal().Build()

	for _, size := range []int{0, 0x10, nds.HeaderReadSize - 1} {
		_, err := nds.ReadHeader(bytes.NewReader(img.Bytes[:size]), int64(size))
		if !errors.Is(err, nds.ErrTruncated) {
			t.Errorf("ReadHeader() of %d bytes error = %v, want %v", size, err, nds.ErrTruncated)
		}
	}
}

func TestHeader_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		patch func(b []byte, img *testrom.Image)
	}{
		{
			name:  "arm9 past the end",
			patch: func(b []byte, _ *testrom.Image) { le32(b, 0x2C, uint32(len(b))) },
		},
		{
			name:  "fnt past the end",
			patch: func(b []byte, _ *testrom.Image) { le32(b, 0x40, uint32(len(b)-1)) },
		},
		{
			name:  "fat size overflows",
			patch: func(b []byte, _ *testrom.Image) { le32(b, 0x4C, 0xFFFFFFFF) },
		},
		{
			name:  "icon past the end",
			patch: func(b []byte, _ *testrom.Image) { le32(b, 0x68, uint32(len(b)-0x10)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img := testrom.Minimal().Build()
			tt.patch(img.Bytes, img)

			_, err := nds.Open(nds.NewBytesSource(img.Bytes))
			if !errors.Is(err, nds.ErrMalformed) {
				t.Errorf("Open() error = %v, want %v", err, nds.ErrMalformed)
			}
			if !nds.IsStructural(err) {
				t.Errorf("IsStructural(%v) = false", err)
			}
		})
	}
}

func TestOpen_ShorterThanHeaderFile(t *testing.T) {
	t.Parallel()

	for _, size := range []int{nds.HeaderReadSize, nds.HeaderFileSize - 1} {
		img := testrom.Minimal().Build()

		// ReadHeader only needs the decoded fields
		if _, err := nds.ReadHeader(bytes.NewReader(img.Bytes[:size]), int64(size)); err != nil {
			t.Errorf("ReadHeader(%#x bytes) error = %v", size, err)
		}

		_, err := nds.Open(nds.NewBytesSource(img.Bytes[:size]))
		if !errors.Is(err, nds.ErrTruncated) {
			t.Errorf("Open(%#x bytes) error = %v, want %v", size, err, nds.ErrTruncated)
		}
	}
}
