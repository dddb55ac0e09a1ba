package nds

import (
	"encoding/binary"
	"io"
	"strings"
)

const (
	// HeaderReadSize is the minimum number of bytes ReadHeader needs.
	HeaderReadSize = 0x1C0
	// HeaderFileSize is the length of the header.bin artifact.
	HeaderFileSize = 0x200
	// IconTitleSize is the fixed length of the icon/title (banner) block.
	IconTitleSize = 0x840

	// logoChecksum is the CRC-16 of the Nintendo logo, identical on every
	// retail cartridge.
	logoChecksum = 0xCF56
)

// Segment is a block of executable code loaded into RAM at boot.
type Segment struct {
	ROMOffset    uint32 `json:"romOffset" yaml:"romOffset"`
	EntryAddress uint32 `json:"entryAddress" yaml:"entryAddress"`
	RAMAddress   uint32 `json:"ramAddress" yaml:"ramAddress"`
	Size         uint32 `json:"size" yaml:"size"`
}

// Table is an (offset, size) pair locating a region of the ROM.
type Table struct {
	Offset uint32 `json:"offset" yaml:"offset"`
	Size   uint32 `json:"size" yaml:"size"`
}

// End returns the exclusive end of the region, widened to avoid overflow.
func (t Table) End() uint64 {
	return uint64(t.Offset) + uint64(t.Size)
}

// Header holds the fixed-offset fields of the cartridge header.
//
// See https://problemkaputt.de/gbatek.htm#dscartridgeheader for the full
// layout, only the fields needed to locate the ROM contents are decoded.
type Header struct {
	GameTitle            string  `json:"gameTitle" yaml:"gameTitle"`
	GameCode             string  `json:"gameCode" yaml:"gameCode"`
	MakerCode            string  `json:"makerCode" yaml:"makerCode"`
	UnitCode             byte    `json:"unitCode" yaml:"unitCode"`
	EncryptionSeedSelect byte    `json:"encryptionSeedSelect" yaml:"encryptionSeedSelect"`
	DeviceCapacity       byte    `json:"deviceCapacity" yaml:"deviceCapacity"`
	ROMVersion           byte    `json:"romVersion" yaml:"romVersion"`
	ARM9                 Segment `json:"arm9" yaml:"arm9"`
	ARM7                 Segment `json:"arm7" yaml:"arm7"`
	FNT                  Table   `json:"fnt" yaml:"fnt"`
	FAT                  Table   `json:"fat" yaml:"fat"`
	ARM9Overlays         Table   `json:"arm9Overlays" yaml:"arm9Overlays"`
	ARM7Overlays         Table   `json:"arm7Overlays" yaml:"arm7Overlays"`
	IconTitleOffset      uint32  `json:"iconTitleOffset" yaml:"iconTitleOffset"`
	LogoChecksum         uint16  `json:"logoChecksum" yaml:"logoChecksum"`
	HeaderChecksum       uint16  `json:"headerChecksum" yaml:"headerChecksum"`
}

// ReadHeader decodes the header from the first HeaderReadSize bytes of r.
func ReadHeader(r io.ReaderAt, size int64) (*Header, error) {
	if size < HeaderReadSize {
		return nil, formatErr(ErrTruncated, "header", 0, "image is %d bytes, header needs %d", size, HeaderReadSize)
	}

	b := make([]byte, HeaderReadSize)
	if n, err := r.ReadAt(b, 0); n < len(b) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return nil, formatErr(ErrTruncated, "header", int64(n), "%v", err)
	}

	le := binary.LittleEndian
	segment := func(off int) Segment {
		return Segment{
			ROMOffset:    le.Uint32(b[off:]),
			EntryAddress: le.Uint32(b[off+4:]),
			RAMAddress:   le.Uint32(b[off+8:]),
			Size:         le.Uint32(b[off+12:]),
		}
	}
	table := func(off int) Table {
		return Table{Offset: le.Uint32(b[off:]), Size: le.Uint32(b[off+4:])}
	}

	return &Header{
		GameTitle:            asciiField(b[0x00:0x0C]),
		GameCode:             asciiField(b[0x0C:0x10]),
		MakerCode:            asciiField(b[0x10:0x12]),
		UnitCode:             b[0x12],
		EncryptionSeedSelect: b[0x13],
		DeviceCapacity:       b[0x14],
		ROMVersion:           b[0x1E],
		ARM9:                 segment(0x20),
		ARM7:                 segment(0x30),
		FNT:                  table(0x40),
		FAT:                  table(0x48),
		ARM9Overlays:         table(0x50),
		ARM7Overlays:         table(0x58),
		IconTitleOffset:      le.Uint32(b[0x68:]),
		LogoChecksum:         le.Uint16(b[0x15C:]),
		HeaderChecksum:       le.Uint16(b[0x15E:]),
	}, nil
}

func asciiField(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

// CapacityBytes returns the cartridge capacity, 128KiB << DeviceCapacity.
func (h *Header) CapacityBytes() uint64 {
	return uint64(128*1024) << h.DeviceCapacity
}

// HasIconTitle reports whether the ROM carries an icon/title block, an
// offset of 0 meaning absent.
func (h *Header) HasIconTitle() bool {
	return h.IconTitleOffset > 0
}

// Validate checks that the image holds the whole header.bin and that every
// region referenced by the header lies within it.
func (h *Header) Validate(size int64) error {
	if size < HeaderFileSize {
		return formatErr(ErrTruncated, "header", 0, "image is %d bytes, header.bin needs %d", size, HeaderFileSize)
	}

	regions := []struct {
		name string
		t    Table
	}{
		{"arm9", Table{h.ARM9.ROMOffset, h.ARM9.Size}},
		{"arm7", Table{h.ARM7.ROMOffset, h.ARM7.Size}},
		{"fnt", h.FNT},
		{"fat", h.FAT},
		{"arm9 overlay table", h.ARM9Overlays},
		{"arm7 overlay table", h.ARM7Overlays},
	}
	if h.HasIconTitle() {
		regions = append(regions, struct {
			name string
			t    Table
		}{"icon/title", Table{h.IconTitleOffset, IconTitleSize}})
	}

	for _, r := range regions {
		if r.t.End() > uint64(size) {
			return formatErr(ErrMalformed, "header", int64(r.t.Offset),
				"%s region 0x%X+0x%X exceeds image size 0x%X", r.name, r.t.Offset, r.t.Size, size)
		}
	}

	return nil
}
