package nds

import (
	"encoding/binary"
	"fmt"
)

// OverlayEntrySize is the length of one overlay table record.
const OverlayEntrySize = 32

// OverlayEntry describes a relocatable code module loaded on demand by the
// ARM9 or ARM7 processor.
type OverlayEntry struct {
	ID              uint32 `json:"id"`
	RAMAddress      uint32 `json:"ramAddress"`
	RAMSize         uint32 `json:"ramSize"`
	BSSSize         uint32 `json:"bssSize"`
	StaticInitStart uint32 `json:"staticInitStart"`
	StaticInitEnd   uint32 `json:"staticInitEnd"`
	// FileID indexes the FAT entry holding the overlay's code
	FileID uint32 `json:"fileId"`
	// Flags holds the trailing reserved word (compression flags on retail
	// ROMs), kept so records can be reproduced byte for byte.
	Flags uint32 `json:"flags"`
}

// FileName returns the name the overlay is extracted as.
func (o OverlayEntry) FileName() string {
	return OverlayFileName(o.FileID)
}

// OverlayFileName formats a file id as overlay_NNNN.bin.
func OverlayFileName(fileID uint32) string {
	return fmt.Sprintf("overlay_%04d.bin", fileID)
}

// ParseOverlayTable decodes the overlay records at [offset, offset+size).
//
// A size that is not a multiple of OverlayEntrySize is rejected rather than
// silently dropping the trailing partial record.
func ParseOverlayTable(src Source, offset, size uint32) ([]OverlayEntry, error) {
	if size%OverlayEntrySize != 0 {
		return nil, formatErr(ErrMalformed, "overlay table", int64(offset),
			"size 0x%X is not a multiple of %d", size, OverlayEntrySize)
	}

	b, err := readAt(src, "overlay table", int64(offset), int(size))
	if err != nil {
		return nil, err
	}

	le := binary.LittleEndian
	entries := make([]OverlayEntry, 0, size/OverlayEntrySize)
	for off := 0; off < len(b); off += OverlayEntrySize {
		rec := b[off : off+OverlayEntrySize]
		entries = append(entries, OverlayEntry{
			ID:              le.Uint32(rec[0x00:]),
			RAMAddress:      le.Uint32(rec[0x04:]),
			RAMSize:         le.Uint32(rec[0x08:]),
			BSSSize:         le.Uint32(rec[0x0C:]),
			StaticInitStart: le.Uint32(rec[0x10:]),
			StaticInitEnd:   le.Uint32(rec[0x14:]),
			FileID:          le.Uint32(rec[0x18:]),
			Flags:           le.Uint32(rec[0x1C:]),
		})
	}

	return entries, nil
}
