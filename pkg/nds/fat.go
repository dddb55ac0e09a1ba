package nds

import (
	"encoding/binary"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const fatEntrySize = 8

// fatChunk is the number of entries decoded by one worker
const fatChunk = 512

// FATEntry is the [Offset, End) byte range of one file.
type FATEntry struct {
	Offset uint32 `json:"offset"`
	End    uint32 `json:"end"`
}

// Hole reports whether the slot is unused. The format marks unused file ids
// with an offset of zero.
func (e FATEntry) Hole() bool {
	return e.Offset == 0
}

// Size returns the length of the file in bytes.
func (e FATEntry) Size() uint32 {
	return e.End - e.Offset
}

// FAT is the file allocation table, indexed by file id. Holes keep their slot.
type FAT []FATEntry

// Lookup returns the entry for file id, failing with ErrNotFound if the id is
// out of range or names a hole.
func (f FAT) Lookup(id int) (FATEntry, error) {
	if id < 0 || id >= len(f) {
		return FATEntry{}, formatErr(ErrNotFound, "fat", int64(id), "file id %d out of range [0, %d)", id, len(f))
	}
	if f[id].Hole() {
		return FATEntry{}, formatErr(ErrNotFound, "fat", int64(id), "file id %d is unused", id)
	}

	return f[id], nil
}

// Used returns the number of non-hole entries.
func (f FAT) Used() int {
	n := 0
	for _, e := range f {
		if !e.Hole() {
			n++
		}
	}

	return n
}

// ParseFAT decodes the file allocation table at [offset, offset+size).
//
// Entries are independent of each other, so when src supports concurrent
// access the table is decoded in chunks on a bounded pool of goroutines.
func ParseFAT(src Source, offset, size uint32) (FAT, error) {
	if size%fatEntrySize != 0 {
		return nil, formatErr(ErrMalformed, "fat", int64(offset), "size 0x%X is not a multiple of %d", size, fatEntrySize)
	}

	count := int(size / fatEntrySize)
	fat := make(FAT, count)

	decode := func(first, last int) error {
		base := int64(offset) + int64(first)*fatEntrySize
		b, err := readAt(src, "fat", base, (last-first)*fatEntrySize)
		if err != nil {
			return err
		}

		for i := first; i < last; i++ {
			rec := b[(i-first)*fatEntrySize:]
			e := FATEntry{
				Offset: binary.LittleEndian.Uint32(rec),
				End:    binary.LittleEndian.Uint32(rec[4:]),
			}
			if !e.Hole() {
				if e.End < e.Offset {
					return formatErr(ErrMalformed, "fat", base+int64(i-first)*fatEntrySize,
						"entry %d ends at 0x%X before it starts at 0x%X", i, e.End, e.Offset)
				}
				if int64(e.End) > src.Size() {
					return formatErr(ErrMalformed, "fat", base+int64(i-first)*fatEntrySize,
						"entry %d ends at 0x%X past image size 0x%X", i, e.End, src.Size())
				}
			}
			fat[i] = e
		}

		return nil
	}

	g := new(errgroup.Group)
	if src.SupportsConcurrentAccess() {
		g.SetLimit(runtime.NumCPU())
	} else {
		g.SetLimit(1)
	}

	for first := 0; first < count; first += fatChunk {
		last := min(first+fatChunk, count)
		g.Go(func() error {
			return decode(first, last)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return fat, nil
}
