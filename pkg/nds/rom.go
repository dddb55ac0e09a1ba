// Package nds reads Nintendo DS ROM images.
//
// A ROM is opened once with Open or OpenFile, which decodes the header, the
// file allocation table, the filename table and both overlay tables. The
// decoded tables are then shared, read-only, by the Extractor, the Resolver
// and the fs.FS view returned by ROM.FS.
package nds

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
	"golang.org/x/exp/mmap"
	"golang.org/x/sync/errgroup"
)

const (
	arm9FooterMagic = 0xDEC00621
	arm9FooterSize  = 12
)

// Processor selects one of the two CPUs of the console.
type Processor int

const (
	ARM9 Processor = iota
	ARM7
)

func (p Processor) String() string {
	if p == ARM7 {
		return "arm7"
	}

	return "arm9"
}

// OverlayDir is the directory overlays of p are extracted into.
func (p Processor) OverlayDir() string {
	if p == ARM7 {
		return "overlay7"
	}

	return "overlay"
}

// OverlayTableFile is the file the raw overlay table of p is extracted as.
func (p Processor) OverlayTableFile() string {
	if p == ARM7 {
		return "y7.bin"
	}

	return "y9.bin"
}

// Range is the [Offset, End) byte range of a file inside the ROM.
type Range struct {
	Offset int64
	End    int64
}

// Size returns the length of the range in bytes.
func (r Range) Size() int64 {
	return r.End - r.Offset
}

func fatRange(e FATEntry) Range {
	return Range{Offset: int64(e.Offset), End: int64(e.End)}
}

// ROM is an opened ROM image with its tables decoded.
type ROM struct {
	src    Source
	closer io.Closer
	closed atomic.Bool

	header   *Header
	fat      FAT
	tree     *Tree
	overlays [2][]OverlayEntry

	// vfs backs the path based accessors of ROM
	vfs *Resolver
}

// Open decodes the tables of the ROM image in src. opts configure the
// resolver behind the path based accessors.
func Open(src Source, opts ...ResolverOption) (*ROM, error) {
	h, err := ReadHeader(src, src.Size())
	if err != nil {
		return nil, err
	}
	if err := h.Validate(src.Size()); err != nil {
		return nil, err
	}

	rom := &ROM{src: src, header: h}

	// the tables only depend on the header, not on each other
	g := new(errgroup.Group)
	if !src.SupportsConcurrentAccess() {
		g.SetLimit(1)
	}
	g.Go(func() (err error) {
		rom.fat, err = ParseFAT(src, h.FAT.Offset, h.FAT.Size)
		return err
	})
	g.Go(func() (err error) {
		rom.tree, err = ParseFNT(src, h.FNT.Offset, h.FNT.Size)
		return err
	})
	g.Go(func() (err error) {
		rom.overlays[ARM9], err = ParseOverlayTable(src, h.ARM9Overlays.Offset, h.ARM9Overlays.Size)
		return err
	})
	g.Go(func() (err error) {
		rom.overlays[ARM7], err = ParseOverlayTable(src, h.ARM7Overlays.Offset, h.ARM7Overlays.Size)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if rom.vfs, err = NewResolver(rom, opts...); err != nil {
		return nil, err
	}

	cmdlogger.Debugf("Opened %q (%s): %d files, %d/%d overlays",
		h.GameTitle, h.GameCode, rom.fat.Used(), len(rom.overlays[ARM9]), len(rom.overlays[ARM7]))

	return rom, nil
}

// OpenFile memory-maps the ROM image at path and opens it. The mapping is
// released by Close.
func OpenFile(path string, opts ...ResolverOption) (*ROM, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}

	src := &mmapSource{r: m}
	rom, err := Open(src, opts...)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rom.closer = src

	return rom, nil
}

// OpenFileNoMmap opens the ROM image at path using positional reads on the
// file instead of a memory mapping.
func OpenFileNoMmap(path string, opts ...ResolverOption) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	src := &fileSource{f: f, size: st.Size()}
	rom, err := Open(src, opts...)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rom.closer = src

	return rom, nil
}

// Close releases the underlying source. The decoded tables are dropped with
// it, any further read fails with ErrClosed.
func (r *ROM) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	if r.closer != nil {
		return r.closer.Close()
	}

	return nil
}

func (r *ROM) Header() *Header { return r.header }

func (r *ROM) FAT() FAT { return r.fat }

func (r *ROM) Tree() *Tree { return r.tree }

// Overlays returns the decoded overlay table of p.
func (r *ROM) Overlays(p Processor) []OverlayEntry {
	return r.overlays[p]
}

// Source returns the byte source the ROM was opened from.
func (r *ROM) Source() Source { return r.src }

// ReadRange returns a copy of the bytes in rg.
func (r *ROM) ReadRange(rg Range) ([]byte, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}

	return readAt(r.src, "file", rg.Offset, int(rg.Size()))
}

// SectionReader returns a reader over rg that does not copy the data.
func (r *ROM) SectionReader(rg Range) (*io.SectionReader, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	if rg.Offset < 0 || rg.End < rg.Offset || rg.End > r.src.Size() {
		return nil, formatErr(ErrTruncated, "file", rg.Offset, "range 0x%X-0x%X outside image of 0x%X bytes", rg.Offset, rg.End, r.src.Size())
	}

	return io.NewSectionReader(r.src, rg.Offset, rg.Size()), nil
}

// HeaderRange is the range of header.bin.
func (r *ROM) HeaderRange() Range {
	return Range{Offset: 0, End: HeaderFileSize}
}

// ARM9Range is the range of arm9.bin. When the four bytes following the
// segment hold the footer magic 21 06 C0 DE, the 12 byte footer they start
// is part of the file.
func (r *ROM) ARM9Range() (Range, error) {
	seg := r.header.ARM9
	rg := Range{Offset: int64(seg.ROMOffset), End: int64(seg.ROMOffset) + int64(seg.Size)}

	magic, err := readUint32(r.src, "arm9 footer", rg.End)
	if err != nil || magic != arm9FooterMagic {
		// no room for a footer means there is none
		return rg, nil
	}

	rg.End += arm9FooterSize
	if rg.End > r.src.Size() {
		return Range{}, formatErr(ErrTruncated, "arm9 footer", rg.End-arm9FooterSize, "footer runs past the image")
	}

	return rg, nil
}

// ARM7Range is the range of arm7.bin.
func (r *ROM) ARM7Range() Range {
	seg := r.header.ARM7
	return Range{Offset: int64(seg.ROMOffset), End: int64(seg.ROMOffset) + int64(seg.Size)}
}

// OverlayTableRange is the raw overlay table of p, y9.bin or y7.bin.
func (r *ROM) OverlayTableRange(p Processor) Range {
	t := r.header.ARM9Overlays
	if p == ARM7 {
		t = r.header.ARM7Overlays
	}

	return Range{Offset: int64(t.Offset), End: int64(t.End())}
}

// IconRange is the range of the icon/title block; ok is false when the ROM
// has none.
func (r *ROM) IconRange() (rg Range, ok bool) {
	if !r.header.HasIconTitle() {
		return Range{}, false
	}
	off := int64(r.header.IconTitleOffset)

	return Range{Offset: off, End: off + IconTitleSize}, true
}

// OverlayRange returns the FAT range of the overlay at position index of the
// table of p.
func (r *ROM) OverlayRange(p Processor, index int) (Range, error) {
	table := r.overlays[p]
	if index < 0 || index >= len(table) {
		return Range{}, formatErr(ErrNotFound, p.String()+" overlay table", int64(index), "overlay %d out of range [0, %d)", index, len(table))
	}

	e, err := r.fat.Lookup(int(table[index].FileID))
	if err != nil {
		return Range{}, err
	}

	return fatRange(e), nil
}

// FileRange returns the FAT range of a file node of the tree.
func (r *ROM) FileRange(node int) (Range, error) {
	n := r.tree.Node(node)
	if n.IsDir() {
		return Range{}, formatErr(ErrNotFound, "fnt", int64(node), "%s is a directory", r.tree.Path(node))
	}

	e, err := r.fat.Lookup(n.FileIndex)
	if err != nil {
		return Range{}, err
	}

	return fatRange(e), nil
}
