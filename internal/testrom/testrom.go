// Package testrom builds small, valid NDS ROM images in memory for tests.
package testrom

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	headerSize    = 0x200
	iconSize      = 0x840
	footerMagic   = 0xDEC00621
	overlayRecord = 32
)

var le = binary.LittleEndian

// File is a file of the data tree. Path is slash separated and relative to
// the tree root, like "sound/bgm.sdat".
type File struct {
	Path string
	Data []byte
}

// Overlay is one overlay table record with its code.
type Overlay struct {
	ID         uint32
	RAMAddress uint32
	Data       []byte
}

// Builder describes the image to build. The zero value is a valid ROM with
// empty binaries, no files and no overlays.
type Builder struct {
	Title     string
	GameCode  string
	MakerCode string

	ARM9 []byte
	// ARM9Footer appends the 12 byte footer after the ARM9 binary
	ARM9Footer bool
	ARM7       []byte
	// Icon is the icon/title block, nil for none. It is padded to 0x840.
	Icon []byte

	Files []File
	// Dirs lists directories to create even when they hold no files
	Dirs []string

	ARM9Overlays []Overlay
	ARM7Overlays []Overlay
}

// Region locates a table or blob inside a built image.
type Region struct {
	Offset int
	Size   int
}

func (r Region) End() int { return r.Offset + r.Size }

// Image is a built ROM along with where everything was placed.
type Image struct {
	Bytes []byte

	ARM9, ARM9Footer, ARM7 Region
	FNT, FAT               Region
	ARM9Overlays           Region
	ARM7Overlays           Region
	Icon                   Region

	// FileIDs maps every File.Path to its FAT index
	FileIDs map[string]int
	// Subtables holds the FNT-relative offset of each directory's subtable,
	// root first, in directory id order
	Subtables []int
}

// WriteFile stores the image in dir and returns its path.
func (img *Image) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, img.Bytes, 0o600); err != nil {
		t.Fatalf("could not write test rom: %v", err)
	}

	return p
}

type child struct {
	name string
	dir  *dir
	file int // index into Builder.Files
}

type dir struct {
	children []child
	id       int
}

func (d *dir) subdir(name string) *dir {
	for _, c := range d.children {
		if c.dir != nil && c.name == name {
			return c.dir
		}
	}

	sub := &dir{}
	d.children = append(d.children, child{name: name, dir: sub})

	return sub
}

func (b *Builder) tree() (*dir, []*dir) {
	root := &dir{}
	for _, p := range b.Dirs {
		d := root
		for _, seg := range strings.Split(p, "/") {
			d = d.subdir(seg)
		}
	}
	for i, f := range b.Files {
		segs := strings.Split(f.Path, "/")
		d := root
		for _, seg := range segs[:len(segs)-1] {
			d = d.subdir(seg)
		}
		d.children = append(d.children, child{name: segs[len(segs)-1], file: i})
	}

	// directory ids follow breadth-first order, like ndstool
	dirs := []*dir{root}
	for i := 0; i < len(dirs); i++ {
		dirs[i].id = i
		for _, c := range dirs[i].children {
			if c.dir != nil {
				dirs = append(dirs, c.dir)
			}
		}
	}

	return root, dirs
}

func align(n int) int {
	return (n + 3) &^ 3
}

// Build lays out the image: header, ARM9 (and footer), ARM7, overlay
// tables, FNT, FAT, icon and finally the file contents. FAT ids go to the
// ARM9 overlays first, then the ARM7 overlays, then the files.
func (b Builder) Build() *Image {
	img := &Image{FileIDs: map[string]int{}}
	_, dirs := b.tree()

	// file ids
	next := len(b.ARM9Overlays) + len(b.ARM7Overlays)
	firstID := make([]int, len(dirs))
	for _, d := range dirs {
		firstID[d.id] = next
		for _, c := range d.children {
			if c.dir == nil {
				img.FileIDs[b.Files[c.file].Path] = next
				next++
			}
		}
	}
	fileCount := next

	fnt := b.fnt(dirs, firstID, img)

	pos := headerSize
	place := func(size int) Region {
		r := Region{Offset: pos, Size: size}
		pos = align(pos + size)

		return r
	}

	img.ARM9 = Region{Offset: pos, Size: len(b.ARM9)}
	pos += len(b.ARM9)
	if b.ARM9Footer {
		img.ARM9Footer = Region{Offset: pos, Size: 12}
		pos += 12
	}
	pos = align(pos)
	img.ARM7 = place(len(b.ARM7))
	img.ARM9Overlays = place(len(b.ARM9Overlays) * overlayRecord)
	img.ARM7Overlays = place(len(b.ARM7Overlays) * overlayRecord)
	img.FNT = place(len(fnt))
	img.FAT = place(fileCount * 8)
	if b.Icon != nil {
		img.Icon = place(iconSize)
	}

	blobs := make([][]byte, fileCount)
	for i, ov := range b.ARM9Overlays {
		blobs[i] = ov.Data
	}
	for i, ov := range b.ARM7Overlays {
		blobs[len(b.ARM9Overlays)+i] = ov.Data
	}
	for _, f := range b.Files {
		blobs[img.FileIDs[f.Path]] = f.Data
	}
	data := make([]Region, fileCount)
	for i, blob := range blobs {
		data[i] = place(len(blob))
	}

	out := make([]byte, pos)
	img.Bytes = out

	b.header(img, out)

	copy(out[img.ARM9.Offset:], b.ARM9)
	if b.ARM9Footer {
		le.PutUint32(out[img.ARM9Footer.Offset:], footerMagic)
		le.PutUint32(out[img.ARM9Footer.Offset+4:], 0x00000B00)
	}
	copy(out[img.ARM7.Offset:], b.ARM7)

	overlays := func(r Region, table []Overlay, firstFile int) {
		for i, ov := range table {
			rec := out[r.Offset+i*overlayRecord:]
			le.PutUint32(rec[0x00:], ov.ID)
			le.PutUint32(rec[0x04:], ov.RAMAddress)
			le.PutUint32(rec[0x08:], uint32(len(ov.Data)))
			le.PutUint32(rec[0x18:], uint32(firstFile+i))
		}
	}
	overlays(img.ARM9Overlays, b.ARM9Overlays, 0)
	overlays(img.ARM7Overlays, b.ARM7Overlays, len(b.ARM9Overlays))

	copy(out[img.FNT.Offset:], fnt)
	for i, r := range data {
		le.PutUint32(out[img.FAT.Offset+i*8:], uint32(r.Offset))
		le.PutUint32(out[img.FAT.Offset+i*8+4:], uint32(r.End()))
		copy(out[r.Offset:], blobs[i])
	}
	if b.Icon != nil {
		copy(out[img.Icon.Offset:img.Icon.End()], b.Icon)
	}

	return img
}

func (b *Builder) fnt(dirs []*dir, firstID []int, img *Image) []byte {
	main := make([]byte, len(dirs)*8)
	var subs []byte

	for _, d := range dirs {
		off := len(main) + len(subs)
		img.Subtables = append(img.Subtables, off)

		entry := main[d.id*8:]
		le.PutUint32(entry, uint32(off))
		le.PutUint16(entry[4:], uint16(firstID[d.id]))
		if d.id == 0 {
			le.PutUint16(entry[6:], uint16(len(dirs)))
		}

		for _, c := range d.children {
			if c.dir == nil {
				subs = append(subs, byte(len(c.name)))
				subs = append(subs, c.name...)

				continue
			}
			subs = append(subs, 0x80|byte(len(c.name)))
			subs = append(subs, c.name...)
			subs = le.AppendUint16(subs, 0xF000|uint16(c.dir.id))
		}
		subs = append(subs, 0)
	}

	// parent ids of subdirectories
	for _, d := range dirs {
		for _, c := range d.children {
			if c.dir != nil {
				le.PutUint16(main[c.dir.id*8+6:], 0xF000|uint16(d.id))
			}
		}
	}

	return append(main, subs...)
}

func (b *Builder) header(img *Image, out []byte) {
	copy(out[0x00:0x0C], padded(b.Title, 12, ' '))
	copy(out[0x0C:0x10], padded(b.GameCode, 4, 0))
	copy(out[0x10:0x12], padded(b.MakerCode, 2, 0))

	capacity := 0
	for (128*1024)<<capacity < len(out) {
		capacity++
	}
	out[0x14] = byte(capacity)

	segment := func(at int, r Region, ram uint32) {
		le.PutUint32(out[at:], uint32(r.Offset))
		le.PutUint32(out[at+4:], ram)
		le.PutUint32(out[at+8:], ram)
		le.PutUint32(out[at+12:], uint32(r.Size))
	}
	segment(0x20, img.ARM9, 0x02000000)
	segment(0x30, img.ARM7, 0x02380000)

	table := func(at int, r Region) {
		le.PutUint32(out[at:], uint32(r.Offset))
		le.PutUint32(out[at+4:], uint32(r.Size))
	}
	table(0x40, img.FNT)
	table(0x48, img.FAT)
	table(0x50, img.ARM9Overlays)
	table(0x58, img.ARM7Overlays)
	le.PutUint32(out[0x68:], uint32(img.Icon.Offset))

	le.PutUint16(out[0x15C:], 0xCF56)
}

func padded(s string, n int, pad byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = pad
	}
	copy(b, s)

	return b
}

// Minimal is a ROM whose data tree holds the single root file TEST.BIN.
func Minimal() Builder {
	return Builder{
		Title:     "TESTROM",
		GameCode:  "NTRT",
		MakerCode: "01",
		ARM9:      []byte{0x01, 0x02, 0x03, 0x04},
		ARM7:      []byte{0x05, 0x06, 0x07, 0x08},
		Files:     []File{{Path: "TEST.BIN", Data: []byte("hello, ds")}},
	}
}

// Sample is a ROM exercising every part of the layout: nested directories,
// overlays for both processors, an ARM9 footer and an icon.
func Sample() Builder {
	return Builder{
		Title:      "SAMPLE GAME",
		GameCode:   "ASME",
		MakerCode:  "01",
		ARM9:       []byte("arm9 code"),
		ARM9Footer: true,
		ARM7:       []byte("arm7 code"),
		Icon:       []byte("icon"),
		Files: []File{
			{Path: "readme.txt", Data: []byte("read me")},
			{Path: "sound/bgm.sdat", Data: []byte("sdat")},
			{Path: "sound/se/click.bin", Data: []byte{0xAA}},
			{Path: "graphics/title.nclr", Data: []byte("palette")},
			{Path: "graphics/empty.bin", Data: []byte{}},
		},
		Dirs: []string{"unused"},
		ARM9Overlays: []Overlay{
			{ID: 0, RAMAddress: 0x02100000, Data: []byte("ov9-0")},
			{ID: 1, RAMAddress: 0x02100000, Data: []byte("ov9-1")},
		},
		ARM7Overlays: []Overlay{
			{ID: 0, RAMAddress: 0x03800000, Data: []byte("ov7-0")},
		},
	}
}
