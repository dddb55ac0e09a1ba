package nds

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

// FS returns a read-only fs.FS over the virtual paths of r. "." is the
// directory holding data, overlay, arm9.bin and the other pseudo-roots.
//
// The returned value also implements fs.ReadDirFS, fs.ReadFileFS and
// fs.StatFS. Files read straight from the ROM's source.
func (r *ROM) FS() fs.FS {
	return &romFS{rom: r}
}

type romFS struct {
	rom *ROM
}

var (
	_ fs.ReadDirFS  = (*romFS)(nil)
	_ fs.ReadFileFS = (*romFS)(nil)
	_ fs.StatFS     = (*romFS)(nil)
)

func (f *romFS) stat(op, name string) (Entry, error) {
	if !fs.ValidPath(name) {
		return Entry{}, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}

	// fs paths only use "/" as a separator, unlike resolver paths
	if strings.Contains(name, `\`) {
		return Entry{}, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}

	vpath := "/" + name
	if name == "." {
		vpath = "/"
	}

	e, err := f.rom.vfs.Stat(vpath)
	if err != nil {
		return Entry{}, &fs.PathError{Op: op, Path: name, Err: fsErr(err)}
	}

	return e, nil
}

// fsErr maps resolution failures onto the io/fs sentinels, keeping the
// original error in the chain.
func fsErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidPath):
		return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	case errors.Is(err, ErrClosed):
		return fmt.Errorf("%w: %w", fs.ErrClosed, err)
	}

	return err
}

func (f *romFS) Open(name string) (fs.File, error) {
	e, err := f.stat("open", name)
	if err != nil {
		return nil, err
	}

	info := entryInfo{e: e, name: path.Base(name)}
	if e.Dir {
		entries, err := f.ReadDir(name)
		if err != nil {
			return nil, err
		}

		return &dirFile{info: info, entries: entries}, nil
	}

	sr, err := f.rom.SectionReader(e.Range)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fsErr(err)}
	}

	return &file{SectionReader: sr, info: info}, nil
}

func (f *romFS) Stat(name string) (fs.FileInfo, error) {
	e, err := f.stat("stat", name)
	if err != nil {
		return nil, err
	}

	return entryInfo{e: e, name: path.Base(name)}, nil
}

func (f *romFS) ReadFile(name string) ([]byte, error) {
	e, err := f.stat("read", name)
	if err != nil {
		return nil, err
	}
	if e.Dir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}

	b, err := f.rom.ReadRange(e.Range)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fsErr(err)}
	}

	return b, nil
}

func (f *romFS) ReadDir(name string) ([]fs.DirEntry, error) {
	e, err := f.stat("readdir", name)
	if err != nil {
		return nil, err
	}
	if !e.Dir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	children, err := f.rom.vfs.ReadDir(e.Path)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fsErr(err)}
	}

	entries := make([]fs.DirEntry, 0, len(children))
	for _, c := range children {
		entries = append(entries, fs.FileInfoToDirEntry(entryInfo{e: c, name: c.Name}))
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return entries, nil
}

// entryInfo is the fs.FileInfo of a resolved Entry.
type entryInfo struct {
	e    Entry
	name string
}

func (i entryInfo) Name() string       { return i.name }
func (i entryInfo) Size() int64        { return i.e.Range.Size() }
func (i entryInfo) ModTime() time.Time { return time.Time{} }
func (i entryInfo) IsDir() bool        { return i.e.Dir }
func (i entryInfo) Sys() any           { return i.e }

func (i entryInfo) Mode() fs.FileMode {
	if i.e.Dir {
		return fs.ModeDir | 0o555
	}

	return 0o444
}

type file struct {
	*io.SectionReader
	info entryInfo
}

func (f *file) Stat() (fs.FileInfo, error) { return f.info, nil }

func (f *file) Close() error { return nil }

type dirFile struct {
	info    entryInfo
	entries []fs.DirEntry
	offset  int
}

func (d *dirFile) Stat() (fs.FileInfo, error) { return d.info, nil }

func (d *dirFile) Close() error { return nil }

func (d *dirFile) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.name, Err: fs.ErrInvalid}
}

func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}

	n = min(n, len(rest))
	d.offset += n

	return rest[:n], nil
}
