package nds

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/arc/v2"
	"github.com/ndstoolkit/ndsrom/internal/cachedregexp"
)

// DefaultResolverCacheSize is the number of resolved paths a Resolver keeps.
const DefaultResolverCacheSize = 1024

// IconFile is the virtual name of the icon/title block. Extraction writes the
// same bytes as banner.bin.
const IconFile = "icon.bin"

// Entry is a resolved virtual path.
type Entry struct {
	// Path is the absolute, lower-cased path the entry was resolved from
	Path string
	// Name keeps the case used in the ROM
	Name string
	Dir  bool
	// Node is the tree node for entries under /data, -1 otherwise
	Node int
	// FileID is the FAT index of data and overlay files, -1 otherwise
	FileID int
	// Range is the file's bytes, zero for directories
	Range Range
}

type topKind int

const (
	topData topKind = iota
	topOverlay
	topFile
)

type top struct {
	name string
	kind topKind
	proc Processor
}

// tops lists the first path segments in the order ReadDir returns them.
var tops = []top{
	{name: ARM7File, kind: topFile},
	{name: ARM9File, kind: topFile},
	{name: DataDirName, kind: topData},
	{name: HeaderFile, kind: topFile},
	{name: IconFile, kind: topFile},
	{name: ARM9.OverlayDir(), kind: topOverlay, proc: ARM9},
	{name: ARM7.OverlayDir(), kind: topOverlay, proc: ARM7},
	{name: ARM7.OverlayTableFile(), kind: topFile},
	{name: ARM9.OverlayTableFile(), kind: topFile},
}

func findTop(name string) (top, bool) {
	for _, t := range tops {
		if t.name == name {
			return t, true
		}
	}

	return top{}, false
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCacheSize sets how many resolved paths are memoised. Zero disables the
// cache.
func WithCacheSize(n int) ResolverOption {
	return func(r *Resolver) {
		r.cacheSize = n
	}
}

// Resolver maps virtual paths such as /data/sound/bgm.sdat or /arm9.bin to
// byte ranges of a ROM without extracting it.
//
// Paths are case-insensitive, accept both / and \ as separators and are
// resolved against a working directory when relative. Resolution only
// depends on the ROM's tables and the absolute path, so results are
// memoised.
type Resolver struct {
	rom       *ROM
	cacheSize int
	cache     *arc.ARCCache[string, Entry]

	mu sync.Mutex
	wd string
}

// NewResolver returns a Resolver for rom with the working directory at /.
func NewResolver(rom *ROM, opts ...ResolverOption) (*Resolver, error) {
	r := &Resolver{rom: rom, cacheSize: DefaultResolverCacheSize, wd: "/"}
	for _, opt := range opts {
		opt(r)
	}

	if r.cacheSize > 0 {
		cache, err := arc.NewARC[string, Entry](r.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create resolver cache: %w", err)
		}
		r.cache = cache
	}

	return r, nil
}

// Getwd returns the working directory.
func (r *Resolver) Getwd() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.wd
}

// Chdir changes the working directory. The target must be a directory.
func (r *Resolver) Chdir(p string) error {
	e, err := r.Stat(p)
	if err != nil {
		return err
	}
	if !e.Dir {
		return &PathError{Op: "chdir", Path: p, Err: ErrNotFound}
	}

	r.mu.Lock()
	r.wd = e.Path
	r.mu.Unlock()

	return nil
}

// Split normalises p against the working directory and returns its
// lower-cased segments. ".." never climbs above the root.
func (r *Resolver) Split(p string) []string {
	p = strings.ReplaceAll(p, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = r.Getwd() + "/" + p
	}

	var segs []string
	for _, s := range strings.Split(p, "/") {
		switch s {
		case "", ".":
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, strings.ToLower(s))
		}
	}

	return segs
}

// Resolve returns the byte range of the file at p.
func (r *Resolver) Resolve(p string) (Range, error) {
	if len(r.Split(p)) == 0 {
		return Range{}, &PathError{Op: "resolve", Path: p, Err: ErrInvalidPath}
	}

	e, err := r.Stat(p)
	if err != nil {
		return Range{}, err
	}
	if e.Dir {
		return Range{}, &PathError{Op: "resolve", Path: p, Err: fmt.Errorf("%w: is a directory", ErrNotFound)}
	}

	return e.Range, nil
}

// Stat resolves p to a file or directory. "/" is the directory of the
// pseudo-roots.
func (r *Resolver) Stat(p string) (Entry, error) {
	if r.rom.closed.Load() {
		return Entry{}, &PathError{Op: "stat", Path: p, Err: ErrClosed}
	}

	segs := r.Split(p)
	key := "/" + strings.Join(segs, "/")
	if r.cache != nil {
		if e, ok := r.cache.Get(key); ok {
			return e, nil
		}
	}

	e, err := r.stat(key, segs)
	if err != nil {
		return Entry{}, &PathError{Op: "stat", Path: p, Err: err}
	}
	if r.cache != nil {
		r.cache.Add(key, e)
	}

	return e, nil
}

func (r *Resolver) stat(key string, segs []string) (Entry, error) {
	if len(segs) == 0 {
		return Entry{Path: "/", Name: "/", Dir: true, Node: -1, FileID: -1}, nil
	}

	t, ok := findTop(segs[0])
	if !ok {
		return Entry{}, fmt.Errorf("%w: unknown root %q", ErrInvalidPath, segs[0])
	}

	switch t.kind {
	case topData:
		return r.statData(key, segs[1:])
	case topOverlay:
		return r.statOverlay(key, t.proc, segs[1:])
	case topFile:
	}

	if len(segs) > 1 {
		return Entry{}, fmt.Errorf("%w: %s is not a directory", ErrNotFound, t.name)
	}

	rg, err := r.pseudoRange(t.name)
	if err != nil {
		return Entry{}, err
	}

	return Entry{Path: key, Name: t.name, Node: -1, FileID: -1, Range: rg}, nil
}

func (r *Resolver) pseudoRange(name string) (Range, error) {
	rom := r.rom
	switch name {
	case HeaderFile:
		return rom.HeaderRange(), nil
	case ARM9File:
		return rom.ARM9Range()
	case ARM7File:
		return rom.ARM7Range(), nil
	case IconFile:
		if rg, ok := rom.IconRange(); ok {
			return rg, nil
		}

		return Range{}, fmt.Errorf("%w: rom has no icon", ErrNotFound)
	case ARM9.OverlayTableFile():
		return rom.OverlayTableRange(ARM9), nil
	case ARM7.OverlayTableFile():
		return rom.OverlayTableRange(ARM7), nil
	}

	return Range{}, fmt.Errorf("%w: %s", ErrInvalidPath, name)
}

func (r *Resolver) statData(key string, segs []string) (Entry, error) {
	tree := r.rom.Tree()
	node := tree.Root()
	for _, s := range segs {
		if !tree.Node(node).IsDir() {
			return Entry{}, fmt.Errorf("%w: %s is not a directory", ErrNotFound, tree.Path(node))
		}

		child, ok := tree.Lookup(node, s)
		if !ok {
			return Entry{}, fmt.Errorf("%w: no %q in %s", ErrNotFound, s, tree.Path(node))
		}
		node = child
	}

	return r.nodeEntry(key, node)
}

// nodeEntry builds the entry of a data tree node without going through a
// name lookup, so siblings whose names only differ by case stay distinct.
func (r *Resolver) nodeEntry(key string, node int) (Entry, error) {
	n := r.rom.Tree().Node(node)
	e := Entry{Path: key, Name: n.Name, Dir: n.IsDir(), Node: node, FileID: n.FileIndex}
	if !e.Dir {
		rg, err := r.rom.FileRange(node)
		if err != nil {
			return Entry{}, err
		}
		e.Range = rg
	}

	return e, nil
}

func (r *Resolver) statOverlay(key string, p Processor, segs []string) (Entry, error) {
	switch len(segs) {
	case 0:
		return Entry{Path: key, Name: p.OverlayDir(), Dir: true, Node: -1, FileID: -1}, nil
	case 1:
	default:
		return Entry{}, fmt.Errorf("%w: overlays have no subdirectories", ErrNotFound)
	}

	index, ok := parseOverlayName(segs[0])
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q does not match overlay_NNNN.bin", ErrInvalidPath, segs[0])
	}

	rg, err := r.rom.OverlayRange(p, index)
	if err != nil {
		return Entry{}, err
	}

	id := int(r.rom.Overlays(p)[index].FileID)

	return Entry{Path: key, Name: segs[0], Node: -1, FileID: id, Range: rg}, nil
}

const overlayNamePattern = `^overlay_(\d{4})\.bin$`

// parseOverlayName extracts NNNN from a lower-cased overlay_NNNN.bin.
func parseOverlayName(name string) (int, bool) {
	digits, ok := cachedregexp.Submatch(overlayNamePattern, name)
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	return n, true
}

// ReadDir lists the directory at p: the pseudo-roots for "/", the overlays
// of a processor, or a directory of the data tree in declaration order.
func (r *Resolver) ReadDir(p string) ([]Entry, error) {
	dir, err := r.Stat(p)
	if err != nil {
		return nil, err
	}
	if !dir.Dir {
		return nil, &PathError{Op: "readdir", Path: p, Err: fmt.Errorf("%w: not a directory", ErrNotFound)}
	}

	join := func(name string) string {
		return strings.TrimSuffix(dir.Path, "/") + "/" + strings.ToLower(name)
	}

	var entries []Entry
	switch {
	case dir.Path == "/":
		for _, t := range tops {
			if t.name == IconFile && !r.rom.Header().HasIconTitle() {
				continue
			}
			e, err := r.Stat(join(t.name))
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	case dir.Node >= 0:
		tree := r.rom.Tree()
		for _, c := range tree.Node(dir.Node).Children {
			e, err := r.nodeEntry(join(tree.Node(c).Name), c)
			if err != nil {
				return nil, &PathError{Op: "readdir", Path: p, Err: err}
			}
			entries = append(entries, e)
		}
	default:
		p := ARM9
		if dir.Name == ARM7.OverlayDir() {
			p = ARM7
		}
		for i := range r.rom.Overlays(p) {
			e, err := r.Stat(join(fmt.Sprintf("overlay_%04d.bin", i)))
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// VFS returns the resolver shared by the path based accessors of r.
func (r *ROM) VFS() *Resolver { return r.vfs }

// Resolve returns the byte range of the file at the virtual path p.
func (r *ROM) Resolve(p string) (Range, error) { return r.vfs.Resolve(p) }

// FileExists reports whether p names a file, not a directory.
func (r *ROM) FileExists(p string) bool {
	e, err := r.vfs.Stat(p)

	return err == nil && !e.Dir
}

// FileLength returns the size of the file at p.
func (r *ROM) FileLength(p string) (int64, error) {
	rg, err := r.vfs.Resolve(p)
	if err != nil {
		return 0, err
	}

	return rg.Size(), nil
}

// ReadFile returns the content of the file at p.
func (r *ROM) ReadFile(p string) ([]byte, error) {
	rg, err := r.vfs.Resolve(p)
	if err != nil {
		return nil, err
	}

	return r.ReadRange(rg)
}

// ReadDir lists the directory at p.
func (r *ROM) ReadDir(p string) ([]Entry, error) { return r.vfs.ReadDir(p) }

// Chdir changes the working directory relative paths are resolved against.
func (r *ROM) Chdir(p string) error { return r.vfs.Chdir(p) }

func (r *ROM) Getwd() string { return r.vfs.Getwd() }
