package nds

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

const (
	dirEntrySize = 8

	// subtable length bytes
	subtableEnd      = 0x00
	subtableReserved = 0x80
	subtableDirFlag  = 0x80

	// DataDirName is the name of the tree root, both in virtual paths and in
	// the extracted layout.
	DataDirName = "data"
)

// Node is one entry of the filename tree. Nodes live in Tree.Nodes and refer
// to each other by index.
type Node struct {
	Name string
	// FileIndex is the FAT index of a file, or -1 for a directory
	FileIndex int
	// Parent is the index of the parent directory, -1 for the root
	Parent int
	// Children holds child node indices in on-disk declaration order
	Children []int
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.FileIndex < 0
}

// Tree is the decoded filename table. Node 0 is the root directory, named
// DataDirName.
type Tree struct {
	Nodes []Node
}

// Root returns the index of the root directory.
func (t *Tree) Root() int {
	return 0
}

// Node returns the node at index i.
func (t *Tree) Node(i int) *Node {
	return &t.Nodes[i]
}

// Lookup returns the child of dir whose name matches name case-insensitively.
func (t *Tree) Lookup(dir int, name string) (int, bool) {
	for _, c := range t.Nodes[dir].Children {
		if strings.EqualFold(t.Nodes[c].Name, name) {
			return c, true
		}
	}

	return -1, false
}

// Path returns the slash separated path of node i, starting with DataDirName.
func (t *Tree) Path(i int) string {
	var parts []string
	for ; i >= 0; i = t.Nodes[i].Parent {
		parts = append(parts, t.Nodes[i].Name)
	}

	var sb strings.Builder
	for j := len(parts) - 1; j >= 0; j-- {
		sb.WriteString(parts[j])
		if j > 0 {
			sb.WriteByte('/')
		}
	}

	return sb.String()
}

// Files returns the number of file nodes in the tree.
func (t *Tree) Files() int {
	n := 0
	for i := range t.Nodes {
		if !t.Nodes[i].IsDir() {
			n++
		}
	}

	return n
}

// Walk visits the subtree rooted at start in depth-first pre-order, children
// in declaration order. It uses an explicit stack, so deeply nested trees do
// not grow the goroutine stack. Returning fs.SkipDir from fn for a directory
// skips its children; any other error stops the walk.
func (t *Tree) Walk(start int, fn func(i int, n *Node) error) error {
	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.Nodes[i]
		if err := fn(i, n); err != nil {
			if errors.Is(err, fs.SkipDir) && n.IsDir() {
				continue
			}

			return err
		}

		for j := len(n.Children) - 1; j >= 0; j-- {
			stack = append(stack, n.Children[j])
		}
	}

	return nil
}

type dirEntry struct {
	subTableOffset uint32
	firstFileID    uint16
	// parent directory id, or the directory count for the root
	parent uint16
}

// ParseFNT decodes the filename table at [offset, offset+size) into a Tree.
//
// Every failure is fatal: the whole table is rejected and no partial tree is
// returned.
func ParseFNT(src Source, offset, size uint32) (*Tree, error) {
	region, err := readAt(src, "fnt", int64(offset), int(size))
	if err != nil {
		return nil, err
	}

	p := fntParser{region: region, base: int64(offset)}

	dirs, err := p.mainTable()
	if err != nil {
		return nil, err
	}

	tree := &Tree{Nodes: []Node{{Name: DataDirName, FileIndex: -1, Parent: -1}}}

	type pending struct{ dir, node int }
	visited := make([]bool, len(dirs))
	visited[0] = true
	queue := []pending{{dir: 0, node: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		pos := int(dirs[cur.dir].subTableOffset)
		fileID := int(dirs[cur.dir].firstFileID)

		for {
			if pos >= len(region) {
				return nil, p.err(ErrTruncated, pos, "subtable of directory %d runs past the table", cur.dir)
			}

			length := int(region[pos])
			switch {
			case length == subtableEnd:
			case length == subtableReserved:
				return nil, p.err(ErrUnsupported, pos, "reserved subtable length 0x80")
			case length < subtableDirFlag:
				name, err := p.name(pos+1, length)
				if err != nil {
					return nil, err
				}

				tree.Nodes = append(tree.Nodes, Node{Name: name, FileIndex: fileID, Parent: cur.node})
				tree.Nodes[cur.node].Children = append(tree.Nodes[cur.node].Children, len(tree.Nodes)-1)
				fileID++
				pos += 1 + length
			default:
				nameLen := length & 0x7F
				name, err := p.name(pos+1, nameLen)
				if err != nil {
					return nil, err
				}

				idPos := pos + 1 + nameLen
				if idPos+2 > len(region) {
					return nil, p.err(ErrTruncated, idPos, "directory id of %q runs past the table", name)
				}

				subID := binary.LittleEndian.Uint16(region[idPos:])
				// subdirectories are numbered from 1, the root being 0
				k := int(subID & 0xFFF)
				if k < 1 || k >= len(dirs) {
					return nil, p.err(ErrMalformed, idPos, "directory id 0x%04X of %q out of range, table has %d directories", subID, name, len(dirs))
				}
				if visited[k] {
					return nil, p.err(ErrMalformed, idPos, "directory id 0x%04X of %q referenced twice", subID, name)
				}
				visited[k] = true

				tree.Nodes = append(tree.Nodes, Node{Name: name, FileIndex: -1, Parent: cur.node})
				child := len(tree.Nodes) - 1
				tree.Nodes[cur.node].Children = append(tree.Nodes[cur.node].Children, child)
				queue = append(queue, pending{dir: k, node: child})
				pos = idPos + 2
			}

			if length == subtableEnd {
				break
			}
		}
	}

	return tree, nil
}

type fntParser struct {
	region []byte
	base   int64
}

func (p *fntParser) err(kind error, pos int, format string, args ...any) error {
	return formatErr(kind, "fnt", p.base+int64(pos), format, args...)
}

// mainTable reads the directory main table. The root entry's parent field
// holds the total number of directories, root included.
func (p *fntParser) mainTable() ([]dirEntry, error) {
	read := func(k int) (dirEntry, error) {
		pos := k * dirEntrySize
		if pos+dirEntrySize > len(p.region) {
			return dirEntry{}, p.err(ErrMalformed, pos, "directory main table entry %d runs past the table", k)
		}
		b := p.region[pos:]

		return dirEntry{
			subTableOffset: binary.LittleEndian.Uint32(b),
			firstFileID:    binary.LittleEndian.Uint16(b[4:]),
			parent:         binary.LittleEndian.Uint16(b[6:]),
		}, nil
	}

	root, err := read(0)
	if err != nil {
		return nil, err
	}

	count := int(root.parent)
	if count == 0 {
		return nil, p.err(ErrMalformed, 6, "directory count is zero")
	}

	dirs := make([]dirEntry, count)
	dirs[0] = root
	for k := 1; k < count; k++ {
		if dirs[k], err = read(k); err != nil {
			return nil, err
		}
	}

	return dirs, nil
}

// name decodes an entry name of n bytes at pos. Names that could escape the
// extraction directory are rejected.
func (p *fntParser) name(pos, n int) (string, error) {
	if pos+n > len(p.region) {
		return "", p.err(ErrTruncated, pos, "name of %d bytes runs past the table", n)
	}

	name := decodeName(p.region[pos : pos+n])
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return "", p.err(ErrMalformed, pos, "illegal entry name %q", name)
	}

	return name, nil
}

// decodeName returns ASCII names as-is and decodes anything else as
// Shift-JIS, the encoding used by Japanese titles.
func decodeName(b []byte) string {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			if s, err := japanese.ShiftJIS.NewDecoder().Bytes(b); err == nil {
				return string(s)
			}

			break
		}
	}

	return string(b)
}
