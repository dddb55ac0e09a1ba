// Package storage provides the writable locations extracted ROM contents are
// materialised into.
package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// ErrNotEmpty is returned by CheckEmpty when the target already has content.
var ErrNotEmpty = errors.New("storage: target is not empty")

// Target is a write-once tree of files addressed by slash separated paths
// relative to the target root.
type Target interface {
	// MkdirAll creates dir and any missing parents. It is idempotent.
	MkdirAll(dir string) error
	// WriteFile creates or truncates name and copies r into it.
	WriteFile(name string, r io.Reader) error
	// SupportsConcurrentAccess reports whether different paths may be
	// written from multiple goroutines at once.
	SupportsConcurrentAccess() bool
}

// Dir is a Target rooted at a directory of the host filesystem.
type Dir struct {
	Root string
}

// NewDir returns a Target writing under root. The root is created on first
// use.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

func (d *Dir) path(name string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(name, "/"))
	if rel == "" {
		return d.Root, nil
	}
	if !filepath.IsLocal(rel) {
		return "", &fs.PathError{Op: "resolve", Path: name, Err: fs.ErrInvalid}
	}

	return filepath.Join(d.Root, rel), nil
}

func (d *Dir) MkdirAll(dir string) error {
	p, err := d.path(dir)
	if err != nil {
		return err
	}

	return os.MkdirAll(p, 0755)
}

func (d *Dir) WriteFile(name string, r io.Reader) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}

	f, err := os.Create(p)
	if err != nil {
		return err
	}

	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	return err
}

func (d *Dir) SupportsConcurrentAccess() bool { return true }

// CheckEmpty fails with ErrNotEmpty if the root exists and has entries.
func (d *Dir) CheckEmpty() error {
	entries, err := os.ReadDir(d.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return ErrNotEmpty
	}

	return nil
}

// Memory is an in-memory Target, mostly useful for tests and for callers
// that want the extracted layout without touching the disk.
type Memory struct {
	mu         sync.Mutex
	files      map[string][]byte
	dirs       map[string]bool
	concurrent bool
}

// NewMemory returns an empty Memory target. When concurrent is false the
// target reports that it cannot be written from multiple goroutines.
func NewMemory(concurrent bool) *Memory {
	return &Memory{
		files:      map[string][]byte{},
		dirs:       map[string]bool{"": true},
		concurrent: concurrent,
	}
}

func cleanName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func (m *Memory) MkdirAll(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for d := cleanName(dir); d != "" && d != "."; d = path.Dir(d) {
		if _, ok := m.files[d]; ok {
			return &fs.PathError{Op: "mkdir", Path: d, Err: fs.ErrExist}
		}
		m.dirs[d] = true
	}

	return nil
}

func (m *Memory) WriteFile(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	name = cleanName(name)
	m.mu.Lock()
	defer m.mu.Unlock()

	if parent := path.Dir(name); parent != "." && !m.dirs[parent] {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrNotExist}
	}
	if m.dirs[name] {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrExist}
	}
	m.files[name] = data

	return nil
}

func (m *Memory) SupportsConcurrentAccess() bool { return m.concurrent }

// ReadFile returns the content written to name.
func (m *Memory) ReadFile(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.files[cleanName(name)]

	return b, ok
}

// IsDir reports whether dir was created.
func (m *Memory) IsDir(dir string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dirs[cleanName(dir)]
}

// Files returns the sorted paths of every file written.
func (m *Memory) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}
