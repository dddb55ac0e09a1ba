package storage_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ndstoolkit/ndsrom/pkg/storage"
)

func TestDir(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "out")
	d := storage.NewDir(root)

	if err := d.CheckEmpty(); err != nil {
		t.Errorf("CheckEmpty() of a missing root error = %v", err)
	}
	if err := d.MkdirAll("data/sound"); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := d.MkdirAll("data/sound"); err != nil {
		t.Errorf("second MkdirAll() error = %v", err)
	}
	if err := d.WriteFile("data/sound/bgm.sdat", strings.NewReader("sdat")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "data", "sound", "bgm.sdat"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "sdat" {
		t.Errorf("content = %q, want %q", got, "sdat")
	}
	if err := d.CheckEmpty(); !errors.Is(err, storage.ErrNotEmpty) {
		t.Errorf("CheckEmpty() error = %v, want %v", err, storage.ErrNotEmpty)
	}
}

func TestDir_RejectsEscapes(t *testing.T) {
	t.Parallel()

	d := storage.NewDir(t.TempDir())

	for _, name := range []string{"../evil.bin", "data/../../evil.bin"} {
		if err := d.WriteFile(name, strings.NewReader("x")); !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("WriteFile(%q) error = %v, want %v", name, err, fs.ErrInvalid)
		}
		if err := d.MkdirAll(name); !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("MkdirAll(%q) error = %v, want %v", name, err, fs.ErrInvalid)
		}
	}
}

func TestMemory(t *testing.T) {
	t.Parallel()

	m := storage.NewMemory(false)
	if m.SupportsConcurrentAccess() {
		t.Errorf("SupportsConcurrentAccess() = true for a sequential target")
	}

	if err := m.WriteFile("data/a.bin", strings.NewReader("a")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("WriteFile() without a parent error = %v, want %v", err, fs.ErrNotExist)
	}

	if err := m.MkdirAll("data/sub"); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := m.WriteFile("data/a.bin", strings.NewReader("a")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := m.WriteFile("top.bin", strings.NewReader("t")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := m.WriteFile("data/sub", strings.NewReader("x")); !errors.Is(err, fs.ErrExist) {
		t.Errorf("WriteFile() over a directory error = %v, want %v", err, fs.ErrExist)
	}
	if err := m.MkdirAll("data/a.bin/x"); !errors.Is(err, fs.ErrExist) {
		t.Errorf("MkdirAll() below a file error = %v, want %v", err, fs.ErrExist)
	}

	if diff := cmp.Diff([]string{"data/a.bin", "top.bin"}, m.Files()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
	if !m.IsDir("data") || !m.IsDir("data/sub") || m.IsDir("data/a.bin") {
		t.Errorf("IsDir() does not match the created directories")
	}
	if b, ok := m.ReadFile("/data/a.bin"); !ok || string(b) != "a" {
		t.Errorf("ReadFile() = %q, %v", b, ok)
	}
}
