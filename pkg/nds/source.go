package nds

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// Source is a random-access, read-only view of a ROM image.
type Source interface {
	io.ReaderAt
	// Size returns the total length of the image in bytes
	Size() int64
	// SupportsConcurrentAccess reports whether ReadAt may be called from
	// multiple goroutines at once.
	SupportsConcurrentAccess() bool
}

type bytesSource struct {
	*bytes.Reader
}

func (bytesSource) SupportsConcurrentAccess() bool { return true }

// NewBytesSource returns a Source backed by b. The slice must not be
// modified while the source is in use.
func NewBytesSource(b []byte) Source {
	return bytesSource{Reader: bytes.NewReader(b)}
}

type mmapSource struct {
	r *mmap.ReaderAt
}

func (m *mmapSource) ReadAt(p []byte, off int64) (int, error) {
	return m.r.ReadAt(p, off)
}

func (m *mmapSource) Size() int64 {
	return int64(m.r.Len())
}

func (m *mmapSource) SupportsConcurrentAccess() bool { return true }

func (m *mmapSource) Close() error {
	return m.r.Close()
}

type fileSource struct {
	f    *os.File
	size int64
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *fileSource) Size() int64 { return s.size }

// pread based, so concurrent readers do not share a file offset
func (s *fileSource) SupportsConcurrentAccess() bool { return true }

func (s *fileSource) Close() error {
	return s.f.Close()
}

type sequentialSource struct {
	Source
}

func (sequentialSource) SupportsConcurrentAccess() bool { return false }

// Sequential wraps src so that it reports no support for concurrent access,
// forcing every operation reading from it onto a single goroutine.
func Sequential(src Source) Source {
	return sequentialSource{Source: src}
}

// readAt reads exactly n bytes at off, failing with ErrTruncated when the
// region runs past the end of the source.
func readAt(src Source, table string, off int64, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+int64(n) > src.Size() {
		return nil, formatErr(ErrTruncated, table, off, "need %d bytes, image is %d bytes", n, src.Size())
	}

	buf := make([]byte, n)
	read, err := src.ReadAt(buf, off)
	if read < n {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return nil, err
	}

	// a full read may still report io.EOF when it ends exactly at the end
	return buf, nil
}

func readUint32(src Source, table string, off int64) (uint32, error) {
	b, err := readAt(src, table, off, 4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}
