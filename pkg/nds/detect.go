package nds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// IsROM reports whether r looks like an NDS ROM image, going by the
// checksum of the boot logo every retail cartridge carries at 0x15C.
func IsROM(r io.ReaderAt) bool {
	b := make([]byte, 2)
	if _, err := r.ReadAt(b, 0x15C); err != nil {
		return false
	}

	return binary.LittleEndian.Uint16(b) == logoChecksum
}

// IsROMFile is IsROM for the file at path.
func IsROMFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	return IsROM(f), nil
}

// IsExtractedDir reports whether fsys holds the layout written by Extract:
// arm9.bin, arm7.bin and header.bin files next to a data directory.
func IsExtractedDir(fsys fs.FS) bool {
	for _, name := range []string{ARM9File, ARM7File, HeaderFile} {
		info, err := fs.Stat(fsys, name)
		if err != nil || info.IsDir() {
			return false
		}
	}

	info, err := fs.Stat(fsys, DataDirName)

	return err == nil && info.IsDir()
}

// DirGameCode returns the game code stored in the header.bin of an
// extracted layout.
func DirGameCode(fsys fs.FS) (string, error) {
	f, err := fsys.Open(HeaderFile)
	if err != nil {
		return "", err
	}
	defer f.Close()

	b := make([]byte, 0x10)
	if _, err := io.ReadFull(f, b); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return "", formatErr(ErrTruncated, HeaderFile, 0, "game code needs 0x10 bytes")
		}

		return "", fmt.Errorf("failed to read %s: %w", HeaderFile, err)
	}

	return asciiField(b[0x0C:0x10]), nil
}
