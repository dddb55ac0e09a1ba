package nds

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when the source is shorter than a field or
	// region requires.
	ErrTruncated = errors.New("nds: truncated input")

	// ErrMalformed is returned when offsets, sizes or records are internally
	// inconsistent.
	ErrMalformed = errors.New("nds: malformed structure")

	// ErrUnsupported is returned for recognised but unhandled encodings, such
	// as the reserved filename subtable length 0x80.
	ErrUnsupported = errors.New("nds: unsupported structure")

	// ErrNotFound is returned when a virtual path or file id does not resolve.
	ErrNotFound = errors.New("nds: not found")

	// ErrInvalidPath is returned when a virtual path does not follow the
	// path grammar.
	ErrInvalidPath = errors.New("nds: invalid path")

	// ErrClosed is returned when reading from a ROM after Close.
	ErrClosed = errors.New("nds: rom is closed")
)

// FormatError describes a parse failure at a specific location of the ROM.
type FormatError struct {
	// Kind is the sentinel matched by errors.Is, such as ErrMalformed
	Kind   error
	Table  string
	Offset int64
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %s at 0x%X: %s", e.Kind, e.Table, e.Offset, e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}

func formatErr(kind error, table string, offset int64, format string, args ...any) error {
	return &FormatError{
		Kind:   kind,
		Table:  table,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}

// PathError records a virtual path that failed to resolve.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ExtractError records the failure of a single extraction unit.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err was caused by the ROM itself being
// truncated, malformed or using an unsupported encoding. Retrying such an
// error against the same bytes cannot succeed.
func IsStructural(err error) bool {
	return errors.Is(err, ErrTruncated) || errors.Is(err, ErrMalformed) || errors.Is(err, ErrUnsupported)
}
