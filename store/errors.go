package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMagic is returned when a blob is not a fire container.
	ErrInvalidMagic = errors.New("store: invalid magic number")

	// ErrInvalidVersion is returned when a container has an unsupported version.
	ErrInvalidVersion = errors.New("store: unsupported format version")

	// ErrCorrupted is returned when a container fails structural or checksum validation.
	ErrCorrupted = errors.New("store: file corrupted")

	// ErrModeViolation is returned when reading a write-mode store or writing a read-mode store.
	ErrModeViolation = errors.New("store: operation not permitted in this mode")

	// ErrNotFound is returned when a column or row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrRowCommitted is returned when writing a row whose chunk was already flushed.
	ErrRowCommitted = errors.New("store: row already committed")

	// ErrInvalidOptions is returned by Options.Validate.
	ErrInvalidOptions = errors.New("store: invalid options")

	// ErrClosed is returned when using a closed store.
	ErrClosed = errors.New("store: closed")
)

// TypeMismatchError is returned when a column is accessed with a type other
// than the one it was created with.
type TypeMismatchError struct {
	Path      string
	Stored    DType
	Requested DType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("store: column %q holds %s, requested %s", e.Path, e.Stored, e.Requested)
}

// ChecksumMismatchError reports a CRC mismatch in one part of a container.
type ChecksumMismatchError struct {
	What     string
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("store: checksum mismatch in %s: expected %08x, got %08x", e.What, e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Unwrap() error {
	return ErrCorrupted
}

func notFound(path string, row uint64) error {
	return fmt.Errorf("%w: column %q row %d", ErrNotFound, path, row)
}

func corrupted(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupted, fmt.Sprintf(format, args...))
}
