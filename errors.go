package fire

import (
	"errors"
	"fmt"

	"github.com/hupe1980/fire/store"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("fire: not found")

	// ErrMissingData is wrapped by the NotFoundError returned from Get when
	// a name was never added and there is no input file to load it from.
	ErrMissingData = errors.New("fire: missing data")

	// ErrModeViolation is returned when loading from a file opened for
	// writing or saving to one opened for reading.
	ErrModeViolation = store.ErrModeViolation

	// ErrCorrupted is returned for inconsistent on-disk data, including
	// checksum failures and vector index columns with end < begin.
	ErrCorrupted = store.ErrCorrupted

	// ErrInvalidOptions is returned by Create for an invalid layout.
	ErrInvalidOptions = store.ErrInvalidOptions

	// ErrClosed is returned when using a closed File.
	ErrClosed = errors.New("fire: file closed")
)

// SchemaError reports a bad field name, a duplicate field name, a reserved
// name, or a field type that has no column shape.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("fire: schema error at %q: %s", e.Path, e.Reason)
}

// TypeMismatchError indicates that a name or column path was accessed with
// a type other than the one it is bound to.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type TypeMismatchError struct {
	Name      string
	Bound     string
	Requested string
	cause     error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("fire: type mismatch for %q: bound to %s, requested %s", e.Name, e.Bound, e.Requested)
}

func (e *TypeMismatchError) Unwrap() error { return e.cause }

// NotFoundError indicates a value that is neither in memory nor in the
// input file. It matches ErrNotFound.
type NotFoundError struct {
	Path  string
	Entry int64
	cause error
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("fire: %q not found at entry %d", e.Path, e.Entry)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Unwrap() error { return e.cause }

// IOError wraps a failure of the underlying blob store or container.
type IOError struct {
	Op    string
	Name  string
	cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("fire: %s %s: %v", e.Op, e.Name, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// translateError maps store and blob store errors onto the public error
// types. Errors that are already public pass through unchanged.
func translateError(op, name string, err error) error {
	if err == nil {
		return nil
	}

	var (
		se  *SchemaError
		tme *TypeMismatchError
		nfe *NotFoundError
		ioe *IOError
	)
	if errors.As(err, &se) || errors.As(err, &tme) || errors.As(err, &nfe) || errors.As(err, &ioe) {
		return err
	}
	if errors.Is(err, ErrClosed) || errors.Is(err, ErrModeViolation) || errors.Is(err, ErrInvalidOptions) {
		return err
	}

	var stm *store.TypeMismatchError
	if errors.As(err, &stm) {
		return &TypeMismatchError{
			Name:      stm.Path,
			Bound:     stm.Stored.String(),
			Requested: stm.Requested.String(),
			cause:     err,
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Path: name, Entry: -1, cause: err}
	}

	return &IOError{Op: op, Name: name, cause: err}
}
