package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for reading and writing whole data files.
type BlobStore interface {
	// Open opens a blob for reading. The context bounds every read made
	// through the returned Blob.
	Open(ctx context.Context, name string) (Blob, error)
	// Create starts writing a new blob. The blob becomes visible under name
	// only when the returned WritableBlob is closed successfully.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a blob being written sequentially.
type WritableBlob interface {
	io.Writer
	// Sync flushes buffered data to durable storage where supported.
	Sync() error
	// Close commits the blob.
	Close() error
	// Abort discards everything written so far. The blob never becomes
	// visible. Calling Abort after Close is a no-op.
	Abort() error
}
