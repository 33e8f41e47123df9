// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: filesystem operations (open, remove, rename, etc.)
//
// # Implementations
//
//   - [LocalFS]: production implementation on top of the os package; Rename
//     is an atomic replace
//   - [FaultyFS]: test utility for fault injection (simulate I/O errors)
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp", fs.Fault{FailAfterBytes: 1024})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// This package intentionally does NOT include context.Context parameters.
// Local filesystem operations are not interruptible at the syscall level.
// Remote storage goes through the blobstore package instead.
package fs
