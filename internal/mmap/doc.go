// Package mmap maps committed blobs into memory for read-only access.
//
// Containers are immutable once committed, so a read-only shared
// mapping can serve every ReadAt without a system call:
//
//	m, err := mmap.Open("events.fire")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessRandom)
//
// Unix uses mmap(2) and madvise(2). Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but
// slices returned by Bytes must not be used after it.
package mmap
