// Package blobstore provides the storage abstraction underneath fire files.
//
// A fire file is written once, front to back, and committed on close; it
// is read with random access by offset. BlobStore captures exactly that.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem; writes go to a temp file that atomically
//     replaces the destination on Close
//   - MemoryStore: in-process map, for tests
//   - CachingStore: block cache in front of a slow (remote) store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
// Implement BlobStore to support other backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
