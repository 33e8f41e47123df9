// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("runs/2024/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	f, err := fire.Create(ctx, "hits.fire", ev, fire.WithBlobStore(store))
//
// # Features
//
//   - Range reads for chunk fetches
//   - Multipart uploads for large files
//   - Objects become visible only when the writer is closed
//   - Configurable prefix for multi-tenant isolation
package s3
