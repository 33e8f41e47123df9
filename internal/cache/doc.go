// Package cache provides the block cache used by blobstore.CachingStore to
// keep recently read ranges of remote blobs in memory.
package cache
