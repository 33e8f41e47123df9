// Package resource bounds the memory used by read caches and the write
// bandwidth used when flushing column chunks.
package resource
