// Package store implements the row-indexed columnar container that backs
// fire files.
//
// A container holds any number of typed columns, each addressed by a
// slash-delimited path. Values are written row by row in increasing order,
// grouped into chunks of RowsPerChunk rows, optionally byte-shuffled and
// compressed (LZ4 or Zstd), and checksummed. Rows that were skipped when
// writing are recorded as absent in a per-column presence bitmap, so a
// reader can tell "never written" apart from a zero value.
//
// # File Layout
//
//	+----------------------+
//	| Preamble (8 bytes)   |  magic "FIRE", version
//	+----------------------+
//	| Chunk payloads       |  per column, in flush order
//	+----------------------+
//	| Directory            |  codec-encoded column descriptors
//	+----------------------+
//	| Footer (64 bytes)    |  directory location, codec name, CRC
//	+----------------------+
//
// A Store is either in write mode (Create) or read mode (Open). Writes
// are only visible to readers after Close commits the blob.
//
// # Usage
//
//	s, err := store.Create(ctx, bs, "run.fire", store.WithCompression(store.CompressionZstd, 6))
//	_ = store.Write(s, "hits/energy", 0, 1.5)
//	err = s.Close()
//
//	r, err := store.Open(ctx, bs, "run.fire")
//	v, err := store.Read[float64](r, "hits/energy", 0)
//
// A Store is not safe for concurrent use.
package store
