package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/fire/blobstore"
	"github.com/hupe1980/fire/codec"
)

// Mode is the access mode of a Store.
type Mode uint8

const (
	// ModeWrite appends rows to a new container.
	ModeWrite Mode = iota + 1
	// ModeRead reads rows from a committed container.
	ModeRead
)

func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "write"
	case ModeRead:
		return "read"
	default:
		return fmt.Sprintf("mode(%d)", m)
	}
}

// ColumnInfo describes one column.
type ColumnInfo struct {
	Path        string
	DType       DType
	Rows        uint64
	Present     uint64
	Chunks      int
	StoredBytes uint64
	RawBytes    uint64
}

// Store is a columnar container opened for writing or reading.
type Store struct {
	ctx  context.Context
	name string
	mode Mode
	opts Options

	columns map[string]*column
	order   []string
	entries uint64
	closed  bool
	failed  error

	// write mode
	w      blobstore.WritableBlob
	offset uint64
	comp   *compressor

	// read mode
	r        blobstore.Blob
	footer   Footer
	shuffled bool
}

type column struct {
	desc    columnDesc
	present *presence

	// write mode: rows below base are flushed.
	base    uint64
	pending pendingBuf

	// read mode: last decoded chunk.
	cached any
}

func (c *column) info() ColumnInfo {
	ci := ColumnInfo{
		Path:   c.desc.Path,
		DType:  c.desc.DType,
		Rows:   c.desc.Rows,
		Chunks: len(c.desc.Chunks),
	}
	if c.present == nil {
		ci.Present = c.desc.Rows
	} else {
		ci.Present = c.present.cardinality()
	}
	for _, ch := range c.desc.Chunks {
		ci.StoredBytes += uint64(ch.Length)
		ci.RawBytes += uint64(ch.RawLength)
	}
	return ci
}

// Create creates (or replaces) the named container in bs for writing.
// Nothing is visible under name until Close succeeds.
func Create(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...Option) (*Store, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	comp, err := newCompressor(opts.Compression, opts.CompressionLevel)
	if err != nil {
		return nil, err
	}

	w, err := bs.Create(ctx, name)
	if err != nil {
		comp.close()
		return nil, fmt.Errorf("store: create %s: %w", name, err)
	}

	s := &Store{
		ctx:     ctx,
		name:    name,
		mode:    ModeWrite,
		opts:    opts,
		columns: make(map[string]*column),
		w:       w,
		comp:    comp,
	}
	if err := s.writeRaw(appendPreamble(nil)); err != nil {
		_ = w.Abort()
		comp.close()
		return nil, err
	}
	return s, nil
}

// Name returns the blob name of the container.
func (s *Store) Name() string { return s.name }

// Mode returns the access mode.
func (s *Store) Mode() Mode { return s.mode }

// Options returns the effective options. In read mode the layout fields
// reflect the container.
func (s *Store) Options() Options { return s.opts }

// Has reports whether a column exists at path.
func (s *Store) Has(path string) bool {
	_, ok := s.columns[path]
	return ok
}

// Rows returns the row count of the column at path.
func (s *Store) Rows(path string) (uint64, bool) {
	c, ok := s.columns[path]
	if !ok {
		return 0, false
	}
	return c.desc.Rows, true
}

// Column returns information about the column at path.
func (s *Store) Column(path string) (ColumnInfo, bool) {
	c, ok := s.columns[path]
	if !ok {
		return ColumnInfo{}, false
	}
	return c.info(), true
}

// Columns returns all columns in creation order.
func (s *Store) Columns() []ColumnInfo {
	out := make([]ColumnInfo, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.columns[p].info())
	}
	return out
}

// Paths returns all column paths in creation order.
func (s *Store) Paths() []string {
	return slices.Clone(s.order)
}

// Size returns the bytes written so far in write mode, or the container
// size in read mode.
func (s *Store) Size() uint64 {
	if s.mode == ModeRead {
		return uint64(s.r.Size()) //nolint:gosec
	}
	return s.offset
}

// Entries returns the entry count recorded by the writer.
func (s *Store) Entries() uint64 { return s.entries }

// SetEntries records the entry count in the footer. Write mode only.
func (s *Store) SetEntries(n uint64) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.entries = n
	return nil
}

// Close commits a write-mode container or releases a read-mode one.
// If a write failed earlier, the container is discarded and that error
// is returned. Close is idempotent.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.mode == ModeRead {
		return s.r.Close()
	}

	defer s.comp.close()

	if s.failed != nil {
		_ = s.w.Abort()
		return s.failed
	}
	if err := s.finish(); err != nil {
		_ = s.w.Abort()
		return err
	}
	if err := s.w.Close(); err != nil {
		return fmt.Errorf("store: commit %s: %w", s.name, err)
	}
	return nil
}

// Abort discards a write-mode container. For read mode it is Close.
func (s *Store) Abort() error {
	if s.closed {
		return nil
	}
	if s.mode == ModeRead {
		return s.Close()
	}
	s.closed = true
	s.comp.close()
	return s.w.Abort()
}

func (s *Store) writable() error {
	if s.closed {
		return ErrClosed
	}
	if s.mode != ModeWrite {
		return fmt.Errorf("%w: %s is open for reading", ErrModeViolation, s.name)
	}
	return s.failed
}

func (s *Store) readable() error {
	if s.closed {
		return ErrClosed
	}
	if s.mode != ModeRead {
		return fmt.Errorf("%w: %s is open for writing", ErrModeViolation, s.name)
	}
	return nil
}
