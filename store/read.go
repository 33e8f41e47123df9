package store

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"sort"

	"github.com/hupe1980/fire/blobstore"
	"github.com/hupe1980/fire/codec"
)

// Open opens the named container in bs for reading.
func Open(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...Option) (*Store, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	r, err := bs.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", name, err)
	}

	s := &Store{
		ctx:     ctx,
		name:    name,
		mode:    ModeRead,
		opts:    opts,
		columns: make(map[string]*column),
		r:       r,
	}
	if err := s.load(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("store: open %s: %w", name, err)
	}
	return s, nil
}

func (s *Store) readAt(off uint64, n uint64) ([]byte, error) {
	buf := make([]byte, n)
	read, err := s.r.ReadAt(buf, int64(off)) //nolint:gosec
	if uint64(read) == n { //nolint:gosec
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, corrupted("short read at %d: %d of %d bytes", off, read, n)
	}
	return nil, err
}

// load reads and validates the footer, preamble and directory.
func (s *Store) load() error {
	size := s.r.Size()
	if size < PreambleSize+FooterSize {
		return corrupted("blob is %d bytes", size)
	}

	pre, err := s.readAt(0, PreambleSize)
	if err != nil {
		return err
	}
	if err := checkPreamble(pre); err != nil {
		return err
	}

	fb, err := s.readAt(uint64(size-FooterSize), FooterSize) //nolint:gosec
	if err != nil {
		return err
	}
	if err := s.footer.UnmarshalBinary(fb); err != nil {
		return err
	}

	f := &s.footer
	dirEnd := f.DirOffset + f.DirLength
	if f.DirOffset < PreambleSize || dirEnd < f.DirOffset || dirEnd > uint64(size-FooterSize) { //nolint:gosec
		return corrupted("directory [%d,%d) out of bounds", f.DirOffset, dirEnd)
	}
	dirBytes, err := s.readAt(f.DirOffset, f.DirLength)
	if err != nil {
		return err
	}
	if actual := crc32.ChecksumIEEE(dirBytes); actual != f.DirChecksum {
		return &ChecksumMismatchError{What: "directory", Expected: f.DirChecksum, Actual: actual}
	}

	c, ok := codec.ByName(f.CodecName())
	if !ok {
		return corrupted("unknown directory codec %q", f.CodecName())
	}
	var dir directory
	if err := c.Unmarshal(dirBytes, &dir); err != nil {
		return corrupted("directory: %v", err)
	}
	if len(dir.Columns) != int(f.ColumnCount) {
		return corrupted("directory has %d columns, footer says %d", len(dir.Columns), f.ColumnCount)
	}

	for _, desc := range dir.Columns {
		if !desc.DType.Valid() {
			return corrupted("column %q has invalid dtype", desc.Path)
		}
		if _, dup := s.columns[desc.Path]; dup {
			return corrupted("duplicate column %q", desc.Path)
		}
		var covered uint64
		for _, ch := range desc.Chunks {
			if ch.FirstRow != covered || ch.Offset+uint64(ch.Length) > f.DirOffset {
				return corrupted("column %q chunk at row %d is inconsistent", desc.Path, ch.FirstRow)
			}
			covered += uint64(ch.Rows)
		}
		if covered != desc.Rows {
			return corrupted("column %q chunks cover %d rows, want %d", desc.Path, covered, desc.Rows)
		}
		p, err := unmarshalPresence(desc.Present)
		if err != nil {
			return err
		}
		desc.Present = nil
		s.columns[desc.Path] = &column{desc: desc, present: p}
		s.order = append(s.order, desc.Path)
	}

	s.opts.RowsPerChunk = dir.RowsPerChunk
	s.opts.Shuffle = f.Shuffled()
	s.opts.Codec = c
	s.shuffled = f.Shuffled()
	s.entries = f.Entries
	return nil
}

type decoded[T Scalar] struct {
	chunk int
	first uint64
	vals  []T
}

// Read returns the value at row of the column at path. Reading an absent
// column, a row beyond the column, or a row that was skipped on write
// fails with ErrNotFound.
func Read[T Scalar](s *Store, path string, row uint64) (T, error) {
	var zero T
	if err := s.readable(); err != nil {
		return zero, err
	}

	c, ok := s.columns[path]
	if !ok {
		return zero, fmt.Errorf("%w: column %q", ErrNotFound, path)
	}
	if dt := DTypeOf[T](); c.desc.DType != dt {
		return zero, &TypeMismatchError{Path: path, Stored: c.desc.DType, Requested: dt}
	}
	if row >= c.desc.Rows || !c.present.contains(row) {
		return zero, notFound(path, row)
	}

	chunks := c.desc.Chunks
	idx := sort.Search(len(chunks), func(i int) bool {
		return chunks[i].FirstRow+uint64(chunks[i].Rows) > row
	})
	if idx == len(chunks) {
		return zero, corrupted("column %q has no chunk for row %d", path, row)
	}

	d, ok := c.cached.(*decoded[T])
	if !ok || d.chunk != idx {
		vals, err := readChunk[T](s, c, idx)
		if err != nil {
			return zero, err
		}
		d = &decoded[T]{chunk: idx, first: chunks[idx].FirstRow, vals: vals}
		c.cached = d
	}
	return d.vals[row-d.first], nil
}

func readChunk[T Scalar](s *Store, c *column, idx int) ([]T, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	ref := c.desc.Chunks[idx]
	payload, err := s.readAt(ref.Offset, uint64(ref.Length))
	if err != nil {
		return nil, fmt.Errorf("store: read %s chunk %d: %w", c.desc.Path, idx, err)
	}
	if actual := crc32.ChecksumIEEE(payload); actual != ref.CRC {
		return nil, &ChecksumMismatchError{
			What:     fmt.Sprintf("column %q chunk %d", c.desc.Path, idx),
			Expected: ref.CRC,
			Actual:   actual,
		}
	}
	raw, err := decompress(payload, ref.Codec, int(ref.RawLength))
	if err != nil {
		return nil, err
	}
	if s.shuffled {
		raw = unshuffle(raw, c.desc.DType.Width())
	}
	return decodeValues[T](raw, int(ref.Rows))
}

// ReadAny reads a value without knowing the column type statically.
func ReadAny(s *Store, path string, row uint64) (any, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	c, ok := s.columns[path]
	if !ok {
		return nil, fmt.Errorf("%w: column %q", ErrNotFound, path)
	}
	switch c.desc.DType {
	case DTypeBool:
		return readAny[bool](s, path, row)
	case DTypeInt8:
		return readAny[int8](s, path, row)
	case DTypeInt16:
		return readAny[int16](s, path, row)
	case DTypeInt32:
		return readAny[int32](s, path, row)
	case DTypeInt64:
		return readAny[int64](s, path, row)
	case DTypeUint8:
		return readAny[uint8](s, path, row)
	case DTypeUint16:
		return readAny[uint16](s, path, row)
	case DTypeUint32:
		return readAny[uint32](s, path, row)
	case DTypeUint64:
		return readAny[uint64](s, path, row)
	case DTypeFloat32:
		return readAny[float32](s, path, row)
	case DTypeFloat64:
		return readAny[float64](s, path, row)
	case DTypeString:
		return readAny[string](s, path, row)
	default:
		return nil, corrupted("column %q has invalid dtype", path)
	}
}

func readAny[T Scalar](s *Store, path string, row uint64) (any, error) {
	v, err := Read[T](s, path, row)
	if err != nil {
		return nil, err
	}
	return v, nil
}
