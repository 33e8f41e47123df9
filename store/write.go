package store

import (
	"fmt"
	"hash/crc32"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Write stores v at row of the column at path, creating the column on
// first use. Rows skipped since the last write are zero-filled and marked
// absent. A row may be rewritten until its chunk is flushed.
func Write[T Scalar](s *Store, path string, row uint64, v T) error {
	if err := s.writable(); err != nil {
		return err
	}

	dt := DTypeOf[T]()
	c, ok := s.columns[path]
	if !ok {
		if path == "" {
			return fmt.Errorf("store: empty column path")
		}
		c = &column{
			desc:    columnDesc{Path: path, DType: dt},
			present: newPresence(),
			pending: newTypedBuf[T](s.opts.RowsPerChunk),
		}
		s.columns[path] = c
		s.order = append(s.order, path)
	}
	if c.desc.DType != dt {
		return &TypeMismatchError{Path: path, Stored: c.desc.DType, Requested: dt}
	}
	if row < c.base {
		return fmt.Errorf("%w: column %q row %d (flushed up to %d)", ErrRowCommitted, path, row, c.base)
	}

	buf := c.pending.(*typedBuf[T])
	rpc := uint64(s.opts.RowsPerChunk) //nolint:gosec
	for row >= c.base+rpc {
		buf.fill(s.opts.RowsPerChunk)
		c.desc.Rows = c.base + rpc
		if err := s.flush(c); err != nil {
			return err
		}
	}

	buf.set(int(row-c.base), v) //nolint:gosec
	c.present.add(row)
	c.desc.Rows = max(c.desc.Rows, row+1)
	return nil
}

type sealed struct {
	ref     chunkRef
	payload []byte
}

// seal encodes, shuffles and compresses the pending rows of c.
func (s *Store) seal(c *column) (sealed, error) {
	raw := c.pending.encode(nil)
	if s.opts.Shuffle {
		raw = shuffle(raw, c.desc.DType.Width())
	}
	payload, used, err := s.comp.compress(raw)
	if err != nil {
		return sealed{}, fmt.Errorf("store: compress %s: %w", c.desc.Path, err)
	}
	return sealed{
		ref: chunkRef{
			Length:    uint32(len(payload)), //nolint:gosec
			RawLength: uint32(len(raw)),     //nolint:gosec
			FirstRow:  c.base,
			Rows:      uint32(c.pending.len()), //nolint:gosec
			Codec:     used,
			CRC:       crc32.ChecksumIEEE(payload),
		},
		payload: payload,
	}, nil
}

// commitChunk appends a sealed chunk to the blob and resets c's pending buffer.
func (s *Store) commitChunk(c *column, sc sealed) error {
	sc.ref.Offset = s.offset
	if err := s.writeRaw(sc.payload); err != nil {
		return err
	}
	c.desc.Chunks = append(c.desc.Chunks, sc.ref)
	c.base += uint64(sc.ref.Rows)
	c.pending.reset()
	return nil
}

func (s *Store) flush(c *column) error {
	sc, err := s.seal(c)
	if err != nil {
		s.failed = err
		return err
	}
	return s.commitChunk(c, sc)
}

func (s *Store) writeRaw(p []byte) error {
	if err := s.opts.ResourceController.AcquireIO(s.ctx, len(p)); err != nil {
		s.failed = err
		return err
	}
	n, err := s.w.Write(p)
	s.offset += uint64(n) //nolint:gosec
	if err != nil {
		s.failed = fmt.Errorf("store: write %s: %w", s.name, err)
		return s.failed
	}
	return nil
}

// finish flushes all pending chunks and writes the directory and footer.
func (s *Store) finish() error {
	var pending []*column
	for _, p := range s.order {
		if c := s.columns[p]; c.pending.len() > 0 {
			pending = append(pending, c)
		}
	}

	results := make([]sealed, len(pending))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range pending {
		g.Go(func() error {
			sc, err := s.seal(c)
			if err != nil {
				return err
			}
			results[i] = sc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, c := range pending {
		if err := s.commitChunk(c, results[i]); err != nil {
			return err
		}
	}

	dir := directory{
		RowsPerChunk: s.opts.RowsPerChunk,
		Columns:      make([]columnDesc, 0, len(s.order)),
	}
	for _, p := range s.order {
		c := s.columns[p]
		present, err := c.present.marshal(c.desc.Rows)
		if err != nil {
			return fmt.Errorf("store: encode presence of %s: %w", p, err)
		}
		desc := c.desc
		desc.Present = present
		dir.Columns = append(dir.Columns, desc)
	}

	dirBytes, err := s.opts.Codec.Marshal(dir)
	if err != nil {
		return fmt.Errorf("store: encode directory: %w", err)
	}

	f := Footer{
		Magic:       FormatMagic,
		Version:     FormatVersion,
		ColumnCount: uint32(len(dir.Columns)), //nolint:gosec
		Entries:     s.entries,
		DirOffset:   s.offset,
		DirLength:   uint64(len(dirBytes)),
		DirChecksum: crc32.ChecksumIEEE(dirBytes),
	}
	if s.opts.Shuffle {
		f.Flags |= FlagShuffled
	}
	copy(f.Codec[:], s.opts.Codec.Name())

	if err := s.writeRaw(dirBytes); err != nil {
		return err
	}
	footer, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.writeRaw(footer); err != nil {
		return err
	}
	s.footer = f
	return s.w.Sync()
}
