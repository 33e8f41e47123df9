package fire

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/fire/blobstore"
	"github.com/hupe1980/fire/internal/cache"
	"github.com/hupe1980/fire/internal/resource"
	"github.com/hupe1980/fire/store"
)

type readState uint8

const (
	awaitingFirst readState = iota
	hasEntry
	atEOF
)

// File drives saving or loading the values of an Event one entry at a time.
//
// A File created with Create appends entries; one opened with Open walks
// the entries of an existing file. The mode is fixed for the lifetime of
// the File. Files are not safe for concurrent use.
type File struct {
	ctx     context.Context
	name    string
	mode    store.Mode
	ev      *Event
	s       *store.Store
	opts    options
	log     *Logger
	metrics MetricsCollector
	cache   cache.BlockCache
	closed  bool

	// write mode
	next uint64

	// read mode
	entries uint64
	state   readState
	cur     uint64
}

func (o *options) resourceController() *resource.Controller {
	if o.memoryLimitBytes <= 0 && o.ioLimitBytesPerSec <= 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimitBytes,
		IOLimitBytesPerSec: o.ioLimitBytesPerSec,
	})
}

// Create creates a file for writing the entries of ev. An existing file
// with the same name is replaced when Close succeeds; until then nothing
// is visible under name.
func Create(ctx context.Context, name string, ev *Event, optFns ...Option) (*File, error) {
	o := applyOptions(optFns)
	log := o.logger.WithFile(name, store.ModeWrite.String())

	if err := o.validate(); err != nil {
		log.LogOpen(ctx, 0, err)
		return nil, err
	}
	if err := ev.bindOutput(o.indexPath); err != nil {
		log.LogOpen(ctx, 0, err)
		return nil, err
	}

	sopts := append(slices.Clone(o.storeOptions), store.WithResourceController(o.resourceController()))
	s, err := store.Create(ctx, o.blobStore, name, sopts...)
	if err != nil {
		ev.unbindOutput(o.indexPath)
		err = translateError("create", name, err)
		log.LogOpen(ctx, 0, err)
		return nil, err
	}

	log.LogOpen(ctx, 0, nil)
	return &File{
		ctx:     ctx,
		name:    name,
		mode:    store.ModeWrite,
		ev:      ev,
		s:       s,
		opts:    o,
		log:     log,
		metrics: o.metricsCollector,
	}, nil
}

// Open opens an existing file for reading and attaches it to ev as input.
// No entry is loaded until the first call to Next.
func Open(ctx context.Context, name string, ev *Event, optFns ...Option) (*File, error) {
	o := applyOptions(optFns)
	log := o.logger.WithFile(name, store.ModeRead.String())

	if err := o.validate(); err != nil {
		log.LogOpen(ctx, 0, err)
		return nil, err
	}

	bs := o.blobStore
	var bc cache.BlockCache
	if o.readCacheBytes > 0 {
		bc = cache.NewLRUBlockCache(o.readCacheBytes, o.resourceController())
		bs = blobstore.NewCachingStore(bs, bc, 0)
	}
	fail := func(err error) (*File, error) {
		if bc != nil {
			_ = bc.Close()
		}
		log.LogOpen(ctx, 0, err)
		return nil, err
	}

	s, err := store.Open(ctx, bs, name, o.storeOptions...)
	if err != nil {
		return fail(translateError("open", name, err))
	}

	entries, err := countEntries(s, o.indexPath)
	if err != nil {
		_ = s.Close()
		return fail(&IOError{Op: "open", Name: name, cause: err})
	}

	if err := ev.bindInput(s, o.indexPath); err != nil {
		_ = s.Close()
		return fail(err)
	}

	log.LogOpen(ctx, int64(entries), nil) //nolint:gosec
	return &File{
		ctx:     ctx,
		name:    name,
		mode:    store.ModeRead,
		ev:      ev,
		s:       s,
		opts:    o,
		log:     log,
		metrics: o.metricsCollector,
		cache:   bc,
		entries: entries,
	}, nil
}

// countEntries returns the row count of the entry index column. A file
// without one holds no entries.
func countEntries(s *store.Store, indexPath string) (uint64, error) {
	ci, ok := s.Column(indexPath)
	if !ok {
		if s.Entries() != 0 {
			return 0, fmt.Errorf("%w: %d entries recorded but index column %q is missing", ErrCorrupted, s.Entries(), indexPath)
		}
		return 0, nil
	}
	if ci.DType != store.DTypeUint64 {
		return 0, fmt.Errorf("%w: index column %q holds %s", ErrCorrupted, indexPath, ci.DType)
	}
	if ci.Rows != s.Entries() {
		return 0, fmt.Errorf("%w: index column has %d rows, footer records %d entries", ErrCorrupted, ci.Rows, s.Entries())
	}
	return ci.Rows, nil
}

// Name returns the file name.
func (f *File) Name() string { return f.name }

// Mode returns store.ModeWrite or store.ModeRead.
func (f *File) Mode() store.Mode { return f.mode }

// Event returns the Event the file is bound to.
func (f *File) Event() *Event { return f.ev }

// Entries returns the number of entries in the file. For a file being
// written it is the number saved so far.
func (f *File) Entries() int64 {
	if f.mode == store.ModeWrite {
		return int64(f.next) //nolint:gosec
	}
	return int64(f.entries) //nolint:gosec
}

// Entry returns the current entry. When reading it is -1 before the first
// call to Next; when writing it is the entry the next call to Next saves.
func (f *File) Entry() int64 {
	if f.mode == store.ModeWrite {
		return int64(f.next) //nolint:gosec
	}
	if f.state == awaitingFirst {
		return -1
	}
	return int64(f.cur) //nolint:gosec
}

// Next moves to the next entry.
//
// When writing, it saves every value of the Event as the current entry and
// always reports true. When reading, it loads the next entry into the
// Event and reports false once all entries have been visited. A failed
// load returns the error and leaves the position unchanged.
func (f *File) Next() (bool, error) {
	if f.closed {
		return false, ErrClosed
	}
	if f.mode == store.ModeWrite {
		return f.advance(true)
	}
	return f.step()
}

// Advance ends the current entry. When writing and save is false, only
// the entry index is recorded and the values of the Event are skipped.
// When reading, save is ignored and Advance behaves like Next.
func (f *File) Advance(save bool) (bool, error) {
	if f.closed {
		return false, ErrClosed
	}
	if f.mode == store.ModeRead {
		return f.step()
	}
	return f.advance(save)
}

func (f *File) advance(save bool) (bool, error) {
	start := time.Now()
	row := f.next

	var err error
	if save {
		err = f.ev.save(f.s, row)
	}
	if err == nil {
		err = translateError("save", f.opts.indexPath, store.Write(f.s, f.opts.indexPath, row, row))
	}

	f.metrics.RecordSave(time.Since(start), err)
	f.log.LogEntry(f.ctx, int64(row), save, err) //nolint:gosec
	if err != nil {
		return false, err
	}
	f.next++
	return true, nil
}

func (f *File) step() (bool, error) {
	var row uint64
	switch f.state {
	case atEOF:
		return false, nil
	case awaitingFirst:
		row = 0
	case hasEntry:
		row = f.cur + 1
	}
	if row >= f.entries {
		f.state = atEOF
		return false, nil
	}

	start := time.Now()
	err := f.ev.load(row)
	f.metrics.RecordLoad(time.Since(start), err)
	f.log.LogEntry(f.ctx, int64(row), false, err) //nolint:gosec
	if err != nil {
		return false, err
	}
	f.state = hasEntry
	f.cur = row
	return true, nil
}

// Close finishes the file. A written file is committed; if any earlier
// write failed it is discarded instead and the failure is returned. The
// Event is detached in every case. Close is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.mode == store.ModeRead {
		f.ev.unbindInput(f.opts.indexPath)
		err := f.s.Close()
		if f.cache != nil {
			err = errors.Join(err, f.cache.Close())
		}
		err = translateError("close", f.name, err)
		f.log.LogClose(f.ctx, int64(f.entries), f.s.Size(), err) //nolint:gosec
		return err
	}

	defer f.ev.unbindOutput(f.opts.indexPath)

	start := time.Now()
	err := f.s.SetEntries(f.next)
	if err == nil {
		err = f.s.Close()
	} else {
		_ = f.s.Abort()
	}
	err = translateError("close", f.name, err)

	f.metrics.RecordFlush(f.s.Size(), time.Since(start), err)
	f.log.LogClose(f.ctx, int64(f.next), f.s.Size(), err) //nolint:gosec
	return err
}

// Abort discards a file being written. For a file being read it is Close.
func (f *File) Abort() error {
	if f.closed {
		return nil
	}
	if f.mode == store.ModeRead {
		return f.Close()
	}
	f.closed = true
	f.ev.unbindOutput(f.opts.indexPath)
	err := translateError("abort", f.name, f.s.Abort())
	f.log.LogClose(f.ctx, int64(f.next), 0, err) //nolint:gosec
	return err
}
