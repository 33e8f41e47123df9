package fire

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hupe1980/fire/blobstore"
	"github.com/hupe1980/fire/codec"
	"github.com/hupe1980/fire/store"
)

// DefaultIndexPath is the column that records the entry number of every
// saved entry. Its row count is the entry count of the file.
const DefaultIndexPath = "_index"

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	blobStore        blobstore.BlobStore
	storeOptions     []store.Option
	indexPath        string

	memoryLimitBytes   int64
	ioLimitBytesPerSec int64
	readCacheBytes     int64
	mmap               bool
}

// Option configures Create and Open.
type Option func(*options)

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		indexPath:        DefaultIndexPath,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.blobStore == nil {
		o.blobStore = blobstore.NewLocalStore("", blobstore.WithMmap(o.mmap))
	}
	return o
}

// validate checks the options the store does not see. The index column
// shares the namespace of top-level event names, so it follows the same
// naming rule.
func (o *options) validate() error {
	if o.indexPath == "" || strings.Contains(o.indexPath, "/") {
		return fmt.Errorf("%w: index path %q must be non-empty and must not contain '/'", ErrInvalidOptions, o.indexPath)
	}
	return nil
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel installs a text logger on stderr with the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets the metrics collector.
// If nil is passed, metrics are disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithBlobStore sets where files live. By default names are paths on the
// local filesystem.
func WithBlobStore(bs blobstore.BlobStore) Option {
	return func(o *options) {
		o.blobStore = bs
	}
}

// WithRowsPerChunk sets how many rows each column buffers before a chunk
// is compressed and written. Only used by Create.
func WithRowsPerChunk(n int) Option {
	return func(o *options) {
		o.storeOptions = append(o.storeOptions, store.WithRowsPerChunk(n))
	}
}

// WithCompression sets the chunk compression and its level. The level is
// only meaningful for zstd (1-22, 0 picks the default). Only used by Create.
func WithCompression(c store.Compression, level int) Option {
	return func(o *options) {
		o.storeOptions = append(o.storeOptions, store.WithCompression(c, level))
	}
}

// WithShuffle enables byte shuffling of numeric chunks before compression.
// Only used by Create.
func WithShuffle(enabled bool) Option {
	return func(o *options) {
		o.storeOptions = append(o.storeOptions, store.WithShuffle(enabled))
	}
}

// WithCodec sets the codec for the file directory.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.storeOptions = append(o.storeOptions, store.WithCodec(c))
	}
}

// WithIndexPath overrides the entry index column path. Reader and writer
// must agree on it. The path must be non-empty and must not contain '/';
// Create and Open fail with ErrInvalidOptions otherwise.
func WithIndexPath(path string) Option {
	return func(o *options) {
		o.indexPath = path
	}
}

// WithResourceLimits bounds the memory used by the read cache and the
// write throughput of Close. Zero means unlimited.
func WithResourceLimits(memoryBytes, ioBytesPerSec int64) Option {
	return func(o *options) {
		o.memoryLimitBytes = memoryBytes
		o.ioLimitBytesPerSec = ioBytesPerSec
	}
}

// WithReadCache enables an in-memory LRU block cache of the given
// capacity in front of the blob store. Only used by Open.
func WithReadCache(capacityBytes int64) Option {
	return func(o *options) {
		o.readCacheBytes = capacityBytes
	}
}

// WithMmap memory-maps local files for reading. It has no effect when a
// blob store is set with WithBlobStore.
func WithMmap(enabled bool) Option {
	return func(o *options) {
		o.mmap = enabled
	}
}
