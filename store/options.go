package store

import (
	"fmt"

	"github.com/hupe1980/fire/codec"
	"github.com/hupe1980/fire/internal/resource"
)

// DefaultRowsPerChunk is the default number of rows per chunk.
const DefaultRowsPerChunk = 1024

// Options configures a Store. Only the codec and resource controller
// matter when reading; the layout is taken from the container itself.
type Options struct {
	// RowsPerChunk is the number of rows compressed together.
	RowsPerChunk int

	// Compression is the chunk compression algorithm.
	Compression Compression

	// CompressionLevel is the zstd level (1-22). 0 selects the default.
	CompressionLevel int

	// Shuffle byte-shuffles fixed-width chunks before compression.
	Shuffle bool

	// Codec encodes the directory.
	Codec codec.Codec

	// ResourceController throttles chunk writes. Nil means unlimited.
	ResourceController *resource.Controller
}

// DefaultOptions returns the default write options.
func DefaultOptions() Options {
	return Options{
		RowsPerChunk: DefaultRowsPerChunk,
		Compression:  CompressionLZ4,
		Codec:        codec.Default,
	}
}

// Validate checks option consistency.
func (o Options) Validate() error {
	if o.RowsPerChunk <= 0 {
		return fmt.Errorf("%w: rows per chunk must be positive, got %d", ErrInvalidOptions, o.RowsPerChunk)
	}
	if o.Compression > CompressionZstd {
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidOptions, o.Compression)
	}
	if o.CompressionLevel < 0 || o.CompressionLevel > 22 {
		return fmt.Errorf("%w: compression level %d out of range [0,22]", ErrInvalidOptions, o.CompressionLevel)
	}
	if o.Codec != nil && len(o.Codec.Name()) > codec.MaxNameLen {
		return fmt.Errorf("%w: codec name %q longer than %d bytes", ErrInvalidOptions, o.Codec.Name(), codec.MaxNameLen)
	}
	return nil
}

// Option configures a Store.
type Option func(*Options)

// WithRowsPerChunk sets the chunk size in rows.
func WithRowsPerChunk(n int) Option {
	return func(o *Options) {
		o.RowsPerChunk = n
	}
}

// WithCompression sets the chunk compression and level.
func WithCompression(c Compression, level int) Option {
	return func(o *Options) {
		o.Compression = c
		o.CompressionLevel = level
	}
}

// WithShuffle enables byte shuffling of fixed-width chunks.
func WithShuffle(enabled bool) Option {
	return func(o *Options) {
		o.Shuffle = enabled
	}
}

// WithCodec sets the directory codec.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) {
		if c != nil {
			o.Codec = c
		}
	}
}

// WithResourceController sets the IO throttle.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *Options) {
		o.ResourceController = rc
	}
}
