package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the chunk compression algorithm.
type Compression uint8

const (
	// CompressionNone stores chunks as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZstd uses Zstandard (better ratio, honours the level).
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", c)
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("store: unknown compression %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Compression) UnmarshalText(text []byte) error {
	v, err := ParseCompression(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// compressor compresses chunk payloads. Safe for concurrent use.
type compressor struct {
	kind Compression
	enc  *zstd.Encoder
}

func newCompressor(kind Compression, level int) (*compressor, error) {
	c := &compressor{kind: kind}
	switch kind {
	case CompressionNone, CompressionLZ4:
	case CompressionZstd:
		opts := []zstd.EOption{zstd.WithEncoderConcurrency(1)}
		if level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		enc, err := zstd.NewWriter(nil, opts...)
		if err != nil {
			return nil, err
		}
		c.enc = enc
	default:
		return nil, fmt.Errorf("store: unknown compression %d", kind)
	}
	return c, nil
}

// compress returns the payload and the algorithm actually used. Chunks
// that do not shrink are stored uncompressed.
func (c *compressor) compress(raw []byte) ([]byte, Compression, error) {
	if len(raw) == 0 {
		return raw, CompressionNone, nil
	}

	var out []byte
	switch c.kind {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			return raw, CompressionNone, nil // incompressible
		}
		out = buf[:n]
	case CompressionZstd:
		out = c.enc.EncodeAll(raw, make([]byte, 0, len(raw)))
	default:
		return raw, CompressionNone, nil
	}

	if len(out) >= len(raw) {
		return raw, CompressionNone, nil
	}
	return out, c.kind, nil
}

func (c *compressor) close() {
	if c != nil && c.enc != nil {
		_ = c.enc.Close()
	}
}

var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
})

// decompress restores a chunk payload to rawLen bytes.
func decompress(payload []byte, kind Compression, rawLen int) ([]byte, error) {
	switch kind {
	case CompressionNone:
		if len(payload) != rawLen {
			return nil, corrupted("raw chunk is %d bytes, want %d", len(payload), rawLen)
		}
		return payload, nil
	case CompressionLZ4:
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, corrupted("lz4: %v", err)
		}
		if n != rawLen {
			return nil, corrupted("lz4 chunk is %d bytes, want %d", n, rawLen)
		}
		return out, nil
	case CompressionZstd:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, err
		}
		out, err := dec.DecodeAll(payload, make([]byte, 0, rawLen))
		if err != nil {
			return nil, corrupted("zstd: %v", err)
		}
		if len(out) != rawLen {
			return nil, corrupted("zstd chunk is %d bytes, want %d", len(out), rawLen)
		}
		return out, nil
	default:
		return nil, corrupted("unknown chunk compression %d", kind)
	}
}
