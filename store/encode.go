package store

import (
	"encoding/binary"
)

// appendValues encodes vals to dst. Fixed-width types are little-endian;
// strings are uvarint length prefixed.
func appendValues[T Scalar](dst []byte, vals []T) []byte {
	if ss, ok := any(vals).([]string); ok {
		for _, s := range ss {
			dst = binary.AppendUvarint(dst, uint64(len(s)))
			dst = append(dst, s...)
		}
		return dst
	}
	out, err := binary.Append(dst, binary.LittleEndian, vals)
	if err != nil {
		// Scalar only admits fixed-size types here.
		panic(err)
	}
	return out
}

// decodeValues decodes n values of T from src.
func decodeValues[T Scalar](src []byte, n int) ([]T, error) {
	vals := make([]T, n)
	if ss, ok := any(vals).([]string); ok {
		for i := range ss {
			l, k := binary.Uvarint(src)
			if k <= 0 || l > uint64(len(src)-k) {
				return nil, corrupted("string value %d of %d truncated", i, n)
			}
			end := k + int(l) //nolint:gosec
			ss[i] = string(src[k:end])
			src = src[end:]
		}
		if len(src) != 0 {
			return nil, corrupted("%d trailing bytes after string chunk", len(src))
		}
		return vals, nil
	}
	width := DTypeOf[T]().Width()
	if len(src) != n*width {
		return nil, corrupted("chunk holds %d bytes, want %d", len(src), n*width)
	}
	if _, err := binary.Decode(src, binary.LittleEndian, vals); err != nil {
		return nil, corrupted("decode: %v", err)
	}
	return vals, nil
}

// shuffle transposes src so that byte k of every value is stored
// contiguously. Numeric columns compress better that way.
func shuffle(src []byte, width int) []byte {
	if width <= 1 || len(src)%width != 0 {
		return src
	}
	n := len(src) / width
	dst := make([]byte, len(src))
	for i := 0; i < n; i++ {
		for b := 0; b < width; b++ {
			dst[b*n+i] = src[i*width+b]
		}
	}
	return dst
}

// unshuffle reverses shuffle.
func unshuffle(src []byte, width int) []byte {
	if width <= 1 || len(src)%width != 0 {
		return src
	}
	n := len(src) / width
	dst := make([]byte, len(src))
	for i := 0; i < n; i++ {
		for b := 0; b < width; b++ {
			dst[i*width+b] = src[b*n+i]
		}
	}
	return dst
}

// pendingBuf is the in-memory tail chunk of a write-mode column.
type pendingBuf interface {
	len() int
	fill(n int)
	encode(dst []byte) []byte
	reset()
}

type typedBuf[T Scalar] struct {
	vals []T
}

func newTypedBuf[T Scalar](capacity int) *typedBuf[T] {
	return &typedBuf[T]{vals: make([]T, 0, capacity)}
}

func (b *typedBuf[T]) len() int { return len(b.vals) }

// fill extends the buffer with zero values up to n rows.
func (b *typedBuf[T]) fill(n int) {
	var zero T
	for len(b.vals) < n {
		b.vals = append(b.vals, zero)
	}
}

func (b *typedBuf[T]) set(i int, v T) {
	b.fill(i + 1)
	b.vals[i] = v
}

func (b *typedBuf[T]) encode(dst []byte) []byte { return appendValues(dst, b.vals) }

func (b *typedBuf[T]) reset() {
	clear(b.vals)
	b.vals = b.vals[:0]
}
