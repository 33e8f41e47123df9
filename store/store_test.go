package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/hupe1980/fire/blobstore"
	"github.com/hupe1980/fire/codec"
	"github.com/hupe1980/fire/internal/fs"
	"github.com/hupe1980/fire/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeReadRoundTrip[T Scalar](t *testing.T, vals []T, optFns ...Option) {
	t.Helper()
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	w, err := Create(ctx, bs, "rt.fire", optFns...)
	require.NoError(t, err)
	for i, v := range vals {
		require.NoError(t, Write(w, "col", uint64(i), v))
	}
	require.NoError(t, w.Close())

	r, err := Open(ctx, bs, "rt.fire")
	require.NoError(t, err)
	defer r.Close()

	rows, ok := r.Rows("col")
	require.True(t, ok)
	require.Equal(t, uint64(len(vals)), rows)

	for i, want := range vals {
		got, err := Read[T](r, "col", uint64(i))
		require.NoError(t, err)
		assert.Equal(t, want, got, "row %d", i)
	}
}

func TestRoundTripAllTypes(t *testing.T) {
	layouts := []struct {
		name string
		opts []Option
	}{
		{"none", []Option{WithCompression(CompressionNone, 0)}},
		{"lz4", []Option{WithCompression(CompressionLZ4, 0)}},
		{"zstd", []Option{WithCompression(CompressionZstd, 6)}},
		{"zstd-shuffle", []Option{WithCompression(CompressionZstd, 3), WithShuffle(true)}},
		{"json-codec", []Option{WithCodec(codec.JSON{})}},
	}

	for _, l := range layouts {
		opts := append([]Option{WithRowsPerChunk(7)}, l.opts...)
		t.Run(l.name, func(t *testing.T) {
			t.Run("bool", func(t *testing.T) { writeReadRoundTrip(t, []bool{true, false, true, true}, opts...) })
			t.Run("int8", func(t *testing.T) { writeReadRoundTrip(t, []int8{math.MinInt8, -1, 0, math.MaxInt8}, opts...) })
			t.Run("int16", func(t *testing.T) { writeReadRoundTrip(t, []int16{math.MinInt16, 0, math.MaxInt16}, opts...) })
			t.Run("int32", func(t *testing.T) { writeReadRoundTrip(t, []int32{math.MinInt32, 42, math.MaxInt32}, opts...) })
			t.Run("int64", func(t *testing.T) {
				vals := make([]int64, 100)
				for i := range vals {
					vals[i] = int64(i*i) - 33
				}
				writeReadRoundTrip(t, vals, opts...)
			})
			t.Run("uint8", func(t *testing.T) { writeReadRoundTrip(t, []uint8{0, 1, 255}, opts...) })
			t.Run("uint16", func(t *testing.T) { writeReadRoundTrip(t, []uint16{0, math.MaxUint16}, opts...) })
			t.Run("uint32", func(t *testing.T) { writeReadRoundTrip(t, []uint32{0, math.MaxUint32}, opts...) })
			t.Run("uint64", func(t *testing.T) { writeReadRoundTrip(t, []uint64{0, math.MaxUint64, 7}, opts...) })
			t.Run("float32", func(t *testing.T) { writeReadRoundTrip(t, []float32{-1.5, 0, math.MaxFloat32}, opts...) })
			t.Run("float64", func(t *testing.T) {
				vals := make([]float64, 50)
				for i := range vals {
					vals[i] = float64(i) * 0.25
				}
				writeReadRoundTrip(t, vals, opts...)
			})
			t.Run("string", func(t *testing.T) {
				writeReadRoundTrip(t, []string{"", "a", "hello world", "ünïcödé", "", "x"}, opts...)
			})
		})
	}
}

func TestGapRowsAreAbsent(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	w, err := Create(ctx, bs, "gap.fire", WithRowsPerChunk(4))
	require.NoError(t, err)
	require.NoError(t, Write(w, "x", 1, int32(10)))
	require.NoError(t, Write(w, "x", 9, int32(90)))
	require.NoError(t, w.Close())

	r, err := Open(ctx, bs, "gap.fire")
	require.NoError(t, err)
	defer r.Close()

	info, ok := r.Column("x")
	require.True(t, ok)
	assert.Equal(t, uint64(10), info.Rows)
	assert.Equal(t, uint64(2), info.Present)
	assert.Equal(t, 3, info.Chunks)

	v, err := Read[int32](r, "x", 9)
	require.NoError(t, err)
	assert.Equal(t, int32(90), v)

	for _, row := range []uint64{0, 2, 5, 8, 10, 100} {
		_, err := Read[int32](r, "x", row)
		assert.ErrorIs(t, err, ErrNotFound, "row %d", row)
	}

	_, err = Read[int32](r, "missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOverwriteAndCommittedRows(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	w, err := Create(ctx, bs, "ow.fire", WithRowsPerChunk(2))
	require.NoError(t, err)

	require.NoError(t, Write(w, "s", 0, "first"))
	require.NoError(t, Write(w, "s", 0, "second"))
	require.NoError(t, Write(w, "s", 1, "b"))
	require.NoError(t, Write(w, "s", 2, "c")) // flushes rows 0-1

	err = Write(w, "s", 1, "late")
	require.ErrorIs(t, err, ErrRowCommitted)

	require.NoError(t, w.Close())

	r, err := Open(ctx, bs, "ow.fire")
	require.NoError(t, err)
	defer r.Close()

	v, err := Read[string](r, "s", 0)
	require.NoError(t, err)
	assert.Equal(t, "second", v)
	v, err = Read[string](r, "s", 1)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestTypeMismatch(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	w, err := Create(ctx, bs, "tm.fire")
	require.NoError(t, err)
	require.NoError(t, Write(w, "d", 0, 1.0))

	err = Write(w, "d", 1, int64(1))
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, DTypeFloat64, tm.Stored)
	assert.Equal(t, DTypeInt64, tm.Requested)
	require.NoError(t, w.Close())

	r, err := Open(ctx, bs, "tm.fire")
	require.NoError(t, err)
	defer r.Close()

	_, err = Read[float32](r, "d", 0)
	require.ErrorAs(t, err, &tm)

	v, err := ReadAny(r, "d", 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestModeViolation(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	w, err := Create(ctx, bs, "m.fire")
	require.NoError(t, err)
	assert.Equal(t, ModeWrite, w.Mode())

	require.NoError(t, Write(w, "a", 0, uint8(1)))
	_, err = Read[uint8](w, "a", 0)
	require.ErrorIs(t, err, ErrModeViolation)
	require.NoError(t, w.Close())

	r, err := Open(ctx, bs, "m.fire")
	require.NoError(t, err)
	assert.Equal(t, ModeRead, r.Mode())
	require.ErrorIs(t, Write(r, "a", 1, uint8(2)), ErrModeViolation)
	require.ErrorIs(t, r.SetEntries(3), ErrModeViolation)
	require.NoError(t, r.Close())

	_, err = Read[uint8](r, "a", 0)
	require.ErrorIs(t, err, ErrClosed)
	require.NoError(t, r.Close())
}

func TestInvisibleUntilClose(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	w, err := Create(ctx, bs, "v.fire")
	require.NoError(t, err)
	require.NoError(t, Write(w, "a", 0, true))

	_, err = Open(ctx, bs, "v.fire")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, w.SetEntries(1))
	require.NoError(t, w.Close())

	r, err := Open(ctx, bs, "v.fire")
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, uint64(1), r.Entries())
	assert.Equal(t, []string{"a"}, r.Paths())
}

func TestAbortDiscards(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	w, err := Create(ctx, bs, "ab.fire")
	require.NoError(t, err)
	require.NoError(t, Write(w, "a", 0, 1.0))
	require.NoError(t, w.Abort())
	require.ErrorIs(t, Write(w, "a", 1, 2.0), ErrClosed)

	_, ok := bs.Bytes("ab.fire")
	assert.False(t, ok)
}

func TestColumnsInCreationOrder(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	w, err := Create(ctx, bs, "o.fire")
	require.NoError(t, err)
	for i, p := range []string{"z", "a", "m/begin", "m/end"} {
		require.NoError(t, Write(w, p, uint64(i), uint64(i)))
	}
	require.NoError(t, w.Close())

	r, err := Open(ctx, bs, "o.fire")
	require.NoError(t, err)
	defer r.Close()

	var paths []string
	for _, c := range r.Columns() {
		paths = append(paths, c.Path)
		assert.Equal(t, DTypeUint64, c.DType)
	}
	assert.Equal(t, []string{"z", "a", "m/begin", "m/end"}, paths)
	assert.True(t, r.Has("m/end"))
	assert.False(t, r.Has("m"))
}

func TestCorruption(t *testing.T) {
	ctx := context.Background()

	build := func(t *testing.T) (*blobstore.MemoryStore, []byte) {
		bs := blobstore.NewMemoryStore()
		w, err := Create(ctx, bs, "c.fire", WithCompression(CompressionNone, 0))
		require.NoError(t, err)
		for i := range 10 {
			require.NoError(t, Write(w, "x", uint64(i), int64(i)))
		}
		require.NoError(t, w.Close())
		data, ok := bs.Bytes("c.fire")
		require.True(t, ok)
		return bs, data
	}

	t.Run("chunk", func(t *testing.T) {
		bs, data := build(t)
		data[PreambleSize] ^= 0xFF
		bs.Put("c.fire", data)

		r, err := Open(ctx, bs, "c.fire")
		require.NoError(t, err)
		defer r.Close()

		_, err = Read[int64](r, "x", 0)
		var cm *ChecksumMismatchError
		require.ErrorAs(t, err, &cm)
		assert.ErrorIs(t, err, ErrCorrupted)
	})

	t.Run("footer", func(t *testing.T) {
		bs, data := build(t)
		data[len(data)-FooterSize+20] ^= 0x01
		bs.Put("c.fire", data)

		_, err := Open(ctx, bs, "c.fire")
		assert.ErrorIs(t, err, ErrCorrupted)
	})

	t.Run("directory", func(t *testing.T) {
		bs, data := build(t)
		data[len(data)-FooterSize-2] ^= 0x01
		bs.Put("c.fire", data)

		_, err := Open(ctx, bs, "c.fire")
		assert.ErrorIs(t, err, ErrCorrupted)
	})

	t.Run("magic", func(t *testing.T) {
		bs, data := build(t)
		data[0] = 'X'
		bs.Put("c.fire", data)

		_, err := Open(ctx, bs, "c.fire")
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("truncated", func(t *testing.T) {
		bs := blobstore.NewMemoryStore()
		bs.Put("c.fire", []byte("FIRE"))

		_, err := Open(ctx, bs, "c.fire")
		assert.ErrorIs(t, err, ErrCorrupted)
	})
}

func TestWriteFailureDiscardsFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule("broken", fs.Fault{FailAfterBytes: 64})
	bs := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(faulty))

	w, err := Create(ctx, bs, "broken.fire", WithRowsPerChunk(4), WithCompression(CompressionNone, 0))
	require.NoError(t, err)

	var writeErr error
	for i := range 64 {
		if writeErr = Write(w, "x", uint64(i), int64(i)); writeErr != nil {
			break
		}
	}
	require.ErrorIs(t, writeErr, fs.ErrInjected)
	require.ErrorIs(t, Write(w, "x", 100, int64(1)), fs.ErrInjected)

	require.ErrorIs(t, w.Close(), fs.ErrInjected)

	names, err := bs.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestResourceControllerThrottlesWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bs := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 16})

	w, err := Create(ctx, bs, "rc.fire", WithResourceController(rc), WithCompression(CompressionNone, 0), WithRowsPerChunk(64))
	require.NoError(t, err)
	for i := range 64 {
		require.NoError(t, Write(w, "x", uint64(i), int64(i)))
	}

	cancel()
	// The pending 512-byte chunk cannot be flushed at 16 B/s once the context is gone.
	err = w.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), fmt.Sprint(err))

	_, ok := bs.Bytes("rc.fire")
	assert.False(t, ok)
}

func TestOptionsValidate(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	_, err := Create(ctx, bs, "x", WithRowsPerChunk(0))
	assert.Error(t, err)
	_, err = Create(ctx, bs, "x", WithCompression(CompressionZstd, 99))
	assert.Error(t, err)
	_, err = Create(ctx, bs, "x", WithCompression(Compression(7), 0))
	assert.Error(t, err)
}
