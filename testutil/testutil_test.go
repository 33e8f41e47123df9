package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillUniform(t *testing.T) {
	rng := NewRNG(4711)

	v := make([]float32, 32)
	rng.FillUniform(v)

	for _, x := range v {
		assert.GreaterOrEqual(t, x, float32(0.0))
		assert.Less(t, x, float32(1.0))
	}
}

func TestFillUniformRange(t *testing.T) {
	rng := NewRNG(4711)

	v := make([]float64, 64)
	rng.FillUniformRange(v, -2, 3)

	for _, x := range v {
		assert.GreaterOrEqual(t, x, -2.0)
		assert.Less(t, x, 3.0)
	}
}

func TestGaussian(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Gaussian(10000, 50, 2)

	var sum float64
	for _, x := range v {
		sum += x
	}
	assert.InDelta(t, 50.0, sum/float64(len(v)), 0.2)
}

func TestString(t *testing.T) {
	rng := NewRNG(4711)

	s := rng.String(16)

	assert.Len(t, s, 16)
	for _, c := range s {
		assert.Contains(t, alphabet, string(c))
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.Gaussian(10, 0, 1)

	rng.Reset()
	v2 := rng.Gaussian(10, 0, 1)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestLengths(t *testing.T) {
	rng := NewRNG(42)

	lengths := rng.Lengths(10000, 32, 1.5)

	assert.Len(t, lengths, 10000)
	counts := make(map[int]int)
	for _, n := range lengths {
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 32)
		counts[n]++
	}

	// Short sequences dominate.
	assert.Greater(t, counts[0], counts[10])
	assert.Positive(t, counts[0])
}

func TestZipf(t *testing.T) {
	rng := NewRNG(7)

	counts := make([]int, 100)
	for range 5000 {
		k := rng.Zipf(100, 1.1)
		assert.GreaterOrEqual(t, k, 0)
		assert.Less(t, k, 100)
		counts[k]++
	}
	assert.Greater(t, counts[0], counts[1])
	assert.Greater(t, counts[1], counts[50])

	assert.Equal(t, 0, rng.Zipf(1, 1.1))
}

func TestSparseMask(t *testing.T) {
	rng := NewRNG(42)

	mask := rng.SparseMask(10000, 0.3)

	present := 0
	for _, ok := range mask {
		if ok {
			present++
		}
	}
	assert.InDelta(t, 0.7, float64(present)/float64(len(mask)), 0.05)
}
