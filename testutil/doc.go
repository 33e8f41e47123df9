// Package testutil provides testing utilities for fire.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random source for generating event
// data with realistic shapes.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	energies := rng.Gaussian(100, 50, 5)  // normal around 50
//	lengths := rng.Lengths(100, 32, 1.2)  // skewed vector lengths
//	mask := rng.SparseMask(100, 0.3)      // ~30% missing
package testutil
