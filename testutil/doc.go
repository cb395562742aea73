// Package testutil provides fixtures for corrsketch tests.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and helpers for sparse vector pairs
// with known structure (identical, disjoint, fully overlapping).
//
//	rng := testutil.NewRNG(seed)
//	a := rng.SparseVector(2000, 200)
//	a, b := rng.DisjointPair(2000, 200)
package testutil
