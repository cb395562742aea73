package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/corrsketch/vector"
)

// RNG wraps a seeded random source. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// NormFloat64 returns a standard normal variate.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// SparseVector returns a vector of the given length with nnz standard normal
// entries at random positions.
func (r *RNG) SparseVector(length, nnz int) vector.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := make(vector.Vector, length)
	for _, i := range r.rand.Perm(length)[:nnz] {
		v[i] = nonZero(r.rand.NormFloat64())
	}
	return v
}

// SignVector returns a vector with nnz entries of ±1 at random positions.
func (r *RNG) SignVector(length, nnz int) vector.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := make(vector.Vector, length)
	for _, i := range r.rand.Perm(length)[:nnz] {
		if r.rand.Intn(2) == 0 {
			v[i] = 1
		} else {
			v[i] = -1
		}
	}
	return v
}

// DisjointPair returns two vectors with nnz entries each and no shared support.
// It panics if 2*nnz > length.
func (r *RNG) DisjointPair(length, nnz int) (vector.Vector, vector.Vector) {
	if 2*nnz > length {
		panic("testutil: supports cannot be disjoint")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a := make(vector.Vector, length)
	b := make(vector.Vector, length)
	perm := r.rand.Perm(length)
	for _, i := range perm[:nnz] {
		a[i] = nonZero(r.rand.NormFloat64())
	}
	for _, i := range perm[nnz : 2*nnz] {
		b[i] = nonZero(r.rand.NormFloat64())
	}
	return a, b
}

// CorrelatedPair returns two vectors on the same support of nnz entries whose
// values have correlation rho.
func (r *RNG) CorrelatedPair(length, nnz int, rho float64) (vector.Vector, vector.Vector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := make(vector.Vector, length)
	b := make(vector.Vector, length)
	s := math.Sqrt(1 - rho*rho)
	for _, i := range r.rand.Perm(length)[:nnz] {
		x := r.rand.NormFloat64()
		y := rho*x + s*r.rand.NormFloat64()
		a[i] = nonZero(x)
		b[i] = nonZero(y)
	}
	return a, b
}

// Shifted returns v with every nonzero entry offset by delta.
func Shifted(v vector.Vector, delta float64) vector.Vector {
	out := make(vector.Vector, len(v))
	v.NonZero(func(i int, x float64) { out[i] = nonZero(x + delta) })
	return out
}

func nonZero(x float64) float64 {
	if x == 0 {
		return math.SmallestNonzeroFloat64
	}
	return x
}
