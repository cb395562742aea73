package sketch

import (
	"slices"

	"github.com/hupe1980/corrsketch/internal/hash"
	"github.com/hupe1980/corrsketch/vector"
)

// KMV keeps the k nonzero coordinates with the smallest hashes, together with
// their values, in ascending hash order.
type KMV struct {
	seed   uint64
	k      int
	tau    float64 // unit value of the k-th hash, 1 when every coordinate is kept
	hashes []uint64
	values []float64
}

func sketchKMV(v vector.Vector, k int, seed uint64) *KMV {
	var hashes []uint64
	var values []float64
	v.NonZero(func(i int, x float64) {
		hashes = append(hashes, hash.Key(seed, uint64(i)))
		values = append(values, x)
	})
	sortEntries(hashes, values)

	tau := 1.0
	if len(hashes) > k {
		hashes, values = hashes[:k], values[:k]
		tau = hash.ToUnit(hashes[k-1])
	}
	return &KMV{
		seed:   seed,
		k:      k,
		tau:    tau,
		hashes: slices.Clip(hashes),
		values: slices.Clip(values),
	}
}

// Family implements Sketch.
func (s *KMV) Family() Family { return FamilyKMV }

// Len implements Sketch.
func (s *KMV) Len() int { return len(s.hashes) }

// Hashes implements Structural.
func (s *KMV) Hashes() []uint64 { return s.hashes }

// Values implements Structural.
func (s *KMV) Values() []float64 { return s.values }

// WithValues implements Structural.
func (s *KMV) WithValues(values []float64) Structural {
	mustSameLen(len(values), len(s.hashes))
	return &KMV{seed: s.seed, k: s.k, tau: s.tau, hashes: s.hashes, values: values}
}

// InnerProduct implements Sketch. Shared coordinates whose hash lies below the
// smaller of the two k-th hashes form a uniform sample of the union; their
// products are scaled by the inverse sampling rate.
func (s *KMV) InnerProduct(other Sketch) (float64, error) {
	o, ok := other.(*KMV)
	if !ok {
		return 0, incompatible(FamilyKMV, "peer is %s", other.Family())
	}
	if o.seed != s.seed || o.k != s.k {
		return 0, incompatible(FamilyKMV, "parameter mismatch (k=%d vs %d)", s.k, o.k)
	}
	tau := min(s.tau, o.tau)
	var sum float64
	joinSorted(s.hashes, o.hashes, func(i, j int) {
		if hash.ToUnit(s.hashes[i]) <= tau {
			sum += s.values[i] * o.values[j]
		}
	})
	return sum / tau, nil
}
