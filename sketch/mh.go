package sketch

import (
	"math"

	"github.com/hupe1980/corrsketch/internal/hash"
	"github.com/hupe1980/corrsketch/vector"
)

// MinHash keeps, for each of k independent hash functions, the nonzero
// coordinate with the smallest hash and its value.
type MinHash struct {
	seed   uint64
	k      int
	hashes []uint64 // per slot; empty when the vector has no nonzero entry
	values []float64
}

func sketchMH(v vector.Vector, slotSeeds []uint64, seed uint64) *MinHash {
	k := len(slotSeeds)
	s := &MinHash{seed: seed, k: k}
	if v.NNZ() == 0 {
		return s
	}
	s.hashes = make([]uint64, k)
	s.values = make([]float64, k)
	for r := range s.hashes {
		s.hashes[r] = math.MaxUint64
	}
	v.NonZero(func(i int, x float64) {
		key := uint64(i)
		for r, ss := range slotSeeds {
			if h := hash.Key(ss, key); h < s.hashes[r] {
				s.hashes[r] = h
				s.values[r] = x
			}
		}
	})
	return s
}

// Family implements Sketch.
func (s *MinHash) Family() Family { return FamilyMH }

// Len implements Sketch.
func (s *MinHash) Len() int { return len(s.hashes) }

// Hashes implements Structural. Hashes are per slot, not sorted.
func (s *MinHash) Hashes() []uint64 { return s.hashes }

// Values implements Structural.
func (s *MinHash) Values() []float64 { return s.values }

// WithValues implements Structural.
func (s *MinHash) WithValues(values []float64) Structural {
	mustSameLen(len(values), len(s.hashes))
	return &MinHash{seed: s.seed, k: s.k, hashes: s.hashes, values: values}
}

// InnerProduct implements Sketch. Matching slots sample the intersection
// uniformly at rate |A∩B|/|A∪B|; the union size is estimated from the slot minima.
func (s *MinHash) InnerProduct(other Sketch) (float64, error) {
	o, ok := other.(*MinHash)
	if !ok {
		return 0, incompatible(FamilyMH, "peer is %s", other.Family())
	}
	if o.seed != s.seed || o.k != s.k {
		return 0, incompatible(FamilyMH, "parameter mismatch (k=%d vs %d)", s.k, o.k)
	}
	if len(s.hashes) == 0 || len(o.hashes) == 0 {
		return 0, nil
	}
	var minSum, matched float64
	for r, ha := range s.hashes {
		hb := o.hashes[r]
		minSum += hash.ToUnit(min(ha, hb))
		if ha == hb {
			matched += s.values[r] * o.values[r]
		}
	}
	union := math.Max(float64(s.k)/minSum-1, 1)
	return union * matched / float64(s.k), nil
}
