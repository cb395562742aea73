package sketch

import (
	"math"

	"github.com/hupe1980/corrsketch/internal/hash"
	"github.com/hupe1980/corrsketch/vector"
)

// WeightedMinHash samples one coordinate per slot with improved consistent
// weighted sampling (ICWS) over the normalized squared values. Two slots agree
// with probability equal to the weighted Jaccard similarity of the normalized
// weights, and an agreeing slot picks coordinate i with probability
// min(ã²ᵢ, b̃²ᵢ) / Σ max(ã², b̃²).
type WeightedMinHash struct {
	seed   uint64
	k      int
	norm   float64
	keys   []uint64 // coordinate hash per slot
	levels []int64  // ICWS level per slot
	values []float64
}

func sketchWMH(v vector.Vector, slotSeeds []uint64, seed uint64) *WeightedMinHash {
	k := len(slotSeeds)
	s := &WeightedMinHash{seed: seed, k: k, norm: v.Norm()}
	if s.norm == 0 {
		return s
	}
	total := s.norm * s.norm
	s.keys = make([]uint64, k)
	s.levels = make([]int64, k)
	s.values = make([]float64, k)
	best := make([]float64, k)
	for r := range best {
		best[r] = math.Inf(1)
	}
	v.NonZero(func(i int, x float64) {
		key := uint64(i)
		logW := math.Log(x * x / total)
		for r, ss := range slotSeeds {
			h := hash.Key(ss, key)
			g := -math.Log(hash.ToUnit(hash.Stream(h, 0)) * hash.ToUnit(hash.Stream(h, 1)))
			c := -math.Log(hash.ToUnit(hash.Stream(h, 2)) * hash.ToUnit(hash.Stream(h, 3)))
			beta := hash.ToUnit(hash.Stream(h, 4))
			t := math.Floor(logW/g + beta)
			y := math.Exp(g * (t - beta))
			a := c / (y * math.Exp(g))
			if a < best[r] {
				best[r] = a
				s.keys[r] = hash.Key(seed, key)
				s.levels[r] = int64(t)
				s.values[r] = x
			}
		}
	})
	return s
}

// Family implements Sketch.
func (s *WeightedMinHash) Family() Family { return FamilyWMH }

// Len implements Sketch.
func (s *WeightedMinHash) Len() int { return len(s.keys) }

// InnerProduct implements Sketch.
func (s *WeightedMinHash) InnerProduct(other Sketch) (float64, error) {
	o, ok := other.(*WeightedMinHash)
	if !ok {
		return 0, incompatible(FamilyWMH, "peer is %s", other.Family())
	}
	if o.seed != s.seed || o.k != s.k {
		return 0, incompatible(FamilyWMH, "parameter mismatch (k=%d vs %d)", s.k, o.k)
	}
	if len(s.keys) == 0 || len(o.keys) == 0 {
		return 0, nil
	}
	var matches int
	var sum float64
	for r := range s.keys {
		if s.keys[r] != o.keys[r] || s.levels[r] != o.levels[r] {
			continue
		}
		matches++
		wa := s.values[r] * s.values[r] / (s.norm * s.norm)
		wb := o.values[r] * o.values[r] / (o.norm * o.norm)
		sum += s.values[r] * o.values[r] / min(wa, wb)
	}
	if matches == 0 {
		return 0, nil
	}
	jaccard := float64(matches) / float64(s.k)
	maxMass := 2 / (1 + jaccard)
	return maxMass * sum / float64(s.k), nil
}
