package sketch

import (
	"math"

	"github.com/hupe1980/corrsketch/internal/hash"
	"github.com/hupe1980/corrsketch/vector"
)

// JL is a Johnson-Lindenstrauss random projection with ±1/√k entries.
type JL struct {
	seed uint64
	data []float64
}

func sketchJL(v vector.Vector, rowSeeds []uint64, seed uint64) *JL {
	k := len(rowSeeds)
	data := make([]float64, k)
	v.NonZero(func(i int, x float64) {
		key := uint64(i)
		for r, rs := range rowSeeds {
			data[r] += hash.Sign(rs, key) * x
		}
	})
	scale := 1 / math.Sqrt(float64(k))
	for r := range data {
		data[r] *= scale
	}
	return &JL{seed: seed, data: data}
}

// Family implements Sketch.
func (s *JL) Family() Family { return FamilyJL }

// Len implements Sketch.
func (s *JL) Len() int { return len(s.data) }

// InnerProduct implements Sketch.
func (s *JL) InnerProduct(other Sketch) (float64, error) {
	o, ok := other.(*JL)
	if !ok {
		return 0, incompatible(FamilyJL, "peer is %s", other.Family())
	}
	if o.seed != s.seed || len(o.data) != len(s.data) {
		return 0, incompatible(FamilyJL, "projection mismatch (k=%d vs %d)", len(s.data), len(o.data))
	}
	var sum float64
	for r, x := range s.data {
		sum += x * o.data[r]
	}
	return sum, nil
}
