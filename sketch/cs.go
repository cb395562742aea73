package sketch

import (
	"github.com/hupe1980/corrsketch/internal/hash"
	"github.com/hupe1980/corrsketch/vector"
)

// CountSketch hashes every coordinate into one signed bucket per row.
// The inner-product estimate is the median of the per-row bucket dot products.
type CountSketch struct {
	seed  uint64
	width int
	rows  [][]float64
}

type csRow struct {
	bucketSeed uint64
	signSeed   uint64
}

func sketchCS(v vector.Vector, rows []csRow, width int, seed uint64) *CountSketch {
	table := make([][]float64, len(rows))
	for r := range table {
		table[r] = make([]float64, width)
	}
	v.NonZero(func(i int, x float64) {
		key := uint64(i)
		for r, row := range rows {
			b := hash.Key(row.bucketSeed, key) % uint64(width)
			table[r][b] += hash.Sign(row.signSeed, key) * x
		}
	})
	return &CountSketch{seed: seed, width: width, rows: table}
}

// Family implements Sketch.
func (s *CountSketch) Family() Family { return FamilyCS }

// Len implements Sketch.
func (s *CountSketch) Len() int { return len(s.rows) * s.width }

// Rows returns the number of independent rows.
func (s *CountSketch) Rows() int { return len(s.rows) }

// InnerProduct implements Sketch.
func (s *CountSketch) InnerProduct(other Sketch) (float64, error) {
	o, ok := other.(*CountSketch)
	if !ok {
		return 0, incompatible(FamilyCS, "peer is %s", other.Family())
	}
	if o.seed != s.seed || o.width != s.width || len(o.rows) != len(s.rows) {
		return 0, incompatible(FamilyCS, "shape mismatch (%dx%d vs %dx%d)",
			len(s.rows), s.width, len(o.rows), o.width)
	}
	est := make([]float64, len(s.rows))
	for r, row := range s.rows {
		var sum float64
		for b, x := range row {
			sum += x * o.rows[r][b]
		}
		est[r] = sum
	}
	return median(est), nil
}
