package corrsketch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/corrsketch/sketch"
)

type fixedSketch struct {
	hashes []uint64
	values []float64
}

func (s *fixedSketch) Family() sketch.Family { return sketch.FamilyKMV }
func (s *fixedSketch) Len() int              { return len(s.hashes) }
func (s *fixedSketch) Hashes() []uint64      { return s.hashes }
func (s *fixedSketch) Values() []float64     { return s.values }

func (s *fixedSketch) WithValues(values []float64) sketch.Structural {
	return &fixedSketch{hashes: s.hashes, values: values}
}

func (s *fixedSketch) InnerProduct(sketch.Sketch) (float64, error) { return 0, nil }

func TestRankMatch(t *testing.T) {
	tests := []struct {
		name    string
		a, b    *fixedSketch
		matched int
		want    float64
	}{
		{
			name:    "linear",
			a:       &fixedSketch{[]uint64{1, 2, 3, 4}, []float64{1, 2, 3, 4}},
			b:       &fixedSketch{[]uint64{2, 3, 4, 9}, []float64{20, 30, 40, 7}},
			matched: 3,
			want:    1,
		},
		{
			name:    "anti",
			a:       &fixedSketch{[]uint64{5, 6, 7}, []float64{1, 2, 3}},
			b:       &fixedSketch{[]uint64{7, 6, 5}, []float64{1, 2, 3}},
			matched: 3,
			want:    -1,
		},
		{
			name:    "single match",
			a:       &fixedSketch{[]uint64{1, 2}, []float64{1, 2}},
			b:       &fixedSketch{[]uint64{2, 3}, []float64{5, 6}},
			matched: 1,
			want:    math.NaN(),
		},
		{
			name:    "no match",
			a:       &fixedSketch{[]uint64{1}, []float64{1}},
			b:       &fixedSketch{[]uint64{2}, []float64{1}},
			matched: 0,
			want:    math.NaN(),
		},
		{
			name:    "constant values",
			a:       &fixedSketch{[]uint64{1, 2, 3}, []float64{1, 1, 1}},
			b:       &fixedSketch{[]uint64{1, 2, 3}, []float64{1, 2, 3}},
			matched: 3,
			want:    math.NaN(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := rankMatch(tt.a, tt.b)
			assert.Equal(t, tt.matched, matched)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got), "got %v", got)
				return
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
