package sketch

import (
	"fmt"

	"github.com/hupe1980/corrsketch/internal/hash"
	"github.com/hupe1980/corrsketch/vector"
)

// Sketcher builds comparable sketches of one family with fixed random choices.
type Sketcher interface {
	// Family returns the family this sketcher builds.
	Family() Family

	// SketchSize returns the configured size (slots, counters, or samples).
	SketchSize() int

	// Sketch summarizes v.
	Sketch(v vector.Vector) (Sketch, error)
}

// NewSketcher returns a sketcher for family f sized from sizes.
// t is the number of count-sketch rows and is ignored by other families.
func NewSketcher(sizes Sizes, f Family, t int, seed uint64) (Sketcher, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFamily, uint8(f))
	}
	k := sizes.For(f)
	if k <= 0 {
		return nil, fmt.Errorf("%w: %s size %d", ErrInvalidSize, f, k)
	}
	s := &sketcher{family: f, size: k, seed: seed}
	switch f {
	case FamilyJL, FamilyMH, FamilyWMH:
		s.seeds = make([]uint64, k)
		for i := range s.seeds {
			s.seeds[i] = hash.Derive(seed, i)
		}
	case FamilyCS:
		if t <= 0 || k/t == 0 {
			return nil, fmt.Errorf("%w: count sketch %d counters over %d rows", ErrInvalidSize, k, t)
		}
		s.width = k / t
		s.rows = make([]csRow, t)
		for r := range s.rows {
			s.rows[r] = csRow{bucketSeed: hash.Derive(seed, 2*r), signSeed: hash.Derive(seed, 2*r+1)}
		}
	}
	return s, nil
}

type sketcher struct {
	family Family
	size   int
	seed   uint64
	seeds  []uint64 // per row or slot
	rows   []csRow
	width  int
}

func (s *sketcher) Family() Family { return s.family }

func (s *sketcher) SketchSize() int {
	if s.family == FamilyCS {
		return len(s.rows) * s.width
	}
	return s.size
}

func (s *sketcher) Sketch(v vector.Vector) (Sketch, error) {
	if !v.Finite() {
		return nil, ErrInvalidVector
	}
	switch s.family {
	case FamilyJL:
		return sketchJL(v, s.seeds, s.seed), nil
	case FamilyCS:
		return sketchCS(v, s.rows, s.width, s.seed), nil
	case FamilyWMH:
		return sketchWMH(v, s.seeds, s.seed), nil
	case FamilyKMV:
		return sketchKMV(v, s.size, s.seed), nil
	case FamilyMH:
		return sketchMH(v, s.seeds, s.seed), nil
	case FamilyPS:
		return sketchPS(v, s.size, s.seed), nil
	case FamilyTS:
		return sketchTS(v, s.size, s.seed), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFamily, uint8(s.family))
	}
}
