package sketch

import (
	"sort"

	"github.com/hupe1980/corrsketch/internal/hash"
	"github.com/hupe1980/corrsketch/vector"
)

// Sample is a coordinated weighted sample of nonzero entries, weighted by the
// squared value. Coordinates share one uniform variate across vectors, so the
// probability that a coordinate is in both samples is the smaller of its two
// inclusion probabilities.
//
// Priority sampling (ps) keeps the k largest priorities w/u and uses the
// (k+1)-th priority as threshold. Threshold sampling (ts) keeps every coordinate
// with u < w/τ for τ = Σw/k, so its size varies around k.
type Sample struct {
	family Family
	seed   uint64
	k      int
	tau    float64 // 0 when every nonzero coordinate is kept
	hashes []uint64
	values []float64

	// weights are the primary sampled values. Derived views share them so
	// inclusion probabilities never depend on transformed values.
	weights []float64
}

type candidate struct {
	h        uint64
	v        float64
	priority float64
}

func sketchPS(v vector.Vector, k int, seed uint64) *Sample {
	var cands []candidate
	v.NonZero(func(i int, x float64) {
		h := hash.Key(seed, uint64(i))
		cands = append(cands, candidate{h: h, v: x, priority: x * x / hash.ToUnit(h)})
	})
	var tau float64
	if len(cands) > k {
		sort.Slice(cands, func(a, b int) bool { return cands[a].priority > cands[b].priority })
		tau = cands[k].priority
		cands = cands[:k]
	}
	return newSample(FamilyPS, seed, k, tau, cands)
}

func sketchTS(v vector.Vector, k int, seed uint64) *Sample {
	total := v.SquaredNorm()
	if total == 0 {
		return newSample(FamilyTS, seed, k, 0, nil)
	}
	tau := total / float64(k)
	var cands []candidate
	v.NonZero(func(i int, x float64) {
		h := hash.Key(seed, uint64(i))
		if hash.ToUnit(h)*tau < x*x {
			cands = append(cands, candidate{h: h, v: x})
		}
	})
	return newSample(FamilyTS, seed, k, tau, cands)
}

func newSample(f Family, seed uint64, k int, tau float64, cands []candidate) *Sample {
	s := &Sample{
		family: f,
		seed:   seed,
		k:      k,
		tau:    tau,
		hashes: make([]uint64, len(cands)),
		values: make([]float64, len(cands)),
	}
	for i, c := range cands {
		s.hashes[i] = c.h
		s.values[i] = c.v
	}
	sortEntries(s.hashes, s.values)
	s.weights = s.values
	return s
}

// Family implements Sketch.
func (s *Sample) Family() Family { return s.family }

// Len implements Sketch.
func (s *Sample) Len() int { return len(s.hashes) }

// Threshold returns the sampling threshold τ (0 when the sample is exhaustive).
func (s *Sample) Threshold() float64 { return s.tau }

// Hashes implements Structural.
func (s *Sample) Hashes() []uint64 { return s.hashes }

// Values implements Structural.
func (s *Sample) Values() []float64 { return s.values }

// WithValues implements Structural.
func (s *Sample) WithValues(values []float64) Structural {
	mustSameLen(len(values), len(s.hashes))
	return &Sample{
		family:  s.family,
		seed:    s.seed,
		k:       s.k,
		tau:     s.tau,
		hashes:  s.hashes,
		values:  values,
		weights: s.weights,
	}
}

// InnerProduct implements Sketch. Inclusion probabilities come from the primary
// sampled values, also when s or other is an indicator or squared view.
func (s *Sample) InnerProduct(other Sketch) (float64, error) {
	o, ok := other.(*Sample)
	if !ok {
		return 0, incompatible(s.family, "peer is %s", other.Family())
	}
	return s.InnerProductSampled(other, SampleRecord{Values: s.weights}, SampleRecord{Values: o.weights})
}

// InnerProductSampled implements Sampler.
func (s *Sample) InnerProductSampled(other Sketch, own, peer SampleRecord) (float64, error) {
	o, ok := other.(*Sample)
	if !ok || o.family != s.family {
		return 0, incompatible(s.family, "peer is %s", other.Family())
	}
	if o.seed != s.seed || o.k != s.k {
		return 0, incompatible(s.family, "parameter mismatch (k=%d vs %d)", s.k, o.k)
	}
	if own.Len() != s.Len() || peer.Len() != o.Len() {
		return 0, incompatible(s.family, "sample record does not match sketch (%d/%d vs %d/%d)",
			own.Len(), s.Len(), peer.Len(), o.Len())
	}
	var sum float64
	joinSorted(s.hashes, o.hashes, func(i, j int) {
		wa := own.Values[i] * own.Values[i]
		wb := peer.Values[j] * peer.Values[j]
		p := min(inclusion(wa, s.tau), inclusion(wb, o.tau))
		sum += s.values[i] * o.values[j] / p
	})
	return sum, nil
}

func inclusion(w, tau float64) float64 {
	if tau == 0 {
		return 1
	}
	return min(1, w/tau)
}
