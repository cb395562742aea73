package sketch

import (
	"slices"
	"sort"
)

// Sketch is a fixed-size summary of one vector.
type Sketch interface {
	// Family returns the family that built the sketch.
	Family() Family

	// Len returns the number of stored entries (slots for linear sketches,
	// retained samples for structural ones).
	Len() int

	// InnerProduct estimates the inner product of the two summarized vectors.
	// It returns an error wrapping ErrIncompatibleSketch when other was not built
	// by the same family with the same parameters.
	InnerProduct(other Sketch) (float64, error)
}

// Structural is a sketch whose retained positions depend on the sketched values.
type Structural interface {
	Sketch

	// Hashes returns the coordinate hashes of the retained entries.
	// The returned slice must not be modified.
	Hashes() []uint64

	// Values returns the stored values aligned with Hashes.
	// The returned slice must not be modified.
	Values() []float64

	// WithValues returns a new sketch with the same retained positions and the
	// given values. It panics if len(values) != Len().
	WithValues(values []float64) Structural
}

// Sampler is a structural sketch whose inclusion probabilities are computed from
// the original sampled values, even after its stored values were transformed.
type Sampler interface {
	Structural

	// InnerProductSampled estimates the inner product using own as the sample
	// record of the receiver and peer as the sample record of other.
	InnerProductSampled(other Sketch, own, peer SampleRecord) (float64, error)
}

// MemoryOverhead is the per-entry cost of storing an identifier and a value
// relative to one dense array slot.
const MemoryOverhead = 1.5

// SampleRecord lists the original values a sampling sketch retained, aligned
// with its hashes. It is computed once from a primary sketch and shared by every
// view derived from it.
type SampleRecord struct {
	Values []float64
}

// RecordSample captures the sample record of a primary sketch.
func RecordSample(s Structural) SampleRecord {
	return SampleRecord{Values: slices.Clone(s.Values())}
}

// Len returns the number of retained samples.
func (r SampleRecord) Len() int {
	return len(r.Values)
}

// MemorySize returns the effective memory size of the sample.
func (r SampleRecord) MemorySize() float64 {
	return MemoryOverhead * float64(len(r.Values))
}

// Transform maps a stored value to a derived value.
type Transform func(float64) float64

// Indicator maps every value to 1.
func Indicator(float64) float64 { return 1 }

// Square maps every value to its square.
func Square(v float64) float64 { return v * v }

// Derive builds a new sketch with the retained positions of s and transformed
// values. s is left untouched.
func Derive(s Structural, fn Transform) Structural {
	src := s.Values()
	values := make([]float64, len(src))
	for i, v := range src {
		values[i] = fn(v)
	}
	return s.WithValues(values)
}

// joinSorted calls fn for every pair of positions holding equal hashes in two
// ascending hash lists.
func joinSorted(ha, hb []uint64, fn func(i, j int)) {
	i, j := 0, 0
	for i < len(ha) && j < len(hb) {
		switch {
		case ha[i] < hb[j]:
			i++
		case ha[i] > hb[j]:
			j++
		default:
			fn(i, j)
			i++
			j++
		}
	}
}

// sortEntries orders hashes ascending and permutes values alongside.
func sortEntries(hashes []uint64, values []float64) {
	sort.Sort(entrySorter{hashes, values})
}

type entrySorter struct {
	h []uint64
	v []float64
}

func (s entrySorter) Len() int           { return len(s.h) }
func (s entrySorter) Less(i, j int) bool { return s.h[i] < s.h[j] }
func (s entrySorter) Swap(i, j int) {
	s.h[i], s.h[j] = s.h[j], s.h[i]
	s.v[i], s.v[j] = s.v[j], s.v[i]
}

func median(xs []float64) float64 {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mustSameLen(n, want int) {
	if n != want {
		panic("sketch: WithValues length mismatch")
	}
}
