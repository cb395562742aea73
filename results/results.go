package results

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/hupe1980/corrsketch/moments"
	"github.com/hupe1980/corrsketch/sketch"
)

// TruthKey is the cell entry holding the exact values.
const TruthKey = "true"

// Float is a float64 that encodes NaN and infinities as JSON null and decodes
// null as NaN.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("results: invalid number %q: %w", data, err)
	}
	*f = Float(v)
	return nil
}

// Estimate is one family's outcome in one cell.
type Estimate struct {
	Corr    float64
	MemA    float64 // sampling families only
	MemB    float64 // sampling families only
	Sampled bool
}

// Scalar returns the estimate of a non-sampling family.
func Scalar(corr float64) Estimate {
	return Estimate{Corr: corr}
}

// Sampled returns the estimate of a sampling family with the effective memory
// sizes of its two samples.
func Sampled(corr, memA, memB float64) Estimate {
	return Estimate{Corr: corr, MemA: memA, MemB: memB, Sampled: true}
}

// Missing reports whether the correlation is undefined.
func (e Estimate) Missing() bool {
	return math.IsNaN(e.Corr)
}

func (e Estimate) wire() any {
	if e.Sampled {
		return []Float{Float(e.Corr), Float(e.MemA), Float(e.MemB)}
	}
	return Float(e.Corr)
}

// Cell holds the exact values and the estimates of one trial at one storage size.
type Cell struct {
	Truth     *moments.Truth
	Estimates map[sketch.Family]Estimate
}

// Estimate returns the estimate of f, if recorded.
func (c *Cell) Estimate(f sketch.Family) (Estimate, bool) {
	e, ok := c.Estimates[f]
	return e, ok
}

// Results maps cell keys to cells.
type Results map[string]*Cell

// New returns an empty result set.
func New() Results {
	return make(Results)
}

// Key formats the cell key "<storage>_<overlap>_<trial>". The overlap is
// printed the way earlier tooling printed floats, so keys match its files:
// integral overlaps keep one decimal ("1.0") and magnitudes below 1e-4 or from
// 1e16 use exponent form ("1e-05").
func Key(storage int, overlap float64, trial int) string {
	return fmt.Sprintf("%d_%s_%d", storage, formatOverlap(overlap), trial)
}

func formatOverlap(x float64) string {
	abs := math.Abs(x)
	switch {
	case abs != 0 && (abs < 1e-4 || abs >= 1e16):
		return strconv.FormatFloat(x, 'e', -1, 64)
	case x == math.Trunc(x):
		return strconv.FormatFloat(x, 'f', 1, 64)
	default:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
}

// Cell returns the cell for key, creating it if needed.
func (r Results) Cell(key string) *Cell {
	c, ok := r[key]
	if !ok {
		c = &Cell{Estimates: make(map[sketch.Family]Estimate)}
		r[key] = c
	}
	return c
}

// SetTruth records the exact values of a cell.
func (r Results) SetTruth(key string, t moments.Truth) {
	r.Cell(key).Truth = &t
}

// Set records the estimate of f in a cell.
func (r Results) Set(key string, f sketch.Family, e Estimate) {
	r.Cell(key).Estimates[f] = e
}

// Lookup returns the estimate of f in a cell, if recorded.
func (r Results) Lookup(key string, f sketch.Family) (Estimate, bool) {
	c, ok := r[key]
	if !ok {
		return Estimate{}, false
	}
	return c.Estimate(f)
}

// Keys returns the cell keys in lexical order.
func (r Results) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of recorded estimates across all cells.
func (r Results) Len() int {
	n := 0
	for _, c := range r {
		n += len(c.Estimates)
	}
	return n
}
