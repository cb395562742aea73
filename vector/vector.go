// Package vector provides the dense-but-sparse numeric vectors sketched by corrsketch.
//
// Two vectors share an index domain: entry i of A and entry i of B describe the
// same logical item. Most entries are zero.
package vector

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/floats"
)

// Vector is a fixed-length sequence of real numbers.
type Vector []float64

// NonZero calls fn for every nonzero entry in index order.
func (v Vector) NonZero(fn func(i int, x float64)) {
	for i, x := range v {
		if x != 0 {
			fn(i, x)
		}
	}
}

// NNZ returns the number of nonzero entries.
func (v Vector) NNZ() int {
	n := 0
	for _, x := range v {
		if x != 0 {
			n++
		}
	}
	return n
}

// Indicator returns a vector with 1 where v is nonzero and 0 elsewhere.
func (v Vector) Indicator() Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		if x != 0 {
			out[i] = 1
		}
	}
	return out
}

// Squared returns the elementwise square of v.
func (v Vector) Squared() Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x * x
	}
	return out
}

// Support returns the indices of the nonzero entries as a bitmap.
func (v Vector) Support() *roaring.Bitmap {
	bm := roaring.New()
	for i, x := range v {
		if x != 0 {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Dot returns the inner product of v and w.
// It panics if the lengths differ.
func (v Vector) Dot(w Vector) float64 {
	return floats.Dot(v, w)
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm() float64 {
	return floats.Norm(v, 2)
}

// SquaredNorm returns the sum of squares of v.
func (v Vector) SquaredNorm() float64 {
	n := v.Norm()
	return n * n
}

// Gather returns the entries of v at the given indices.
func (v Vector) Gather(idx *roaring.Bitmap) []float64 {
	out := make([]float64, 0, idx.GetCardinality())
	it := idx.Iterator()
	for it.HasNext() {
		out = append(out, v[it.Next()])
	}
	return out
}

// Finite reports whether every entry of v is a finite number.
func (v Vector) Finite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Derived bundles a vector with its indicator and squared forms.
// The forms are computed once per trial and reused across storage sizes and
// sketch families.
type Derived struct {
	Raw       Vector
	Indicator Vector
	Squared   Vector
}

// Derive computes the indicator and squared forms of v.
func Derive(v Vector) Derived {
	return Derived{
		Raw:       v,
		Indicator: v.Indicator(),
		Squared:   v.Squared(),
	}
}
