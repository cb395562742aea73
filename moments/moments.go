// Package moments folds inner-product moments into Pearson correlation and
// computes the exact quantities estimates are compared against.
package moments

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/corrsketch/vector"
)

// ErrLengthMismatch is returned when two vectors do not share an index domain.
var ErrLengthMismatch = errors.New("moments: vector lengths differ")

// Moments is the six-scalar tuple sufficient to compute Pearson correlation over
// the joint support of two vectors.
type Moments struct {
	IP    float64 // Σ A·B
	N     float64 // overlap cardinality
	SumA  float64 // Σ A over B's support
	SumB  float64 // Σ B over A's support
	SumA2 float64 // Σ A² over B's support
	SumB2 float64 // Σ B² over A's support
}

// Correlation applies the method-of-moments formula.
//
// The result is NaN when fewer than two overlapping items are estimated or when
// either variance estimate is not positive. Otherwise it is clamped to [-1, 1].
func (m Moments) Correlation() float64 {
	if !(m.N > 1) {
		return math.NaN()
	}
	meanA := m.SumA / m.N
	meanB := m.SumB / m.N
	cov := m.IP/m.N - meanA*meanB
	varA := m.SumA2/m.N - meanA*meanA
	varB := m.SumB2/m.N - meanB*meanB
	if !(varA > 0) || !(varB > 0) {
		return math.NaN()
	}
	return clamp(cov / math.Sqrt(varA*varB))
}

// Correlation is a convenience wrapper around Moments.Correlation.
func Correlation(ip, n, sumA, sumB, sumA2, sumB2 float64) float64 {
	return Moments{IP: ip, N: n, SumA: sumA, SumB: sumB, SumA2: sumA2, SumB2: sumB2}.Correlation()
}

func clamp(r float64) float64 {
	switch {
	case math.IsNaN(r):
		return r
	case r > 1:
		return 1
	case r < -1:
		return -1
	default:
		return r
	}
}

// Pearson returns the sample correlation coefficient of paired observations.
// It returns NaN when fewer than two pairs are given or a sample is constant.
func Pearson(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Truth holds the exact values of a vector pair.
type Truth struct {
	IP    float64 // exact inner product
	Corr  float64 // Pearson correlation over the joint support
	N     float64 // overlap cardinality
	Scale float64 // ‖A‖·‖B‖, the scale inner-product errors are reported against
}

// Exact computes the ground truth of a vector pair.
func Exact(a, b vector.Vector) (Truth, error) {
	if len(a) != len(b) {
		return Truth{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	joint := roaring.And(a.Support(), b.Support())
	return Truth{
		IP:    a.Dot(b),
		Corr:  Pearson(a.Gather(joint), b.Gather(joint)),
		N:     float64(joint.GetCardinality()),
		Scale: a.Norm() * b.Norm(),
	}, nil
}

// ExactMoments computes the six moments exactly. Feeding them to Correlation
// reproduces Truth.Corr up to rounding.
func ExactMoments(a, b vector.Vector) (Moments, error) {
	if len(a) != len(b) {
		return Moments{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	ia, ib := a.Indicator(), b.Indicator()
	a2, b2 := a.Squared(), b.Squared()
	return Moments{
		IP:    a.Dot(b),
		N:     ia.Dot(ib),
		SumA:  a.Dot(ib),
		SumB:  b.Dot(ia),
		SumA2: a2.Dot(ib),
		SumB2: b2.Dot(ia),
	}, nil
}
