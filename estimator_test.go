package corrsketch_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/corrsketch"
	"github.com/hupe1980/corrsketch/moments"
	"github.com/hupe1980/corrsketch/sketch"
	"github.com/hupe1980/corrsketch/testutil"
	"github.com/hupe1980/corrsketch/vector"
)

const (
	testLength = 2000
	testNNZ    = 200
)

func newSketcher(t *testing.T, f sketch.Family, storage int, seed uint64) sketch.Sketcher {
	t.Helper()
	sizes, err := sketch.SampleSizes(3, sketch.ModeIP, storage)
	require.NoError(t, err)
	sk, err := sketch.NewSketcher(sizes, f, 3, seed)
	require.NoError(t, err)
	return sk
}

func newInputs(t *testing.T, a, b vector.Vector) corrsketch.Inputs {
	t.Helper()
	in, err := corrsketch.NewInputs(a, b)
	require.NoError(t, err)
	return in
}

func TestNewInputs(t *testing.T) {
	t.Run("derives views", func(t *testing.T) {
		in := newInputs(t, vector.Vector{0, -2, 3}, vector.Vector{1, 0, 2})
		assert.Equal(t, 3, in.Len())
		assert.Equal(t, vector.Vector{0, 1, 1}, in.A.Indicator)
		assert.Equal(t, vector.Vector{1, 0, 4}, in.B.Squared)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := corrsketch.NewInputs(vector.Vector{1, 2}, vector.Vector{1})
		assert.ErrorIs(t, err, corrsketch.ErrInvalidInput)
	})

	t.Run("non-finite", func(t *testing.T) {
		_, err := corrsketch.NewInputs(vector.Vector{1, math.NaN()}, vector.Vector{1, 2})
		assert.ErrorIs(t, err, corrsketch.ErrInvalidInput)
	})
}

func TestEstimate_IdenticalVectors(t *testing.T) {
	rng := testutil.NewRNG(7)
	a := rng.SparseVector(testLength, testNNZ)
	in := newInputs(t, a, a)
	est := corrsketch.NewEstimator()

	tests := []struct {
		family sketch.Family
		delta  float64
	}{
		{sketch.FamilyKMV, 1e-9},
		{sketch.FamilyMH, 1e-9},
		{sketch.FamilyPS, 1e-9},
		{sketch.FamilyTS, 1e-9},
		{sketch.FamilyJL, 0.15},
		{sketch.FamilyCS, 0.15},
	}
	for _, tt := range tests {
		t.Run(tt.family.String(), func(t *testing.T) {
			sk := newSketcher(t, tt.family, 6000, 11)
			res, err := est.Estimate(context.Background(), in, tt.family, sk)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, res.Corr, tt.delta)
		})
	}

	t.Run("wmh", func(t *testing.T) {
		sk := newSketcher(t, sketch.FamilyWMH, 6000, 11)
		res, err := est.Estimate(context.Background(), in, sketch.FamilyWMH, sk)
		require.NoError(t, err)
		require.NotNil(t, res.Moments)
		// Both primary and indicator views match in every slot.
		assert.InEpsilon(t, a.SquaredNorm(), res.Moments.IP, 1e-9)
		assert.InEpsilon(t, float64(testNNZ), res.Moments.N, 1e-9)
		if !math.IsNaN(res.Corr) {
			assert.LessOrEqual(t, math.Abs(res.Corr), 1.0)
		}
	})
}

func TestEstimate_ExhaustiveMatchesTruth(t *testing.T) {
	rng := testutil.NewRNG(3)
	a, b := rng.CorrelatedPair(testLength, testNNZ, 0.8)
	truth, err := moments.Exact(a, b)
	require.NoError(t, err)

	in := newInputs(t, a, b)
	est := corrsketch.NewEstimator()

	for _, f := range []sketch.Family{sketch.FamilyKMV, sketch.FamilyPS} {
		t.Run(f.String(), func(t *testing.T) {
			res, err := est.Estimate(context.Background(), in, f, newSketcher(t, f, 1500, 5))
			require.NoError(t, err)
			assert.InDelta(t, truth.Corr, res.Corr, 1e-9)
		})
	}

	t.Run("moments", func(t *testing.T) {
		res, err := est.Estimate(context.Background(), in, sketch.FamilyPS, newSketcher(t, sketch.FamilyPS, 1500, 5))
		require.NoError(t, err)
		exact, err := moments.ExactMoments(a, b)
		require.NoError(t, err)
		require.NotNil(t, res.Moments)
		assert.InDelta(t, exact.IP, res.Moments.IP, 1e-9)
		assert.InDelta(t, exact.N, res.Moments.N, 1e-9)
		assert.InDelta(t, exact.SumA, res.Moments.SumA, 1e-9)
		assert.InDelta(t, exact.SumB, res.Moments.SumB, 1e-9)
		assert.InDelta(t, exact.SumA2, res.Moments.SumA2, 1e-9)
		assert.InDelta(t, exact.SumB2, res.Moments.SumB2, 1e-9)
	})
}

func TestEstimate_DisjointSupports(t *testing.T) {
	rng := testutil.NewRNG(9)
	a, b := rng.DisjointPair(testLength, testNNZ)
	in := newInputs(t, a, b)
	est := corrsketch.NewEstimator()

	t.Run("kmv", func(t *testing.T) {
		res, err := est.Estimate(context.Background(), in, sketch.FamilyKMV, newSketcher(t, sketch.FamilyKMV, 600, 1))
		require.NoError(t, err)
		assert.Zero(t, res.Matched)
		assert.True(t, math.IsNaN(res.Corr))
		assert.Nil(t, res.Moments)
	})

	for _, f := range []sketch.Family{sketch.FamilyMH, sketch.FamilyPS, sketch.FamilyTS} {
		t.Run(f.String(), func(t *testing.T) {
			res, err := est.Estimate(context.Background(), in, f, newSketcher(t, f, 600, 1))
			require.NoError(t, err)
			assert.Zero(t, res.Moments.N)
			assert.Zero(t, res.Moments.SumA)
			assert.Zero(t, res.Moments.SumB)
			assert.True(t, math.IsNaN(res.Corr))
		})
	}

	for _, f := range []sketch.Family{sketch.FamilyJL, sketch.FamilyCS} {
		t.Run(f.String(), func(t *testing.T) {
			res, err := est.Estimate(context.Background(), in, f, newSketcher(t, f, 6000, 1))
			require.NoError(t, err)
			assert.InDelta(t, 0, res.Moments.N, 0.2*testNNZ)
			if !math.IsNaN(res.Corr) {
				assert.LessOrEqual(t, math.Abs(res.Corr), 1.0)
			}
		})
	}
}

func TestEstimate_SamplingMemory(t *testing.T) {
	rng := testutil.NewRNG(4)
	a, b := rng.CorrelatedPair(testLength, testNNZ, 0.5)
	in := newInputs(t, a, b)
	est := corrsketch.NewEstimator()

	t.Run("ps", func(t *testing.T) {
		res, err := est.Estimate(context.Background(), in, sketch.FamilyPS, newSketcher(t, sketch.FamilyPS, 150, 2))
		require.NoError(t, err)
		require.NotNil(t, res.RecordA)
		require.NotNil(t, res.RecordB)

		rec := res.Record()
		assert.True(t, rec.Sampled)
		assert.Equal(t, 150.0, float64(rec.MemA))
		assert.Equal(t, 150.0, float64(rec.MemB))

		// Every view of a primary sketch reports the same memory.
		pa := res.SketchA.(sketch.Structural)
		for _, view := range []sketch.Structural{pa, sketch.Derive(pa, sketch.Indicator), sketch.Derive(pa, sketch.Square)} {
			assert.Equal(t, float64(rec.MemA), sketch.RecordSample(view).MemorySize())
		}
	})

	t.Run("ts", func(t *testing.T) {
		res, err := est.Estimate(context.Background(), in, sketch.FamilyTS, newSketcher(t, sketch.FamilyTS, 150, 2))
		require.NoError(t, err)
		memA, memB := res.MemorySize()
		assert.Equal(t, 1.5*float64(res.SketchA.Len()), memA)
		assert.Equal(t, 1.5*float64(res.SketchB.Len()), memB)
	})

	t.Run("non-sampling", func(t *testing.T) {
		res, err := est.Estimate(context.Background(), in, sketch.FamilyCS, newSketcher(t, sketch.FamilyCS, 600, 2))
		require.NoError(t, err)
		assert.Nil(t, res.RecordA)
		rec := res.Record()
		assert.False(t, rec.Sampled)
		memA, memB := res.MemorySize()
		assert.Zero(t, memA)
		assert.Zero(t, memB)
	})
}

// splitSketcher sketches the first vector with one seed and every later vector
// with another, so A's and B's sketches cannot be combined.
type splitSketcher struct {
	first, rest sketch.Sketcher
	calls       int
}

func (s *splitSketcher) Family() sketch.Family { return s.first.Family() }
func (s *splitSketcher) SketchSize() int       { return s.first.SketchSize() }

func (s *splitSketcher) Sketch(v vector.Vector) (sketch.Sketch, error) {
	s.calls++
	if s.calls == 1 {
		return s.first.Sketch(v)
	}
	return s.rest.Sketch(v)
}

func TestEstimate_IncompatibleSketches(t *testing.T) {
	rng := testutil.NewRNG(5)
	a, b := rng.CorrelatedPair(testLength, testNNZ, 0.5)
	in := newInputs(t, a, b)

	for _, f := range []sketch.Family{sketch.FamilyPS, sketch.FamilyCS, sketch.FamilyMH} {
		t.Run(f.String(), func(t *testing.T) {
			metrics := &corrsketch.BasicMetricsCollector{}
			est := corrsketch.NewEstimator(corrsketch.WithMetricsCollector(metrics))
			sk := &splitSketcher{first: newSketcher(t, f, 600, 1), rest: newSketcher(t, f, 600, 2)}

			res, err := est.Estimate(context.Background(), in, f, sk)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, sketch.ErrIncompatibleSketch)

			var ipErr *corrsketch.ErrInnerProduct
			require.True(t, errors.As(err, &ipErr))
			assert.Equal(t, f, ipErr.Family)
			assert.Equal(t, "ip", ipErr.Term)

			stats := metrics.GetStats()
			assert.Equal(t, int64(1), stats.EstimateCount)
			assert.Equal(t, int64(1), stats.EstimateErrors)
		})
	}
}

func TestEstimate_Preconditions(t *testing.T) {
	rng := testutil.NewRNG(6)
	a, b := rng.CorrelatedPair(200, 20, 0.5)
	in := newInputs(t, a, b)
	est := corrsketch.NewEstimator()
	cs := newSketcher(t, sketch.FamilyCS, 60, 1)

	t.Run("family mismatch", func(t *testing.T) {
		_, err := est.Estimate(context.Background(), in, sketch.FamilyPS, cs)
		assert.ErrorIs(t, err, corrsketch.ErrFamilyMismatch)
	})

	t.Run("nil sketcher", func(t *testing.T) {
		_, err := est.Estimate(context.Background(), in, sketch.FamilyCS, nil)
		assert.ErrorIs(t, err, corrsketch.ErrFamilyMismatch)
	})

	t.Run("unknown family", func(t *testing.T) {
		_, err := est.Estimate(context.Background(), in, sketch.Family(0), cs)
		assert.ErrorIs(t, err, sketch.ErrUnknownFamily)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := est.Estimate(ctx, in, sketch.FamilyCS, cs)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("non-finite", func(t *testing.T) {
		bad := corrsketch.Inputs{A: vector.Derive(vector.Vector{math.Inf(1), 1}), B: vector.Derive(vector.Vector{1, 1})}
		_, err := est.Estimate(context.Background(), bad, sketch.FamilyCS, newSketcher(t, sketch.FamilyCS, 60, 1))
		assert.ErrorIs(t, err, sketch.ErrInvalidVector)

		var skErr *corrsketch.ErrSketch
		require.True(t, errors.As(err, &skErr))
		assert.Equal(t, "A", skErr.View)
	})
}
