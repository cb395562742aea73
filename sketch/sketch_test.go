package sketch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/corrsketch/testutil"
	"github.com/hupe1980/corrsketch/vector"
)

func newSketcher(t *testing.T, f Family, size, rows int, seed uint64) Sketcher {
	t.Helper()
	sizes := Sizes{WMH: size, KMV: size, MH: size, JL: size, CS: size, PS: size, TS: size}
	sk, err := NewSketcher(sizes, f, rows, seed)
	require.NoError(t, err)
	return sk
}

func pair(t *testing.T, sk Sketcher, a, b vector.Vector) (Sketch, Sketch) {
	t.Helper()
	sa, err := sk.Sketch(a)
	require.NoError(t, err)
	sb, err := sk.Sketch(b)
	require.NoError(t, err)
	return sa, sb
}

func innerProduct(t *testing.T, sk Sketcher, a, b vector.Vector) float64 {
	t.Helper()
	sa, sb := pair(t, sk, a, b)
	ip, err := sa.InnerProduct(sb)
	require.NoError(t, err)
	return ip
}

func TestExhaustiveSketchesAreExact(t *testing.T) {
	rng := testutil.NewRNG(1)
	a, b := rng.CorrelatedPair(500, 40, 0.7)
	exact := a.Dot(b)

	tests := []struct {
		name string
		sk   Sketcher
	}{
		{"KMV", newSketcher(t, FamilyKMV, 40, 0, 7)},
		{"PS", newSketcher(t, FamilyPS, 64, 0, 7)},
		{"CSWide", newSketcher(t, FamilyCS, 3*200000, 3, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, exact, innerProduct(t, tt.sk, a, b), 1e-9)
		})
	}
}

func TestThresholdSample_Exhaustive(t *testing.T) {
	rng := testutil.NewRNG(2)
	a := rng.SignVector(400, 50)
	b := rng.SignVector(400, 50)

	// With ±1 entries and k = nnz, τ = 1 and every entry has probability 1.
	sk := newSketcher(t, FamilyTS, 50, 0, 3)
	sa, sb := pair(t, sk, a, b)
	assert.Equal(t, 50, sa.Len())
	assert.Equal(t, 50, sb.Len())

	ip, err := sa.InnerProduct(sb)
	require.NoError(t, err)
	assert.InDelta(t, a.Dot(b), ip, 1e-9)
}

func TestWeightedMinHash_SelfProduct(t *testing.T) {
	rng := testutil.NewRNG(3)
	a := rng.SparseVector(1000, 120)

	// Identical vectors agree on every slot, so the estimate is exact.
	sk := newSketcher(t, FamilyWMH, 64, 0, 11)
	sa, err := sk.Sketch(a)
	require.NoError(t, err)
	ip, err := sa.InnerProduct(sa)
	require.NoError(t, err)
	assert.InDelta(t, a.SquaredNorm(), ip, 1e-6*a.SquaredNorm())
}

func TestLinearSketches_SelfProduct(t *testing.T) {
	rng := testutil.NewRNG(4)
	a := rng.SparseVector(5000, 300)
	norm2 := a.SquaredNorm()

	for _, f := range []Family{FamilyJL, FamilyCS} {
		t.Run(f.String(), func(t *testing.T) {
			sk := newSketcher(t, f, 3000, 3, 5)
			ip := innerProduct(t, sk, a, a)
			assert.InDelta(t, norm2, ip, 0.2*norm2)
		})
	}
}

func TestMinHash_UnionEstimate(t *testing.T) {
	rng := testutil.NewRNG(5)
	a := rng.SignVector(5000, 300)
	a.NonZero(func(i int, _ float64) { a[i] = 2 })

	// Σ a² = 1200; the estimate is Û·4 with Û ≈ 300.
	sk := newSketcher(t, FamilyMH, 800, 0, 9)
	ip := innerProduct(t, sk, a, a)
	assert.InDelta(t, 1200, ip, 0.25*1200)
}

func TestUnbiasedOverSeeds(t *testing.T) {
	rng := testutil.NewRNG(6)
	a, b := rng.CorrelatedPair(3000, 400, 0.9)
	a = testutil.Shifted(a, 3)
	b = testutil.Shifted(b, 3)
	exact := a.Dot(b)

	for _, f := range Families() {
		t.Run(f.String(), func(t *testing.T) {
			var mean float64
			const trials = 20
			for seed := uint64(0); seed < trials; seed++ {
				sk := newSketcher(t, f, 150, 3, seed+100)
				mean += innerProduct(t, sk, a, b) / trials
			}
			assert.InDelta(t, exact, mean, 0.25*math.Abs(exact))
		})
	}
}

func TestDisjointSupports(t *testing.T) {
	rng := testutil.NewRNG(7)
	a, b := rng.DisjointPair(2000, 300)

	for _, f := range []Family{FamilyKMV, FamilyMH, FamilyWMH, FamilyPS, FamilyTS} {
		t.Run(f.String(), func(t *testing.T) {
			sk := newSketcher(t, f, 100, 0, 13)
			assert.Equal(t, 0.0, innerProduct(t, sk, a, b))
		})
	}
}

func TestIncompatibleSketches(t *testing.T) {
	rng := testutil.NewRNG(8)
	a := rng.SparseVector(300, 30)

	for _, f := range Families() {
		t.Run(f.String(), func(t *testing.T) {
			s1, err := newSketcher(t, f, 60, 3, 1).Sketch(a)
			require.NoError(t, err)
			s2, err := newSketcher(t, f, 60, 3, 2).Sketch(a)
			require.NoError(t, err)
			_, err = s1.InnerProduct(s2)
			assert.ErrorIs(t, err, ErrIncompatibleSketch)
		})
	}

	jl, err := newSketcher(t, FamilyJL, 10, 0, 1).Sketch(a)
	require.NoError(t, err)
	cs, err := newSketcher(t, FamilyCS, 12, 3, 1).Sketch(a)
	require.NoError(t, err)
	_, err = jl.InnerProduct(cs)
	var ie *IncompatibleError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, FamilyJL, ie.Family)
}

func TestDerive(t *testing.T) {
	rng := testutil.NewRNG(9)
	a := rng.SparseVector(2000, 200)

	for _, f := range []Family{FamilyKMV, FamilyMH, FamilyPS, FamilyTS} {
		t.Run(f.String(), func(t *testing.T) {
			s, err := newSketcher(t, f, 50, 0, 21).Sketch(a)
			require.NoError(t, err)
			primary := s.(Structural)
			before := append([]float64(nil), primary.Values()...)

			ind := Derive(primary, Indicator)
			sq := Derive(primary, Square)

			assert.Equal(t, primary.Hashes(), ind.Hashes())
			assert.Equal(t, primary.Hashes(), sq.Hashes())
			assert.Equal(t, before, primary.Values(), "primary must not change")
			for i, v := range sq.Values() {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.Equal(t, before[i]*before[i], v)
				assert.Equal(t, 1.0, ind.Values()[i])
			}

			again := Derive(ind, Indicator)
			assert.Equal(t, ind.Hashes(), again.Hashes())
			assert.Equal(t, ind.Values(), again.Values())
		})
	}
}

func TestWithValues_LengthMismatch(t *testing.T) {
	s, err := newSketcher(t, FamilyKMV, 5, 0, 1).Sketch(vector.Vector{1, 2, 3})
	require.NoError(t, err)
	assert.Panics(t, func() { s.(Structural).WithValues([]float64{1}) })
}

func TestSampleRecord(t *testing.T) {
	rng := testutil.NewRNG(10)
	a := rng.SparseVector(3000, 500)

	s, err := newSketcher(t, FamilyPS, 200, 0, 3).Sketch(a)
	require.NoError(t, err)
	primary := s.(Sampler)
	rec := RecordSample(primary)

	assert.Equal(t, 200, rec.Len())
	assert.Equal(t, 300.0, rec.MemorySize())
	assert.Equal(t, rec.Len(), Derive(primary, Indicator).Len())
	assert.Equal(t, rec.Len(), Derive(primary, Square).Len())
}

func TestSampler_RecordMismatch(t *testing.T) {
	rng := testutil.NewRNG(11)
	a := rng.SparseVector(3000, 500)
	s, err := newSketcher(t, FamilyPS, 100, 0, 3).Sketch(a)
	require.NoError(t, err)
	sp := s.(Sampler)

	_, err = sp.InnerProductSampled(sp, SampleRecord{Values: []float64{1}}, RecordSample(sp))
	assert.ErrorIs(t, err, ErrIncompatibleSketch)
}

func TestSampler_IndicatorUsesRecordedWeights(t *testing.T) {
	rng := testutil.NewRNG(12)
	a, b := rng.CorrelatedPair(4000, 600, 0.5)
	a, b = testutil.Shifted(a, 5), testutil.Shifted(b, 5)
	n := 600.0

	var mean float64
	const trials = 20
	for seed := uint64(0); seed < trials; seed++ {
		sk := newSketcher(t, FamilyPS, 200, 0, seed+1)
		sa, sb := pair(t, sk, a, b)
		pa, pb := sa.(Sampler), sb.(Sampler)
		recA, recB := RecordSample(pa), RecordSample(pb)
		ia := Derive(pa, Indicator).(Sampler)
		ib := Derive(pb, Indicator)
		est, err := ia.InnerProductSampled(ib, recA, recB)
		require.NoError(t, err)
		mean += est / trials
	}
	assert.InDelta(t, n, mean, 0.2*n)
}

func TestSample_DerivedViewKeepsPrimaryWeights(t *testing.T) {
	rng := testutil.NewRNG(13)
	a, b := rng.CorrelatedPair(4000, 600, 0.5)

	for _, f := range []Family{FamilyPS, FamilyTS} {
		t.Run(f.String(), func(t *testing.T) {
			sa, sb := pair(t, newSketcher(t, f, 200, 0, 7), a, b)
			pa, pb := sa.(Sampler), sb.(Sampler)
			recA, recB := RecordSample(pa), RecordSample(pb)

			for name, fn := range map[string]Transform{"indicator": Indicator, "square": Square} {
				da, db := Derive(pa, fn), Derive(pb, fn)

				want, err := da.(Sampler).InnerProductSampled(db, recA, recB)
				require.NoError(t, err, name)
				got, err := da.InnerProduct(db)
				require.NoError(t, err, name)
				assert.Equal(t, want, got, name)
			}
		})
	}
}

func TestSketch_InvalidVector(t *testing.T) {
	sk := newSketcher(t, FamilyJL, 4, 0, 1)
	_, err := sk.Sketch(vector.Vector{1, math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidVector)
}

func TestNewSketcher_Invalid(t *testing.T) {
	_, err := NewSketcher(Sizes{}, FamilyJL, 3, 1)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = NewSketcher(Sizes{CS: 2}, FamilyCS, 3, 1)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = NewSketcher(Sizes{JL: 2}, Family(42), 3, 1)
	assert.ErrorIs(t, err, ErrUnknownFamily)

	sk, err := NewSketcher(Sizes{CS: 10}, FamilyCS, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, sk.SketchSize())
	assert.Equal(t, FamilyCS, sk.Family())
}

func TestEmptyVector(t *testing.T) {
	empty := make(vector.Vector, 100)
	for _, f := range Families() {
		t.Run(f.String(), func(t *testing.T) {
			sk := newSketcher(t, f, 30, 3, 1)
			assert.Equal(t, 0.0, innerProduct(t, sk, empty, empty))
		})
	}
}
