// Package datagen generates synthetic sparse vector pairs with a controlled
// support overlap, value correlation and outlier contamination.
package datagen

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hupe1980/corrsketch/vector"
)

// DefaultLength is the domain length used when Config.Length is zero.
const DefaultLength = 20000

// ErrInvalidConfig is returned by GeneratePair for out-of-range parameters.
var ErrInvalidConfig = errors.New("datagen: invalid config")

// Config controls the shape of a generated pair.
type Config struct {
	// Length is the domain length of both vectors. Zero means DefaultLength.
	Length int

	// NonZero is the number of nonzero entries per vector. Zero means Length/10.
	NonZero int

	// Overlap is the fraction of NonZero entries the two supports share.
	Overlap float64

	// Corr is the target Pearson correlation of the values on the shared support.
	Corr float64

	// OutlierFraction is the fraction of shared entries replaced by outliers.
	OutlierFraction float64

	// OutlierMean and OutlierStd parameterize the outlier distribution.
	OutlierMean float64
	OutlierStd  float64
}

func (c Config) withDefaults() Config {
	if c.Length == 0 {
		c.Length = DefaultLength
	}
	if c.NonZero == 0 {
		c.NonZero = c.Length / 10
	}
	return c
}

// Validate checks the parameter ranges after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	switch {
	case c.Length < 0:
		return fmt.Errorf("%w: length %d", ErrInvalidConfig, c.Length)
	case c.NonZero < 1 || c.NonZero > c.Length:
		return fmt.Errorf("%w: nonzero %d for length %d", ErrInvalidConfig, c.NonZero, c.Length)
	case c.Overlap < 0 || c.Overlap > 1:
		return fmt.Errorf("%w: overlap %g", ErrInvalidConfig, c.Overlap)
	case c.Corr < -1 || c.Corr > 1:
		return fmt.Errorf("%w: corr %g", ErrInvalidConfig, c.Corr)
	case c.OutlierFraction < 0 || c.OutlierFraction > 1:
		return fmt.Errorf("%w: outlier fraction %g", ErrInvalidConfig, c.OutlierFraction)
	case c.OutlierStd < 0:
		return fmt.Errorf("%w: outlier std %g", ErrInvalidConfig, c.OutlierStd)
	}
	// Both supports must fit in the domain.
	shared := c.shared()
	if 2*c.NonZero-shared > c.Length {
		return fmt.Errorf("%w: %d nonzeros with %d shared exceed length %d",
			ErrInvalidConfig, c.NonZero, shared, c.Length)
	}
	return nil
}

func (c Config) shared() int {
	return int(c.Overlap*float64(c.NonZero) + 0.5)
}

// Pair is a generated vector pair and the layout of its supports.
type Pair struct {
	A, B vector.Vector

	// Shared holds the coordinates nonzero in both vectors.
	Shared *roaring.Bitmap

	// Outliers holds the shared coordinates that carry outlier values.
	Outliers *roaring.Bitmap
}

// GeneratePair draws a pair for cfg. The result depends only on cfg and seed.
func GeneratePair(cfg Config, seed uint64) (*Pair, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	perm := rng.Perm(cfg.Length)
	shared := cfg.shared()
	only := cfg.NonZero - shared

	sharedSet := roaring.New()
	for _, i := range perm[:shared] {
		sharedSet.Add(uint32(i))
	}
	onlyA := perm[shared : shared+only]
	onlyB := perm[shared+only : shared+2*only]

	single := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	a := make(vector.Vector, cfg.Length)
	b := make(vector.Vector, cfg.Length)

	draw, err := sharedDraw(cfg.Corr, single, src)
	if err != nil {
		return nil, err
	}
	xy := make([]float64, 2)
	it := sharedSet.Iterator()
	for it.HasNext() {
		i := it.Next()
		draw(xy)
		a[i], b[i] = nonZero(xy[0]), nonZero(xy[1])
	}
	for _, i := range onlyA {
		a[i] = nonZero(single.Rand())
	}
	for _, i := range onlyB {
		b[i] = nonZero(single.Rand())
	}

	outliers := roaring.New()
	if n := int(cfg.OutlierFraction*float64(shared) + 0.5); n > 0 {
		outlier := distuv.Normal{Mu: cfg.OutlierMean, Sigma: cfg.OutlierStd, Src: src}
		candidates := sharedSet.ToArray()
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, i := range candidates[:n] {
			outliers.Add(i)
			a[i] = nonZero(outlier.Rand())
			b[i] = nonZero(outlier.Rand())
		}
	}

	return &Pair{A: a, B: b, Shared: sharedSet, Outliers: outliers}, nil
}

// Outlier draws of exactly zero would silently shrink the support.
func nonZero(x float64) float64 {
	if x == 0 {
		return 1e-12
	}
	return x
}

// sharedDraw returns a sampler of standard normal pairs with correlation corr.
// The covariance is singular at |corr| == 1, so the second value is then the
// first scaled by corr.
func sharedDraw(corr float64, single distuv.Normal, src rand.Source) (func([]float64), error) {
	if math.Abs(corr) == 1 {
		return func(xy []float64) {
			xy[0] = single.Rand()
			xy[1] = corr * xy[0]
		}, nil
	}
	cov := mat.NewSymDense(2, []float64{1, corr, corr, 1})
	joint, ok := distmv.NewNormal([]float64{0, 0}, cov, src)
	if !ok {
		return nil, fmt.Errorf("%w: covariance for corr %g is not positive definite", ErrInvalidConfig, corr)
	}
	return func(xy []float64) { joint.Rand(xy) }, nil
}
