package corrsketch

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/corrsketch/moments"
	"github.com/hupe1980/corrsketch/sketch"
)

// Estimation is the outcome of estimating one vector pair with one family.
type Estimation struct {
	Family sketch.Family

	// SketchA and SketchB are the primary sketches of the two vectors.
	SketchA sketch.Sketch
	SketchB sketch.Sketch

	// Corr is the estimated correlation. NaN means undefined.
	Corr float64

	// Moments holds the estimated six-moment tuple. Nil for kmv.
	Moments *moments.Moments

	// Matched is the number of hash-matched pairs. Only set for kmv.
	Matched int

	// RecordA and RecordB are the sample records. Only set for sampling families.
	RecordA *sketch.SampleRecord
	RecordB *sketch.SampleRecord
}

// Estimator estimates correlations from sketches.
// It is stateless apart from its logger and metrics collector and is safe for
// concurrent use.
type Estimator struct {
	logger  *Logger
	metrics MetricsCollector
}

// NewEstimator creates an Estimator.
func NewEstimator(optFns ...Option) *Estimator {
	o := applyOptions(optFns)
	return &Estimator{
		logger:  o.logger,
		metrics: o.metricsCollector,
	}
}

// Logger returns the estimator's logger.
func (e *Estimator) Logger() *Logger { return e.logger }

// Metrics returns the estimator's metrics collector.
func (e *Estimator) Metrics() MetricsCollector { return e.metrics }

// Estimate sketches both vectors of in with sk and estimates their correlation.
//
// f must be the family sk builds. Inner-product failures abort the estimate with
// an *ErrInnerProduct wrapping sketch.ErrIncompatibleSketch.
func (e *Estimator) Estimate(ctx context.Context, in Inputs, f sketch.Family, sk sketch.Sketcher) (*Estimation, error) {
	start := time.Now()
	res, err := e.estimate(ctx, in, f, sk)
	e.metrics.RecordEstimate(f, time.Since(start), err)

	size := 0
	if sk != nil {
		size = sk.SketchSize()
	}
	if err != nil {
		e.logger.LogEstimate(ctx, f, size, 0, err)
		return nil, err
	}
	e.logger.LogEstimate(ctx, f, size, res.Corr, nil)
	return res, nil
}

func (e *Estimator) estimate(ctx context.Context, in Inputs, f sketch.Family, sk sketch.Sketcher) (*Estimation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", sketch.ErrUnknownFamily, uint8(f))
	}
	if sk == nil || sk.Family() != f {
		return nil, fmt.Errorf("%w: want %s", ErrFamilyMismatch, f)
	}
	if len(in.A.Raw) != len(in.B.Raw) {
		return nil, fmt.Errorf("%w: vector lengths differ (%d != %d)", ErrInvalidInput, len(in.A.Raw), len(in.B.Raw))
	}

	sa, err := sk.Sketch(in.A.Raw)
	if err != nil {
		return nil, &ErrSketch{Family: f, View: "A", cause: err}
	}
	sb, err := sk.Sketch(in.B.Raw)
	if err != nil {
		return nil, &ErrSketch{Family: f, View: "B", cause: err}
	}

	res := &Estimation{Family: f, SketchA: sa, SketchB: sb}

	if f.Path() == sketch.PathRankMatch {
		pa, okA := sa.(sketch.Structural)
		pb, okB := sb.(sketch.Structural)
		if !okA || !okB {
			return nil, &ErrInnerProduct{Family: f, Term: "rank-match", cause: sketch.ErrIncompatibleSketch}
		}
		res.Corr, res.Matched = rankMatch(pa, pb)
		return res, nil
	}

	v, err := deriveViews(f, sk, in, sa, sb)
	if err != nil {
		return nil, err
	}

	var rec *records
	if f.Sampling() {
		pa, okA := sa.(sketch.Structural)
		pb, okB := sb.(sketch.Structural)
		if !okA || !okB {
			return nil, &ErrInnerProduct{Family: f, Term: "record", cause: sketch.ErrIncompatibleSketch}
		}
		ra, rb := sketch.RecordSample(pa), sketch.RecordSample(pb)
		rec = &records{a: ra, b: rb}
		res.RecordA, res.RecordB = &ra, &rb
	}

	m := &moments.Moments{}
	for _, t := range v.terms(m) {
		value, err := t.innerProduct(rec)
		if err != nil {
			return nil, &ErrInnerProduct{Family: f, Term: t.name, cause: err}
		}
		*t.out = value
	}

	res.Moments = m
	res.Corr = m.Correlation()
	return res, nil
}
