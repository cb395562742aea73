package experiment

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/corrsketch"
	"github.com/hupe1980/corrsketch/datagen"
	"github.com/hupe1980/corrsketch/moments"
	"github.com/hupe1980/corrsketch/results"
	"github.com/hupe1980/corrsketch/sketch"
)

// Checkpointer persists the result set after each storage size.
// *results.Checkpointer implements it.
type Checkpointer interface {
	Name() string
	Save(ctx context.Context, r results.Results) error
}

// SketcherFunc builds the sketcher of one family. sketch.NewSketcher is the
// default.
type SketcherFunc func(sizes sketch.Sizes, f sketch.Family, t int, seed uint64) (sketch.Sketcher, error)

type options struct {
	logger        *corrsketch.Logger
	metrics       corrsketch.MetricsCollector
	estimator     *corrsketch.Estimator
	prior         results.Results
	progressEvery time.Duration
	newSketcher   SketcherFunc
}

// Option configures a Runner.
type Option func(*options)

// WithLogger sets the logger. nil disables logging.
func WithLogger(l *corrsketch.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = corrsketch.NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector. nil disables metrics.
func WithMetricsCollector(mc corrsketch.MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = corrsketch.NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithEstimator sets the estimator. By default the runner creates one sharing
// its logger and metrics collector.
func WithEstimator(e *corrsketch.Estimator) Option {
	return func(o *options) {
		o.estimator = e
	}
}

// WithPrior sets a read-only result set whose estimates are copied instead of
// recomputed.
func WithPrior(prior results.Results) Option {
	return func(o *options) {
		o.prior = prior
	}
}

// WithProgressEvery limits progress log lines to one per interval.
func WithProgressEvery(d time.Duration) Option {
	return func(o *options) {
		o.progressEvery = d
	}
}

// WithSketcherFunc replaces the sketcher constructor.
func WithSketcherFunc(fn SketcherFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.newSketcher = fn
		}
	}
}

// Runner executes an experiment. A Runner is not safe for concurrent use.
type Runner struct {
	cfg      Config
	cp       Checkpointer
	logger   *corrsketch.Logger
	metrics  corrsketch.MetricsCollector
	est      *corrsketch.Estimator
	prior    results.Results
	progress *rate.Sometimes
	sketcher SketcherFunc
}

// NewRunner validates cfg and creates a Runner checkpointing through cp.
func NewRunner(cfg Config, cp Checkpointer, optFns ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, fmt.Errorf("%w: checkpointer is required", ErrInvalidConfig)
	}

	o := options{
		logger:        corrsketch.NoopLogger(),
		metrics:       corrsketch.NoopMetricsCollector{},
		progressEvery: 10 * time.Second,
		newSketcher:   sketch.NewSketcher,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.estimator == nil {
		o.estimator = corrsketch.NewEstimator(
			corrsketch.WithLogger(o.logger),
			corrsketch.WithMetricsCollector(o.metrics),
		)
	}

	return &Runner{
		cfg:      cfg,
		cp:       cp,
		logger:   o.logger,
		metrics:  o.metrics,
		est:      o.estimator,
		prior:    o.prior,
		progress: &rate.Sometimes{First: 1, Interval: o.progressEvery},
		sketcher: o.newSketcher,
	}, nil
}

// Run executes every trial and returns the result set.
//
// Estimation failures are logged and leave the family's entry missing from
// the cell. Checkpoint failures and context cancellation abort the run; the
// returned result set then holds everything computed so far.
func (r *Runner) Run(ctx context.Context) (results.Results, error) {
	res := results.New()
	for trial := 0; trial < r.cfg.Iterations; trial++ {
		if err := r.runTrial(ctx, res, trial); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (r *Runner) runTrial(ctx context.Context, res results.Results, trial int) error {
	start := time.Now()
	defer func() { r.metrics.RecordTrial(time.Since(start)) }()

	pair, err := datagen.GeneratePair(r.cfg.Data(), uint64(trial))
	if err != nil {
		return fmt.Errorf("experiment: trial %d: %w", trial, err)
	}
	in, err := corrsketch.NewInputs(pair.A, pair.B)
	if err != nil {
		return fmt.Errorf("experiment: trial %d: %w", trial, err)
	}
	truth, err := moments.Exact(pair.A, pair.B)
	if err != nil {
		return fmt.Errorf("experiment: trial %d: %w", trial, err)
	}
	r.logger.LogTrial(ctx, trial, truth.Corr, truth.N)

	log := r.logger.WithTrial(trial)
	for _, storage := range r.cfg.StorageSizes() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := results.Key(storage, r.cfg.Overlap, trial)
		res.SetTruth(key, truth)

		sizes, err := sketch.SampleSizes(r.cfg.T, r.cfg.Mode, storage)
		if err != nil {
			return fmt.Errorf("experiment: storage %d: %w", storage, err)
		}
		r.runCell(ctx, log.WithStorage(storage), res, in, key, sizes, trial)

		if err := r.checkpoint(ctx, res); err != nil {
			return err
		}
		r.progress.Do(func() {
			r.logger.InfoContext(ctx, "progress",
				"trial", trial,
				"iterations", r.cfg.Iterations,
				"storage", storage,
				"estimates", res.Len(),
			)
		})
	}
	return nil
}

func (r *Runner) runCell(ctx context.Context, log *corrsketch.Logger, res results.Results, in corrsketch.Inputs, key string, sizes sketch.Sizes, trial int) {
	for _, f := range r.cfg.Families {
		if !r.cfg.Runs(f, trial) {
			log.LogSkip(ctx, f, key, string(corrsketch.SkipTrialLimit))
			r.metrics.RecordSkip(f, corrsketch.SkipTrialLimit)
			continue
		}
		if cached, ok := r.prior.Lookup(key, f); ok {
			res.Set(key, f, cached)
			log.LogSkip(ctx, f, key, string(corrsketch.SkipCached))
			r.metrics.RecordSkip(f, corrsketch.SkipCached)
			continue
		}

		sk, err := r.sketcher(sizes, f, r.cfg.T, uint64(trial))
		if err != nil {
			log.ErrorContext(ctx, "sketcher failed", "family", f.String(), "key", key, "error", err)
			r.metrics.RecordEstimate(f, 0, err)
			continue
		}
		est, err := r.est.Estimate(ctx, in, f, sk)
		if err != nil {
			// Already logged and counted by the estimator.
			continue
		}
		res.Set(key, f, est.Record())
		log.DebugContext(ctx, "estimate recorded",
			"family", f.String(),
			"key", key,
			"sketch_size", sk.SketchSize(),
			"corr", est.Corr,
			"true_corr", res[key].Truth.Corr,
		)
	}
}

func (r *Runner) checkpoint(ctx context.Context, res results.Results) error {
	start := time.Now()
	err := r.cp.Save(ctx, res)
	r.metrics.RecordCheckpoint(time.Since(start), err)
	r.logger.LogCheckpoint(ctx, r.cp.Name(), res.Len(), err)
	if err != nil {
		return fmt.Errorf("experiment: checkpoint: %w", err)
	}
	return nil
}
