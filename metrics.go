package corrsketch

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/corrsketch/sketch"
)

// SkipReason explains why a family was not estimated for a cell.
type SkipReason string

const (
	// SkipCached means the estimate was copied from prior results.
	SkipCached SkipReason = "cached"
	// SkipTrialLimit means the family's trial limit was reached.
	SkipTrialLimit SkipReason = "trial-limit"
)

// MetricsCollector defines an interface for collecting operational metrics.
// The observability package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordEstimate is called after each estimation.
	// err is nil if successful.
	RecordEstimate(f sketch.Family, duration time.Duration, err error)

	// RecordSkip is called for each family a cell did not estimate.
	RecordSkip(f sketch.Family, reason SkipReason)

	// RecordTrial is called after all storage sizes of a trial are done.
	RecordTrial(duration time.Duration)

	// RecordCheckpoint is called after each checkpoint write.
	RecordCheckpoint(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEstimate(sketch.Family, time.Duration, error) {}
func (NoopMetricsCollector) RecordSkip(sketch.Family, SkipReason)              {}
func (NoopMetricsCollector) RecordTrial(time.Duration)                         {}
func (NoopMetricsCollector) RecordCheckpoint(time.Duration, error)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	EstimateCount      atomic.Int64
	EstimateErrors     atomic.Int64
	EstimateTotalNanos atomic.Int64
	CachedCount        atomic.Int64
	LimitedCount       atomic.Int64
	TrialCount         atomic.Int64
	CheckpointCount    atomic.Int64
	CheckpointErrors   atomic.Int64
}

// RecordEstimate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEstimate(_ sketch.Family, duration time.Duration, err error) {
	b.EstimateCount.Add(1)
	b.EstimateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EstimateErrors.Add(1)
	}
}

// RecordSkip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkip(_ sketch.Family, reason SkipReason) {
	switch reason {
	case SkipCached:
		b.CachedCount.Add(1)
	case SkipTrialLimit:
		b.LimitedCount.Add(1)
	}
}

// RecordTrial implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrial(time.Duration) {
	b.TrialCount.Add(1)
}

// RecordCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckpoint(_ time.Duration, err error) {
	b.CheckpointCount.Add(1)
	if err != nil {
		b.CheckpointErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EstimateCount:    b.EstimateCount.Load(),
		EstimateErrors:   b.EstimateErrors.Load(),
		EstimateAvgNanos: b.getAvgEstimateNanos(),
		CachedCount:      b.CachedCount.Load(),
		LimitedCount:     b.LimitedCount.Load(),
		TrialCount:       b.TrialCount.Load(),
		CheckpointCount:  b.CheckpointCount.Load(),
		CheckpointErrors: b.CheckpointErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgEstimateNanos() int64 {
	count := b.EstimateCount.Load()
	if count == 0 {
		return 0
	}
	return b.EstimateTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EstimateCount    int64
	EstimateErrors   int64
	EstimateAvgNanos int64
	CachedCount      int64
	LimitedCount     int64
	TrialCount       int64
	CheckpointCount  int64
	CheckpointErrors int64
}
