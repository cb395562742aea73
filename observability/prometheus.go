// Package observability exports run metrics to Prometheus.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/corrsketch"
	"github.com/hupe1980/corrsketch/sketch"
)

const namespace = "corrsketch"

// PrometheusCollector implements corrsketch.MetricsCollector.
type PrometheusCollector struct {
	estimateLatency   *prometheus.HistogramVec
	estimates         *prometheus.CounterVec
	skips             *prometheus.CounterVec
	trialLatency      prometheus.Histogram
	checkpointLatency prometheus.Histogram
	checkpoints       *prometheus.CounterVec
}

// NewPrometheusCollector creates the collector and registers its metrics with
// reg. A nil reg selects prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		estimateLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimate_duration_seconds",
			Help:      "Latency of one correlation estimate",
			Buckets:   prometheus.DefBuckets,
		}, []string{"family"}),
		estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimates_total",
			Help:      "Estimates by family and status",
		}, []string{"family", "status"}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_estimates_total",
			Help:      "Estimates not computed, by family and reason",
		}, []string{"family", "reason"}),
		trialLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_duration_seconds",
			Help:      "Latency of one trial across all storage sizes",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		checkpointLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkpoint_duration_seconds",
			Help:      "Latency of checkpoint writes",
			Buckets:   prometheus.DefBuckets,
		}),
		checkpoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoints_total",
			Help:      "Checkpoint writes by status",
		}, []string{"status"}),
	}

	for _, m := range []prometheus.Collector{
		c.estimateLatency,
		c.estimates,
		c.skips,
		c.trialLatency,
		c.checkpointLatency,
		c.checkpoints,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordEstimate implements corrsketch.MetricsCollector.
func (c *PrometheusCollector) RecordEstimate(f sketch.Family, d time.Duration, err error) {
	c.estimateLatency.WithLabelValues(f.String()).Observe(d.Seconds())
	c.estimates.WithLabelValues(f.String(), status(err)).Inc()
}

// RecordSkip implements corrsketch.MetricsCollector.
func (c *PrometheusCollector) RecordSkip(f sketch.Family, reason corrsketch.SkipReason) {
	c.skips.WithLabelValues(f.String(), string(reason)).Inc()
}

// RecordTrial implements corrsketch.MetricsCollector.
func (c *PrometheusCollector) RecordTrial(d time.Duration) {
	c.trialLatency.Observe(d.Seconds())
}

// RecordCheckpoint implements corrsketch.MetricsCollector.
func (c *PrometheusCollector) RecordCheckpoint(d time.Duration, err error) {
	c.checkpointLatency.Observe(d.Seconds())
	c.checkpoints.WithLabelValues(status(err)).Inc()
}

var _ corrsketch.MetricsCollector = (*PrometheusCollector)(nil)
