package corrsketch

import (
	"github.com/hupe1980/corrsketch/results"
)

// MemorySize returns the effective memory of the two samples of a sampling
// estimate. Every view derived from a primary sketch shares its sample record,
// so the size does not depend on which view it is computed from.
func (e *Estimation) MemorySize() (a, b float64) {
	if e.RecordA == nil || e.RecordB == nil {
		return 0, 0
	}
	return e.RecordA.MemorySize(), e.RecordB.MemorySize()
}

// Record converts the estimation into the persisted result entry.
func (e *Estimation) Record() results.Estimate {
	if !e.Family.Sampling() {
		return results.Scalar(e.Corr)
	}
	memA, memB := e.MemorySize()
	return results.Sampled(e.Corr, memA, memB)
}
