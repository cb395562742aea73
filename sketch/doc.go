// Package sketch implements the sketch families whose inner-product estimates
// drive correlation estimation.
//
// A Sketcher is configured once per (storage size, family) and sketches both
// vectors of a pair with the same random choices, so their sketches are
// comparable:
//
//	sizes, _ := sketch.SampleSizes(3, sketch.ModeCorr, 500)
//	sk, _ := sketch.NewSketcher(sizes, sketch.FamilyCS, 3, seed)
//	a, _ := sk.Sketch(vecA)
//	b, _ := sk.Sketch(vecB)
//	ip, err := a.InnerProduct(b)
//
// # Families
//
//   - jl: dense ±1 random projection (linear)
//   - cs: count sketch with t rows, median-of-rows estimate (linear)
//   - wmh: weighted MinHash via improved consistent weighted sampling (hash)
//   - kmv: k minimum coordinate hashes (order statistics)
//   - mh: k independent MinHash slots (order statistics)
//   - ps: coordinated priority sampling on squared values (sampling)
//   - ts: coordinated threshold sampling on squared values (sampling)
//
// Order-statistics and sampling sketches implement Structural: their retained
// positions depend on the values, so auxiliary views (indicator, squared) are
// built with Derive instead of re-sketching a different vector. Sampling
// sketches also implement Sampler and need the SampleRecord of the values they
// were built from to compute inclusion probabilities.
package sketch
