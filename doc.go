// Package corrsketch estimates the Pearson correlation of two sparse vectors
// from small sketches of each vector.
//
// Every sketch family estimates inner products. Correlation over the joint
// support follows from six of them:
//
//	ip    = ⟨A, B⟩       n     = ⟨1_A, 1_B⟩
//	sumA  = ⟨A, 1_B⟩     sumB  = ⟨B, 1_A⟩
//	sumA2 = ⟨A², 1_B⟩    sumB2 = ⟨B², 1_A⟩
//
// The kmv family instead correlates the values its two sketches retained for
// the same coordinates.
//
// # Quick Start
//
//	in, _ := corrsketch.NewInputs(a, b)
//	sizes, _ := sketch.SampleSizes(3, sketch.ModeIP, 500)
//	sk, _ := sketch.NewSketcher(sizes, sketch.FamilyPS, 3, seed)
//
//	est := corrsketch.NewEstimator(corrsketch.WithLogger(corrsketch.NewTextLogger(slog.LevelInfo)))
//	res, err := est.Estimate(ctx, in, sketch.FamilyPS, sk)
//	fmt.Println(res.Corr, res.Record())
//
// Sampling families (ps, ts) also report the effective memory of their two
// samples; see Estimation.Record.
//
// The experiment package sweeps storage budgets and trials and checkpoints
// the outcomes through the results and blobstore packages.
package corrsketch
