package corrsketch

import (
	"github.com/hupe1980/corrsketch/moments"
	"github.com/hupe1980/corrsketch/sketch"
)

// rankMatch correlates the values two structural sketches retained for the same
// coordinate hashes. It returns the correlation and the number of matched pairs.
// Fewer than two matches give NaN.
func rankMatch(a, b sketch.Structural) (float64, int) {
	index := make(map[uint64]float64, a.Len())
	for i, h := range a.Hashes() {
		index[h] = a.Values()[i]
	}
	var xs, ys []float64
	for i, h := range b.Hashes() {
		if x, ok := index[h]; ok {
			xs = append(xs, x)
			ys = append(ys, b.Values()[i])
		}
	}
	return moments.Pearson(xs, ys), len(xs)
}
