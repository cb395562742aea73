package corrsketch

import (
	"github.com/hupe1980/corrsketch/moments"
	"github.com/hupe1980/corrsketch/sketch"
)

// views are the six sketches one moment estimate is composed of.
type views struct {
	a, b   sketch.Sketch
	ia, ib sketch.Sketch
	a2, b2 sketch.Sketch
}

// deriveViews builds the indicator and squared sketches of both sides.
//
// Structural families clone the retained positions of the primary sketch.
// Linear families re-sketch the derived vectors with the same sketcher.
func deriveViews(f sketch.Family, sk sketch.Sketcher, in Inputs, sa, sb sketch.Sketch) (views, error) {
	v := views{a: sa, b: sb}

	if f.Path() == sketch.PathStructural {
		pa, okA := sa.(sketch.Structural)
		pb, okB := sb.(sketch.Structural)
		if !okA || !okB {
			return views{}, &ErrSketch{Family: f, View: "structural", cause: sketch.ErrIncompatibleSketch}
		}
		v.ia = sketch.Derive(pa, sketch.Indicator)
		v.ib = sketch.Derive(pb, sketch.Indicator)
		v.a2 = sketch.Derive(pa, sketch.Square)
		v.b2 = sketch.Derive(pb, sketch.Square)
		return v, nil
	}

	targets := []struct {
		name string
		dst  *sketch.Sketch
		src  []float64
	}{
		{"indicatorA", &v.ia, in.A.Indicator},
		{"indicatorB", &v.ib, in.B.Indicator},
		{"squaredA", &v.a2, in.A.Squared},
		{"squaredB", &v.b2, in.B.Squared},
	}
	for _, t := range targets {
		s, err := sk.Sketch(t.src)
		if err != nil {
			return views{}, &ErrSketch{Family: f, View: t.name, cause: err}
		}
		*t.dst = s
	}
	return v, nil
}

// records are the sample records of the two sides of a sampling estimate.
type records struct {
	a, b sketch.SampleRecord
}

// term is one inner product of the moment tuple. fromA is true when x is
// derived from vector A, which decides the order of the sample records.
type term struct {
	name  string
	x, y  sketch.Sketch
	fromA bool
	out   *float64
}

func (v views) terms(m *moments.Moments) []term {
	return []term{
		{"ip", v.a, v.b, true, &m.IP},
		{"n", v.ia, v.ib, true, &m.N},
		{"sumA", v.a, v.ib, true, &m.SumA},
		{"sumB", v.b, v.ia, false, &m.SumB},
		{"sumA2", v.a2, v.ib, true, &m.SumA2},
		{"sumB2", v.b2, v.ia, false, &m.SumB2},
	}
}

func (t term) innerProduct(rec *records) (float64, error) {
	if rec == nil {
		return t.x.InnerProduct(t.y)
	}
	s, ok := t.x.(sketch.Sampler)
	if !ok {
		return 0, sketch.ErrIncompatibleSketch
	}
	own, peer := rec.a, rec.b
	if !t.fromA {
		own, peer = rec.b, rec.a
	}
	return s.InnerProductSampled(t.y, own, peer)
}
