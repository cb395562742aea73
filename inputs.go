package corrsketch

import (
	"fmt"

	"github.com/hupe1980/corrsketch/vector"
)

// Inputs holds the six vectors an estimation sketches: each raw vector with its
// indicator and squared forms.
type Inputs struct {
	A vector.Derived
	B vector.Derived
}

// NewInputs validates a vector pair and derives its indicator and squared forms.
func NewInputs(a, b vector.Vector) (Inputs, error) {
	if len(a) != len(b) {
		return Inputs{}, fmt.Errorf("%w: vector lengths differ (%d != %d)", ErrInvalidInput, len(a), len(b))
	}
	if !a.Finite() || !b.Finite() {
		return Inputs{}, fmt.Errorf("%w: non-finite values", ErrInvalidInput)
	}
	return Inputs{A: vector.Derive(a), B: vector.Derive(b)}, nil
}

// Len returns the index domain size.
func (in Inputs) Len() int {
	return len(in.A.Raw)
}
