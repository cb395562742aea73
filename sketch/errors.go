package sketch

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFamily is returned for a family name or value that is not supported.
	ErrUnknownFamily = errors.New("sketch: unknown family")

	// ErrInvalidSize is returned when a sketch size or storage budget is not positive.
	ErrInvalidSize = errors.New("sketch: invalid size")

	// ErrInvalidVector is returned when a vector contains NaN or infinite values.
	ErrInvalidVector = errors.New("sketch: vector contains non-finite values")

	// ErrIncompatibleSketch is returned when an inner product is requested between
	// sketches that were not built by the same family with the same parameters.
	ErrIncompatibleSketch = errors.New("sketch: incompatible sketches")
)

// IncompatibleError describes why two sketches cannot be combined.
type IncompatibleError struct {
	Family Family
	Reason string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("sketch: incompatible %s sketches: %s", e.Family, e.Reason)
}

// Is makes errors.Is(err, ErrIncompatibleSketch) hold.
func (e *IncompatibleError) Is(target error) bool {
	return target == ErrIncompatibleSketch
}

func incompatible(f Family, format string, args ...any) error {
	return &IncompatibleError{Family: f, Reason: fmt.Sprintf(format, args...)}
}
