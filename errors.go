package corrsketch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/corrsketch/sketch"
)

var (
	// ErrInvalidInput is returned when the two vectors cannot be compared.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFamilyMismatch is returned when the sketcher builds a different family
	// than the one requested.
	ErrFamilyMismatch = errors.New("sketcher family mismatch")
)

// ErrInnerProduct indicates that one of the inner products an estimate is
// composed of could not be computed.
//
// The original underlying error can be accessed via errors.Unwrap; it usually
// wraps sketch.ErrIncompatibleSketch.
type ErrInnerProduct struct {
	Family sketch.Family
	Term   string
	cause  error
}

func (e *ErrInnerProduct) Error() string {
	return fmt.Sprintf("%s: inner product %s failed: %v", e.Family, e.Term, e.cause)
}

func (e *ErrInnerProduct) Unwrap() error { return e.cause }

// ErrSketch indicates that a vector could not be sketched.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrSketch struct {
	Family sketch.Family
	View   string
	cause  error
}

func (e *ErrSketch) Error() string {
	return fmt.Sprintf("%s: sketching %s failed: %v", e.Family, e.View, e.cause)
}

func (e *ErrSketch) Unwrap() error { return e.cause }
