package sketch

import (
	"fmt"
	"strings"
)

// Mode selects how a storage budget is split between sketches.
type Mode uint8

const (
	// ModeIP budgets a single sketch per vector (inner-product estimation).
	ModeIP Mode = iota + 1
	// ModeCorr budgets everything correlation estimation keeps per vector.
	// Linear families store three independent sketches (raw, indicator,
	// squared); structural families derive their auxiliary views from one sample.
	ModeCorr
)

func (m Mode) String() string {
	switch m {
	case ModeIP:
		return "ip"
	case ModeCorr:
		return "corr"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(m))
	}
}

// ParseMode resolves "ip" or "corr".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ip":
		return ModeIP, nil
	case "corr":
		return ModeCorr, nil
	default:
		return 0, fmt.Errorf("sketch: unknown mode %q", s)
	}
}

// Sizes holds the per-family sketch size for one storage budget.
type Sizes struct {
	WMH int
	KMV int
	MH  int
	JL  int
	CS  int // total counters; each of the t rows has CS/t buckets
	PS  int
	TS  int
}

// For returns the size of family f.
func (s Sizes) For(f Family) int {
	switch f {
	case FamilyWMH:
		return s.WMH
	case FamilyKMV:
		return s.KMV
	case FamilyMH:
		return s.MH
	case FamilyJL:
		return s.JL
	case FamilyCS:
		return s.CS
	case FamilyPS:
		return s.PS
	case FamilyTS:
		return s.TS
	default:
		return 0
	}
}

// SampleSizes converts a storage budget, measured in dense array slots, into a
// sketch size per family.
//
// A linear counter costs one slot. A retained (hash, value) entry costs
// MemoryOverhead slots. A weighted MinHash slot stores a coordinate, a level
// and a value and costs two slots.
func SampleSizes(t int, mode Mode, storage int) (Sizes, error) {
	if storage <= 0 {
		return Sizes{}, fmt.Errorf("%w: storage size %d", ErrInvalidSize, storage)
	}
	if t <= 0 {
		return Sizes{}, fmt.Errorf("%w: count sketch rows %d", ErrInvalidSize, t)
	}
	linear := storage
	switch mode {
	case ModeIP:
	case ModeCorr:
		linear = storage / 3
	default:
		return Sizes{}, fmt.Errorf("sketch: unknown mode %d", uint8(mode))
	}
	sampled := atLeast(int(float64(storage)/MemoryOverhead), 1)
	cs := atLeast(linear, t)
	return Sizes{
		WMH: atLeast(linear/2, 1),
		KMV: sampled,
		MH:  sampled,
		JL:  atLeast(linear, 1),
		CS:  cs - cs%t,
		PS:  sampled,
		TS:  sampled,
	}, nil
}

func atLeast(n, floor int) int {
	if n < floor {
		return floor
	}
	return n
}
