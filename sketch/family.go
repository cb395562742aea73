package sketch

import (
	"fmt"
	"strings"
)

// Family identifies a sketch construction.
type Family uint8

const (
	FamilyKMV Family = iota + 1
	FamilyMH
	FamilyWMH
	FamilyJL
	FamilyCS
	FamilyPS
	FamilyTS
)

// Path is the estimation path a family takes.
type Path uint8

const (
	// PathRankMatch estimates correlation directly from hash-matched retained
	// values instead of composing moments.
	PathRankMatch Path = iota + 1
	// PathStructural composes moments; auxiliary sketches are structural clones
	// of the primary sketch with transformed values.
	PathStructural
	// PathResketch composes moments; auxiliary sketches re-sketch the indicator
	// and squared vectors with the same random choices.
	PathResketch
)

var familyNames = map[Family]string{
	FamilyKMV: "kmv",
	FamilyMH:  "mh",
	FamilyWMH: "wmh",
	FamilyJL:  "jl",
	FamilyCS:  "cs",
	FamilyPS:  "ps",
	FamilyTS:  "ts",
}

// Families returns every supported family in declaration order.
func Families() []Family {
	return []Family{FamilyKMV, FamilyMH, FamilyWMH, FamilyJL, FamilyCS, FamilyPS, FamilyTS}
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint8(f))
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	_, ok := familyNames[f]
	return ok
}

// Path returns the estimation path of f.
func (f Family) Path() Path {
	switch f {
	case FamilyKMV:
		return PathRankMatch
	case FamilyJL, FamilyCS, FamilyWMH:
		return PathResketch
	default:
		return PathStructural
	}
}

// Sampling reports whether f keeps a weighted random sample of entries.
// Sampling families report memory-size metrics alongside their estimate.
func (f Family) Sampling() bool {
	return f == FamilyPS || f == FamilyTS
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFamily, uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFamily resolves a family name.
func ParseFamily(name string) (Family, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range familyNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
}

// ParseFamilies resolves a list of names separated by sep, e.g. "cs+ps+kmv".
func ParseFamilies(list, sep string) ([]Family, error) {
	var out []Family
	for _, name := range strings.Split(list, sep) {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := ParseFamily(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty family list", ErrUnknownFamily)
	}
	return out, nil
}
