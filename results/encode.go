package results

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/corrsketch/codec"
	"github.com/hupe1980/corrsketch/moments"
	"github.com/hupe1980/corrsketch/sketch"
)

// ErrMalformed is returned when an encoded result set does not have the
// expected shape.
var ErrMalformed = errors.New("results: malformed result set")

// Encode serializes r with c.
func Encode(c codec.Codec, r Results) ([]byte, error) {
	doc := make(map[string]map[string]any, len(r))
	for key, cell := range r {
		entry := make(map[string]any, len(cell.Estimates)+1)
		if t := cell.Truth; t != nil {
			entry[TruthKey] = []Float{Float(t.IP), Float(t.Corr), Float(t.N), Float(t.Scale)}
		}
		for f, e := range cell.Estimates {
			entry[f.String()] = e.wire()
		}
		doc[key] = entry
	}
	return c.Marshal(doc)
}

// raw captures an undecoded value so it can be decoded with the same codec.
type raw []byte

func (r *raw) UnmarshalJSON(data []byte) error {
	*r = bytes.Clone(data)
	return nil
}

// Decode parses data written by Encode with the same codec.
func Decode(c codec.Codec, data []byte) (Results, error) {
	var doc map[string]map[string]raw
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	r := make(Results, len(doc))
	for key, entry := range doc {
		cell := r.Cell(key)
		for name, value := range entry {
			if name == TruthKey {
				t, err := decodeTruth(c, value)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, key, err)
				}
				cell.Truth = t
				continue
			}
			f, err := sketch.ParseFamily(name)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, key, err)
			}
			e, err := decodeEstimate(c, value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s/%s: %w", ErrMalformed, key, name, err)
			}
			cell.Estimates[f] = e
		}
	}
	return r, nil
}

// Nullable numbers are decoded through pointers: both codecs leave a nil
// pointer for null, which becomes NaN.
func decodeFloats(c codec.Codec, value []byte, want int) ([]float64, error) {
	var ptrs []*float64
	if err := c.Unmarshal(value, &ptrs); err != nil {
		return nil, err
	}
	if len(ptrs) != want {
		return nil, fmt.Errorf("got %d values, want %d", len(ptrs), want)
	}
	out := make([]float64, want)
	for i, p := range ptrs {
		out[i] = orNaN(p)
	}
	return out, nil
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func decodeTruth(c codec.Codec, value raw) (*moments.Truth, error) {
	v, err := decodeFloats(c, value, 4)
	if err != nil {
		return nil, fmt.Errorf("truth: %w", err)
	}
	return &moments.Truth{IP: v[0], Corr: v[1], N: v[2], Scale: v[3]}, nil
}

func decodeEstimate(c codec.Codec, value raw) (Estimate, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Scalar(math.NaN()), nil
	}
	if trimmed[0] == '[' {
		v, err := decodeFloats(c, trimmed, 3)
		if err != nil {
			return Estimate{}, fmt.Errorf("sampled estimate: %w", err)
		}
		return Sampled(v[0], v[1], v[2]), nil
	}
	var v *float64
	if err := c.Unmarshal(trimmed, &v); err != nil {
		return Estimate{}, err
	}
	return Scalar(orNaN(v)), nil
}
