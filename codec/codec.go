// Package codec centralizes how experiment results are serialized.
//
// Checkpoints store the codec name in their header, so a checkpoint written
// with one codec is always decoded with the same one.
package codec

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownCodec is returned by Lookup for a name that is not registered.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Lookup is ByName with an error for unknown names. The empty name selects Default.
func Lookup(name string) (Codec, error) {
	if name == "" {
		return Default, nil
	}
	c, ok := ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownCodec, name, Names())
	}
	return c, nil
}

// Names lists the built-in codec names.
func Names() []string {
	names := []string{JSON{}.Name(), GoJSON{}.Name()}
	sort.Strings(names)
	return names
}
