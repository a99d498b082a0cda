// Package codec encodes snapshot manifests.
//
// The codec name is recorded next to every manifest, so a graph written with
// one codec is always read back with the same one, whatever the current
// default is.
package codec

import (
	"errors"
	"fmt"
)

// ErrUnknownCodec is returned by Lookup for names no built-in codec has.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec encodes and decodes values. Implementations must be safe for
// concurrent use.
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
	case "yaml":
		return YAML{}, true
	default:
		return nil, false
	}
}

// Lookup is ByName with an error for unknown names.
func Lookup(name string) (Codec, error) {
	c, ok := ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// MustMarshal panics if c cannot encode v. A nil c uses Default.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
