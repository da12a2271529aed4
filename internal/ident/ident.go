// Package ident generates record identifiers.
package ident

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// randomUUID is swapped in tests to exercise the fallback path.
var randomUUID = uuid.NewRandom

// New returns a random v4 UUID string. When the secure random source fails it
// falls back to a pseudo-random identifier with the same shape.
func New() string {
	id, err := randomUUID()
	if err == nil {
		return id.String()
	}
	return fallbackID()
}

func fallbackID() string {
	const hex = "0123456789abcdef"
	const pattern = "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"

	out := make([]byte, len(pattern))
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case 'x':
			out[i] = hex[rand.IntN(16)]
		case 'y':
			out[i] = hex[rand.IntN(4)|0x8]
		default:
			out[i] = pattern[i]
		}
	}
	return string(out)
}
