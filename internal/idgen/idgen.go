// Package idgen allocates the unique 64-bit ids the spec requires for
// processors and perf spans without mandating a specific generator. We
// derive them from a v4 UUID's low 8 bytes rather than a plain counter so
// ids stay unique across control-thread callers that build Specs
// concurrently (google/uuid already handles the entropy/collision concern).
package idgen

import "github.com/google/uuid"

// Next returns a new pseudo-random 64-bit id, never zero.
func Next() uint64 {
	for {
		u := uuid.New()
		var v uint64
		for i := 8; i < 16; i++ {
			v = v<<8 | uint64(u[i])
		}
		if v != 0 {
			return v
		}
	}
}
