package buffer

import "fmt"

// Arena is one contiguous backing allocation for a Program's buffers (spec
// §3 "BufferArena"). Buffers carve non-overlapping, fixed-offset slices out
// of it with Alloc; the arena outlives every block render that references
// it. Pooling/reuse-by-size across Programs is a Realm concern, not this
// package's (pkg/realm keeps a pool of Arenas and picks the smallest one
// that still fits a new Program).
//
// Grounded on pkg/dsp/buffer/writeahead.go (single fixed
// backing slice, explicit offset bookkeeping, no implicit growth on the
// render path).
type Arena struct {
	data   []byte
	offset int
}

// NewArena allocates a fresh arena of the given size. Allocation happens
// once, off the render thread, when a Program is built.
func NewArena(size int) *Arena {
	return &Arena{data: make([]byte, size)}
}

// Cap reports the arena's total byte capacity.
func (a *Arena) Cap() int { return len(a.data) }

// Used reports how many bytes have been carved out so far.
func (a *Arena) Used() int { return a.offset }

// Remaining reports how many bytes are left to carve.
func (a *Arena) Remaining() int { return len(a.data) - a.offset }

// Alloc carves the next `size` bytes off the arena and returns them as a
// region. Every call returns a disjoint slice (spec §3 invariant: "Two
// buffers sharing the same BufferArena region never overlap"). Panics on
// overflow: arena sizing is computed from the Spec before Programs are
// built, so running out mid-layout is a programmer error, not a runtime
// condition to recover from.
func (a *Arena) Alloc(size int) []byte {
	if size < 0 {
		panic("buffer: negative alloc size")
	}
	if a.offset+size > len(a.data) {
		panic(fmt.Sprintf("buffer: arena overflow: used=%d requested=%d cap=%d", a.offset, size, len(a.data)))
	}
	region := a.data[a.offset : a.offset+size]
	a.offset += size
	return region
}

// Reset rewinds the arena so it can be reused by a new Program of equal or
// smaller total buffer size. Reusing an arena never zeroes its bytes;
// callers must Clear each Buffer before first use (spec §3 invariant).
func (a *Arena) Reset() { a.offset = 0 }

// FitsSize reports whether this arena is large enough to serve a program
// requiring `size` bytes of buffers, and is the criterion a Realm's arena
// pool uses to pick the smallest arena >= the requested size.
func (a *Arena) FitsSize(size int) bool { return len(a.data) >= size }
