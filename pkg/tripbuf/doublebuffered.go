package tripbuf

import "sync/atomic"

// DoubleBuffered implements the generic two-state replay mechanism named
// in spec.md's component table as "DoubleBufferedStateManager": a
// per-processor mutable state value mutated from the control thread and
// read from the RT thread, where each mutated instance is guaranteed to
// be observed exactly once (spec §8 round-trip law: "Applying the same
// mutation twice ... equals applying it once plus the identity;
// consumers see mutations exactly once per state instance").
//
// No teacher file models this; it is built directly from spec.md's
// ordering guarantee (§5: "a processor's first process_block after a
// parameter or message change may or may not observe the change;
// subsequent calls are guaranteed to observe the most recent state"). It
// does not use TripleBuffer: it holds a single atomic pointer to the
// latest version, swapped by compare-and-swap, the same atomic-pointer
// technique TripleBuffer uses.
type DoubleBuffered[T any] struct {
	slot atomic.Pointer[version[T]]
}

type version[T any] struct {
	value      T
	generation uint64
	observed   atomic.Bool
}

// NewDoubleBuffered creates a manager seeded with an initial state value.
func NewDoubleBuffered[T any](initial T) *DoubleBuffered[T] {
	d := &DoubleBuffered[T]{}
	d.slot.Store(&version[T]{value: initial})
	return d
}

// Mutate applies fn to the current value and publishes the result as a
// new generation. Safe to call from multiple control-thread callers; uses
// a CAS retry loop since fn must see the value it is actually replacing.
func (d *DoubleBuffered[T]) Mutate(fn func(T) T) {
	for {
		old := d.slot.Load()
		next := &version[T]{value: fn(old.value), generation: old.generation + 1}
		if d.slot.CompareAndSwap(old, next) {
			return
		}
	}
}

// Load returns the current value unconditionally, regardless of whether
// it has already been observed. Safe for repeated per-block reads.
func (d *DoubleBuffered[T]) Load() T {
	return d.slot.Load().value
}

// Observe returns the current value plus whether this is the first
// Observe call to see this particular generation. A processor's
// process_block calls Observe once per block to know whether a parameter
// or message mutation landed since the last block (spec §5 ordering
// guarantee), without having to diff the value itself.
func (d *DoubleBuffered[T]) Observe() (value T, fresh bool) {
	v := d.slot.Load()
	return v.value, v.observed.CompareAndSwap(false, true)
}

// Generation returns the current value's generation counter, for
// diagnostics and the round-trip test law.
func (d *DoubleBuffered[T]) Generation() uint64 {
	return d.slot.Load().generation
}
