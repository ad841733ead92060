// Package tripbuf implements the lock-free {next, current, old}
// atomic-pointer handoff that recurs across the engine (spec §5, §9
// "Triple-buffering idiom"). TripleBuffer carries the Program swap in
// each Realm and the engine's out-messages MessageQueue. Per-processor
// parameter bags use this package's DoubleBuffered instead, and no
// per-processor state blob is handed across threads through a
// TripleBuffer.
//
// Grounded on pkg/framework/state/manager.go (atomic
// pointer swap for cross-thread state handoff) generalized to Go generics
// and to the full three-slot cycle the spec describes, since the prior implementation
// only needed a single producer/consumer pointer swap and this domain
// needs the extra "old" stage for asynchronous reclamation (pump thread /
// control-thread destruction).
package tripbuf

import "sync/atomic"

// TripleBuffer is a lock-free publish/acquire primitive for one
// immutable-per-version value of type T, shared by exactly one producer
// (control thread) and one consumer (RT thread), with an optional third
// party (pump thread, control-thread maintenance) reclaiming displaced
// values out of the "old" slot.
type TripleBuffer[T any] struct {
	next    atomic.Pointer[T]
	current atomic.Pointer[T]
	old     atomic.Pointer[T]
}

// New returns a TripleBuffer with no published value.
func New[T any]() *TripleBuffer[T] { return &TripleBuffer[T]{} }

// Publish stores v into the "next" slot, returning whatever value was
// already waiting there unconsumed (the control thread is responsible for
// destroying/reusing that displaced value — spec §9: "returns displaced
// value for destruction on the control thread").
func (b *TripleBuffer[T]) Publish(v *T) *T {
	return b.next.Swap(v)
}

// Acquire is the RT-thread read path. If the "old" slot is empty, it
// promotes "next" to "current" (demoting whatever was current into
// "old"), per spec §9: "acquire() -> Option<&T> (atomically promotes next
// to current when old is empty)". Returns the current value, or nil if
// none has ever been published.
func (b *TripleBuffer[T]) Acquire() *T {
	if b.old.Load() == nil {
		if n := b.next.Swap(nil); n != nil {
			if displaced := b.current.Swap(n); displaced != nil {
				b.old.Store(displaced)
			}
		}
	}
	return b.current.Load()
}

// Current returns the last-acquired value without attempting promotion.
func (b *TripleBuffer[T]) Current() *T { return b.current.Load() }

// TakeOld atomically takes and clears the "old" slot, for whichever
// off-RT-thread party is responsible for reclaiming displaced values
// (control-thread run_maintenance for Program/state blobs; the pump
// thread for the out-messages MessageQueue).
func (b *TripleBuffer[T]) TakeOld() *T { return b.old.Swap(nil) }

// Recycle stores v into "next", used by the pump thread after draining a
// MessageQueue taken via TakeOld to hand the now-empty queue back for
// reuse (spec §4.3: "hands the empty queue back as the next slot").
// Returns whatever was already in "next" (nil in the steady-state message
// queue cycle, since Acquire just emptied it).
func (b *TripleBuffer[T]) Recycle(v *T) *T { return b.next.Swap(v) }

// Clear forcibly empties all three slots at once, returning whatever each
// held, for full teardown (spec §4.7 "clear_programs forcibly deactivates
// all three slots").
func (b *TripleBuffer[T]) Clear() (next, current, old *T) {
	return b.next.Swap(nil), b.current.Swap(nil), b.old.Swap(nil)
}
