// Package buffer implements the typed, fixed-layout data areas shared
// between VM opcodes and processors (spec §3, §4.2). Every Buffer is a
// byte-region view into a BufferArena plus a BufferType describing how to
// interpret, clear, mix, and scale that region.
//
// Grounded on pkg/vst3/buffers.go (a typed, zero-copy view
// over a raw channel region reinterpreted via unsafe.Pointer) and
// pkg/dsp/buffer/writeahead.go (fixed backing region with explicit size
// bookkeeping, no implicit reallocation).
package buffer

import (
	"fmt"
	"unsafe"
)

// HostSystem is the minimal read-only view a BufferType needs to compute
// its own size. pkg/host.System satisfies this structurally so this
// package never imports pkg/host (avoids a cycle; host providers are a
// control-thread concern, sizing is a render-thread concern).
type HostSystem interface {
	BlockSize() int
	SampleRate() float64
}

// Type describes the semantics of a Buffer's byte region: how big it is,
// how to clear/mix/scale it. Mix and Mul report an error for buffer kinds
// where the operation is meaningless (spec §4.2: "fails" for event data).
type Type interface {
	// Size returns this instance's constant byte footprint for the given host.
	Size(host HostSystem) int
	// Clear resets region to this type's zero value.
	Clear(region []byte)
	// Mix performs dst := dst ⊕ src per the type's semantics.
	Mix(src, dst []byte) error
	// Mul performs buf := buf * factor in place.
	Mul(region []byte, factor float32) error
	// Name identifies the type for diagnostics and name->index maps.
	Name() string
}

// Setupable is implemented by buffer types that own OS-level primitives
// (PluginCondBuffer's wait condition) and need explicit lifecycle hooks.
type Setupable interface {
	Setup(region []byte) error
	Cleanup(region []byte)
}

// Buffer is a single typed region: a byte-slice view into a BufferArena
// plus the Type describing how to interpret it.
type Buffer struct {
	Type   Type
	region []byte

	// floatView is a zero-copy reinterpretation of region as float32s,
	// computed once on first use. The VM's hot path never allocates to
	// read or write float samples.
	floatView []float32
}

// New wraps an already-carved region with its Type. Callers obtain region
// via Arena.Alloc, never by allocating independently, so every Buffer's
// lifetime is tied to its owning arena (spec §3 "Buffer ... Data region
// lifetime = arena lifetime").
func New(t Type, region []byte) *Buffer {
	return &Buffer{Type: t, region: region}
}

// Region returns the raw backing bytes. Opcodes and processors read/write
// through this directly; the pointer is stable for the Buffer's lifetime.
func (b *Buffer) Region() []byte { return b.region }

// Clear resets the buffer to its type's zero value.
func (b *Buffer) Clear() { b.Type.Clear(b.region) }

// Mix performs dst(self) := self ⊕ src.
func (b *Buffer) Mix(src *Buffer) error { return b.Type.Mix(src.region, b.region) }

// Mul scales the buffer in place.
func (b *Buffer) Mul(factor float32) error { return b.Type.Mul(b.region, factor) }

// CopyFrom overwrites this buffer's region with src's, byte for byte
// (spec §4.4 COPY: "memmove same-size buffers").
func (b *Buffer) CopyFrom(src *Buffer) error {
	if len(src.region) != len(b.region) {
		return fmt.Errorf("buffer: CopyFrom size mismatch: dst=%d src=%d", len(b.region), len(src.region))
	}
	copy(b.region, src.region)
	return nil
}

// Float32 reinterprets the region as a []float32 without copying. Valid
// only for FloatAudioBlock and FloatControlValue buffers; the VM only
// calls this after checking the buffer's declared Type. The view is
// cached after the first call so repeated per-block access costs nothing.
func (b *Buffer) Float32() []float32 {
	if b.floatView == nil {
		n := len(b.region) / 4
		if n == 0 {
			return nil
		}
		b.floatView = unsafe.Slice((*float32)(unsafe.Pointer(&b.region[0])), n)
	}
	return b.floatView
}
