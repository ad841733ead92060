package backend

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/realm"
)

// Renderer is the offline-capture backend (spec §6: "variant of {null,
// portaudio, renderer}"): it never paces itself to wall-clock time, and
// Output appends each block's samples to an in-memory capture rather than
// writing to a device, so an embedder can drive the Engine for a fixed
// number of blocks and inspect exactly what was rendered (the basis for
// every scenario in spec §8 "Testable properties").
type Renderer struct {
	Left  []float32
	Right []float32
}

// NewRenderer builds an empty Renderer.
func NewRenderer() *Renderer { return &Renderer{} }

func (r *Renderer) Setup(root *realm.Realm) error { return nil }

func (r *Renderer) Cleanup() {}

func (r *Renderer) BeginBlock(ctx *Context) error { return nil }

func (r *Renderer) EndBlock(ctx *Context) error { return nil }

// Output appends buf's samples to the channel's capture slice. Events are
// not captured; the renderer is concerned with audio output only.
func (r *Renderer) Output(ctx *Context, channel Channel, buf *buffer.Buffer) error {
	if buf == nil {
		return nil
	}
	switch channel {
	case AudioLeft:
		r.Left = append(r.Left, buf.Float32()...)
	case AudioRight:
		r.Right = append(r.Right, buf.Float32()...)
	}
	return nil
}

// Reset discards everything captured so far, for reuse across scenarios.
func (r *Renderer) Reset() {
	r.Left = r.Left[:0]
	r.Right = r.Right[:0]
}
