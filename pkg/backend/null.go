package backend

import (
	"time"

	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/realm"
)

// Null is the no-device backend (spec §6: "variant of {null, portaudio,
// renderer}"). Output discards every buffer; EndBlock optionally sleeps
// to pace the loop to wall-clock time, which is what lets a null-backed
// Engine double as an offline speed-test run (TimeScale 0) or a
// real-time-paced dry run (TimeScale 1).
type Null struct {
	// BlockDuration is one block's wall-clock duration at the configured
	// sample rate (block_size/sample_rate). Zero disables pacing.
	BlockDuration time.Duration
	// TimeScale multiplies BlockDuration before sleeping; 1.0 paces to
	// real time, 0 (the zero value) runs as fast as possible.
	TimeScale float64
}

// NewNull builds a Null backend. Call SetPacing to enable time_scale
// sleeping; the zero value runs unpaced.
func NewNull() *Null { return &Null{} }

// SetPacing configures EndBlock's sleep (spec §6: "Implementations may
// sleep during end_block to honor a configurable time_scale").
func (n *Null) SetPacing(blockDuration time.Duration, timeScale float64) {
	n.BlockDuration = blockDuration
	n.TimeScale = timeScale
}

func (n *Null) Setup(root *realm.Realm) error { return nil }

func (n *Null) Cleanup() {}

func (n *Null) BeginBlock(ctx *Context) error { return nil }

func (n *Null) EndBlock(ctx *Context) error {
	if n.TimeScale > 0 && n.BlockDuration > 0 {
		time.Sleep(time.Duration(float64(n.BlockDuration) * n.TimeScale))
	}
	return nil
}

func (n *Null) Output(ctx *Context, channel Channel, buf *buffer.Buffer) error {
	return nil
}
