// Package backend implements the Engine's device-facing Backend
// interface (spec §6 "Backend interface (variant of {null, portaudio,
// renderer} by configuration ...)"): setup/cleanup around the engine's
// lifetime, begin_block/end_block delimiting a render, and output()
// delivering one rendered channel per block.
//
// Grounded on pkg/framework/plugin/base.go for the
// setup(realm)/cleanup() pairing (a small lifecycle interface every
// plugin variant implements identically) and pkg/dsp/buffer/writeahead.go
// for the portaudio variant's producer/consumer buffering discipline.
package backend

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/realm"
)

// Channel identifies which sink output() is delivering (spec §6:
// "channel ∈ {AUDIO_LEFT, AUDIO_RIGHT, EVENTS}").
type Channel int

const (
	AudioLeft Channel = iota
	AudioRight
	Events
)

func (c Channel) String() string {
	switch c {
	case AudioLeft:
		return "AUDIO_LEFT"
	case AudioRight:
		return "AUDIO_RIGHT"
	case Events:
		return "EVENTS"
	default:
		return "UNKNOWN"
	}
}

// Context is the per-block handle a Backend renders against. The Engine
// builds one once per loop iteration and passes it unchanged through
// begin_block/output/end_block (spec §4.9 steps 5-9).
type Context struct {
	SamplePos uint64
}

// Backend is the Engine's device-facing sink (spec §6). Setup/Cleanup run
// on the control thread around the Engine's lifetime; BeginBlock/Output/
// EndBlock run on the RT thread once per block and must not allocate,
// lock, or block except where the interface explicitly allows it
// (EndBlock's time_scale pacing sleep).
type Backend interface {
	// Setup wires the backend to the root Realm it will render (spec §6
	// "setup(realm)").
	Setup(root *realm.Realm) error
	// Cleanup releases any device/OS resources Setup acquired.
	Cleanup()
	// BeginBlock opens one block's render. The Engine installs a scope
	// guard that calls EndBlock on any failure path between BeginBlock
	// and the explicit EndBlock call in step 9.
	BeginBlock(ctx *Context) error
	// EndBlock closes one block's render. Implementations may sleep here
	// to honor a configured time_scale (spec §6: "useful for null backend
	// pacing and offline rendering").
	EndBlock(ctx *Context) error
	// Output delivers one rendered sink buffer for channel.
	Output(ctx *Context, channel Channel, buf *buffer.Buffer) error
}

// sinkNames maps a Channel to the Realm-buffer name the Engine resolves
// before calling Output (spec §4.9 step 7: "sink:in:left, sink:in:right").
var sinkNames = map[Channel]string{
	AudioLeft:  "sink:in:left",
	AudioRight: "sink:in:right",
}

// SinkBufferName returns the Realm buffer name backing channel, or "" for
// a channel with no fixed sink (Events is delivered ad hoc, not through a
// named sink buffer).
func SinkBufferName(channel Channel) string {
	return sinkNames[channel]
}
