package backend

import (
	"github.com/gordonklaus/portaudio"

	"github.com/rimewave/audioproc/internal/status"
	dspbuffer "github.com/rimewave/audioproc/pkg/dsp/buffer"
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/realm"
)

// PortAudio is the live-device backend (spec §6: "variant of {null,
// portaudio, renderer}"). It never calls the PortAudio C API from
// Output itself — that call happens from the stream's own callback
// goroutine via the portaudio package's internal scheduling, with this
// side of the boundary only ever touching the lock-free
// dsp/buffer.WriteAheadBuffer built for exactly this
// producer/consumer split (pkg/dsp/buffer/writeahead.go), so the RT
// thread's Output call is a bounded, allocation-free ring write.
type PortAudio struct {
	SampleRate      float64
	FramesPerBuffer int

	stream *portaudio.Stream
	left   *dspbuffer.WriteAheadBuffer
	right  *dspbuffer.WriteAheadBuffer
	frame  []float32
}

// NewPortAudio builds a PortAudio backend for the given sample rate and
// block size; Setup opens the default output device's stream.
func NewPortAudio(sampleRate float64, framesPerBuffer int) *PortAudio {
	return &PortAudio{SampleRate: sampleRate, FramesPerBuffer: framesPerBuffer}
}

func (p *PortAudio) Setup(root *realm.Realm) error {
	if err := portaudio.Initialize(); err != nil {
		return status.OSError("portaudio: initialize", err)
	}
	p.left = dspbuffer.NewWriteAheadBuffer(p.SampleRate, 1)
	p.right = dspbuffer.NewWriteAheadBuffer(p.SampleRate, 1)
	p.frame = make([]float32, 2*p.FramesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(0, 2, p.SampleRate, p.FramesPerBuffer, p.streamCallback)
	if err != nil {
		portaudio.Terminate()
		return status.OSError("portaudio: open default stream", err)
	}
	p.stream = stream
	if err := p.stream.Start(); err != nil {
		return status.OSError("portaudio: start stream", err)
	}
	return nil
}

// streamCallback runs on PortAudio's own audio thread, pulling interleaved
// stereo frames out of the write-ahead buffers. Underruns (device ahead of
// the engine) are absorbed as silence by WriteAheadBuffer.Read itself.
func (p *PortAudio) streamCallback(out []float32) {
	n := len(out) / 2
	left := make([]float32, n)
	right := make([]float32, n)
	p.left.Read(left)
	p.right.Read(right)
	for i := 0; i < n; i++ {
		out[2*i] = left[i]
		out[2*i+1] = right[i]
	}
}

func (p *PortAudio) Cleanup() {
	if p.stream != nil {
		p.stream.Stop()
		p.stream.Close()
	}
	portaudio.Terminate()
}

func (p *PortAudio) BeginBlock(ctx *Context) error { return nil }

func (p *PortAudio) EndBlock(ctx *Context) error { return nil }

// Output writes buf's samples into the write-ahead ring for channel. A
// full ring (device consumer fell too far behind) is reported as a
// recoverable Error rather than blocking (spec §5: "Queue full on push is
// reported as an error but never blocks" — the same discipline extended
// to this producer/consumer boundary).
func (p *PortAudio) Output(ctx *Context, channel Channel, buf *buffer.Buffer) error {
	if buf == nil {
		return nil
	}
	samples := buf.Float32()
	var err error
	switch channel {
	case AudioLeft:
		err = p.left.Write(samples)
	case AudioRight:
		err = p.right.Write(samples)
	default:
		return nil
	}
	if err != nil {
		return status.Errorf("portaudio: output %s: %v", channel, err)
	}
	return nil
}
