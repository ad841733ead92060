package variant

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/midi"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewMidiLooperDescription describes the "midi-looper" variant: AtomData
// in, AtomData out.
func NewMidiLooperDescription() processor.NodeDescription {
	return desc("midi-looper",
		audioPort("events_in", processor.DirectionIn),
		audioPort("events_out", processor.DirectionOut))
}

// MidiLooper is the "midi-looper" processor variant: records incoming
// events for loopBlocks blocks, then replays the recorded sequence on
// every subsequent cycle, generalizing pkg/dsp/delay.Line's write/read
// ring-buffer idiom (record now, play back later at a fixed offset) from
// an audio delay line to a block-granular event loop. The "recording"
// parameter (nonzero = capture) takes effect on the next block it is
// observed, at whatever slot the loop is on; it does not wait for a loop
// boundary.
type MidiLooper struct {
	loopBlocks int
	recorded   [][]midi.Event
	blockIdx   int
	recording  bool
}

func NewMidiLooper(loopBlocks int) processor.Behavior {
	return &MidiLooper{loopBlocks: loopBlocks, recorded: make([][]midi.Event, loopBlocks), recording: true}
}

func (l *MidiLooper) SetupInternal(p *processor.Processor) error { return nil }

func (l *MidiLooper) ProcessBlockInternal(p *processor.Processor) error {
	if params, fresh := p.ParametersObserve(); fresh {
		if rec, ok := params["recording"]; ok {
			l.recording = rec != 0
		}
	}

	in := p.PortByName("events_in")
	out := p.PortByName("events_out")
	if out == nil {
		return nil
	}

	slot := l.blockIdx % l.loopBlocks
	if l.recording && in != nil {
		l.recorded[slot] = buffer.DecodeEvents(in.Region())
	}
	l.blockIdx++

	events := l.recorded[slot]
	return buffer.EncodeEvents(out.Region(), events)
}

func (l *MidiLooper) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (l *MidiLooper) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (l *MidiLooper) CleanupInternal(p *processor.Processor) {}
