package variant

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/framework/voice"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewInstrumentDescription describes the "instrument" variant: AtomData
// note input, audio output.
func NewInstrumentDescription() processor.NodeDescription {
	return desc("instrument",
		audioPort("events_in", processor.DirectionIn),
		audioPort("out", processor.DirectionOut))
}

// Instrument is the "instrument" processor variant: a polyphonic
// oscillator+envelope synth driven by incoming NoteOn/NoteOff events,
// grounded directly on pkg/framework/voice.Allocator (a
// polyphonic voice-stealing dispatcher) wired to synthVoice instead of a
// plugin-specific voice implementation. The voice slice is retained
// alongside the Allocator (which takes ownership of the same backing
// array) so ProcessBlockInternal can mix every voice's output without
// the Allocator needing an exported accessor it has no other use for.
type Instrument struct {
	alloc  *voice.Allocator
	voices []voice.Voice
}

func NewInstrument(sampleRate float64, maxVoices int) processor.Behavior {
	voices := make([]voice.Voice, maxVoices)
	for i := range voices {
		voices[i] = newSynthVoice(sampleRate)
	}
	return &Instrument{alloc: voice.NewAllocator(voices), voices: voices}
}

func (i *Instrument) SetupInternal(p *processor.Processor) error { return nil }

func (i *Instrument) ProcessBlockInternal(p *processor.Processor) error {
	in := p.PortByName("events_in")
	out := p.PortByName("out")
	if out == nil {
		return nil
	}
	if in != nil {
		for _, ev := range buffer.DecodeEvents(in.Region()) {
			i.alloc.ProcessEvent(ev)
		}
	}
	view := out.Float32()
	for idx := range view {
		view[idx] = 0
	}
	for _, v := range i.voices {
		if v.IsActive() {
			v.Process(view)
		}
	}
	return nil
}

func (i *Instrument) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (i *Instrument) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (i *Instrument) CleanupInternal(p *processor.Processor) {}
