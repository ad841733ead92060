package variant

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/midi"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewMidiSourceDescription describes the "midi-source" variant: an
// AtomData output carrying originated events, no audio ports.
func NewMidiSourceDescription() processor.NodeDescription {
	return desc("midi-source", audioPort("events_out", processor.DirectionOut))
}

// MidiSource is the "midi-source" processor variant: emits a note-on
// followed by a note-off every periodBlocks blocks, a simple originating
// clock akin to bus-builder test fixtures that drive a
// graph with synthetic MIDI (pkg/framework/bus/builder.go's test inputs).
// Parameters "note", "velocity", and "period_blocks" are read each block
// via ParametersObserve.
type MidiSource struct {
	note         uint8
	velocity     uint8
	periodBlocks int
	blockCount   int
	noteOn       bool
}

func NewMidiSource() processor.Behavior {
	return &MidiSource{note: 60, velocity: 100, periodBlocks: 4}
}

func (s *MidiSource) SetupInternal(p *processor.Processor) error { return nil }

func (s *MidiSource) ProcessBlockInternal(p *processor.Processor) error {
	if params, fresh := p.ParametersObserve(); fresh {
		if n, ok := params["note"]; ok {
			s.note = uint8(n)
		}
		if v, ok := params["velocity"]; ok {
			s.velocity = uint8(v)
		}
		if pb, ok := params["period_blocks"]; ok && pb > 0 {
			s.periodBlocks = int(pb)
		}
	}

	out := p.PortByName("events_out")
	if out == nil {
		return nil
	}
	events := []midi.Event(nil)
	if s.blockCount == 0 {
		if s.noteOn {
			events = append(events, midi.NoteOffEvent{
				BaseEvent:  midi.BaseEvent{Offset: 0},
				NoteNumber: s.note,
				Velocity:   0,
			})
		} else {
			events = append(events, midi.NoteOnEvent{
				BaseEvent:  midi.BaseEvent{Offset: 0},
				NoteNumber: s.note,
				Velocity:   s.velocity,
			})
		}
		s.noteOn = !s.noteOn
	}
	s.blockCount = (s.blockCount + 1) % s.periodBlocks
	return buffer.EncodeEvents(out.Region(), events)
}

func (s *MidiSource) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (s *MidiSource) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (s *MidiSource) CleanupInternal(p *processor.Processor) {}
