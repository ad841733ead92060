package variant

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/dsp/utility"
	"github.com/rimewave/audioproc/pkg/midi"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewMidiVelocityMapperDescription describes the "midi-velocity-mapper"
// variant: AtomData in, AtomData out.
func NewMidiVelocityMapperDescription() processor.NodeDescription {
	return desc("midi-velocity-mapper",
		audioPort("events_in", processor.DirectionIn),
		audioPort("events_out", processor.DirectionOut))
}

// MidiVelocityMapper is the "midi-velocity-mapper" processor variant:
// rewrites NoteOn/NoteOff velocities through a curve (linear or
// exponential) via pkg/dsp/utility.ScaleParameter/ScaleParameterExp,
// passing every other event through unchanged.
type MidiVelocityMapper struct {
	curve    string
	minOut   float64
	maxOut   float64
}

func NewMidiVelocityMapper() processor.Behavior {
	return &MidiVelocityMapper{curve: "linear", minOut: 0, maxOut: 127}
}

func (m *MidiVelocityMapper) SetupInternal(p *processor.Processor) error { return nil }

func (m *MidiVelocityMapper) ProcessBlockInternal(p *processor.Processor) error {
	if params, fresh := p.ParametersObserve(); fresh {
		if lo, ok := params["min_out"]; ok {
			m.minOut = lo
		}
		if hi, ok := params["max_out"]; ok {
			m.maxOut = hi
		}
		if params["exp_curve"] != 0 {
			m.curve = "exp"
		} else {
			m.curve = "linear"
		}
	}

	in := p.PortByName("events_in")
	out := p.PortByName("events_out")
	if in == nil || out == nil {
		return nil
	}
	events := buffer.DecodeEvents(in.Region())
	for i, ev := range events {
		switch e := ev.(type) {
		case midi.NoteOnEvent:
			e.Velocity = m.mapVelocity(e.Velocity)
			events[i] = e
		case midi.NoteOffEvent:
			e.Velocity = m.mapVelocity(e.Velocity)
			events[i] = e
		}
	}
	return buffer.EncodeEvents(out.Region(), events)
}

func (m *MidiVelocityMapper) mapVelocity(v uint8) uint8 {
	norm := float64(v) / 127.0
	var scaled float64
	if m.curve == "exp" {
		scaled = utility.ScaleParameterExp(norm, m.minOut, m.maxOut)
	} else {
		scaled = utility.ScaleParameter(norm, m.minOut, m.maxOut)
	}
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 127 {
		scaled = 127
	}
	return uint8(scaled)
}

func (m *MidiVelocityMapper) HandleMessageInternal(p *processor.Processor, msg []byte) error {
	return nil
}

func (m *MidiVelocityMapper) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (m *MidiVelocityMapper) CleanupInternal(p *processor.Processor) {}
