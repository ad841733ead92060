package variant

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/dsp/utility"
	"github.com/rimewave/audioproc/pkg/midi"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewMidiCCToCVDescription describes the "midi-cc-to-cv" variant: an
// AtomData input and a FloatControlValue-shaped output.
func NewMidiCCToCVDescription() processor.NodeDescription {
	return desc("midi-cc-to-cv",
		audioPort("events_in", processor.DirectionIn),
		audioPort("cv_out", processor.DirectionOut))
}

// MidiCCToCV is the "midi-cc-to-cv" processor variant: watches
// events_in for ControlChangeEvents matching Controller, scales the
// 0-127 value to [0,1] via pkg/dsp/utility.ScaleParameter, and republishes
// it as a generation-tagged control value. The last CC seen in a block
// wins if several arrive in the same block.
type MidiCCToCV struct {
	controller uint8
	generation uint64
	lastValue  float32
}

func NewMidiCCToCV(controller uint8) processor.Behavior {
	return &MidiCCToCV{controller: controller}
}

func (c *MidiCCToCV) SetupInternal(p *processor.Processor) error { return nil }

func (c *MidiCCToCV) ProcessBlockInternal(p *processor.Processor) error {
	if params, fresh := p.ParametersObserve(); fresh {
		if ctrl, ok := params["controller"]; ok {
			c.controller = uint8(ctrl)
		}
	}

	in := p.PortByName("events_in")
	out := p.PortByName("cv_out")
	if in == nil || out == nil {
		return nil
	}
	for _, ev := range buffer.DecodeEvents(in.Region()) {
		cc, ok := ev.(midi.ControlChangeEvent)
		if !ok || cc.Controller != c.controller {
			continue
		}
		c.lastValue = float32(utility.ScaleParameter(float64(cc.Value)/127.0, 0, 1))
		c.generation++
	}
	buffer.WriteValueGeneration(out.Region(), c.lastValue, c.generation)
	return nil
}

func (c *MidiCCToCV) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (c *MidiCCToCV) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (c *MidiCCToCV) CleanupInternal(p *processor.Processor) {}
