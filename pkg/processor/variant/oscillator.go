package variant

import (
	"github.com/rimewave/audioproc/pkg/dsp/oscillator"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewOscillatorDescription describes the "oscillator" variant: one audio
// output, no inputs.
func NewOscillatorDescription() processor.NodeDescription {
	return desc("oscillator", audioPort("out", processor.DirectionOut))
}

// Oscillator is the "oscillator" processor variant: a free-running tone
// generator. Grounded directly on pkg/dsp/oscillator.Oscillator; the
// waveform and frequency are read from the processor's parameter bag
// each block via ParametersObserve so a control-thread SetParameters call
// takes effect on the next render without locking the RT path.
type Oscillator struct {
	osc  *oscillator.Oscillator
	wave string
}

// NewOscillator builds an oscillator variant for the given sample rate.
// Default waveform is "sine" at 440Hz, matching oscillator.New's default.
func NewOscillator(sampleRate float64) processor.Behavior {
	return &Oscillator{osc: oscillator.New(sampleRate), wave: "sine"}
}

func (o *Oscillator) SetupInternal(p *processor.Processor) error { return nil }

func (o *Oscillator) ProcessBlockInternal(p *processor.Processor) error {
	if params, fresh := p.ParametersObserve(); fresh {
		if freq, ok := params["frequency"]; ok {
			o.osc.SetFrequency(freq)
		}
		if wave, ok := params["waveform_square"]; ok && wave != 0 {
			o.wave = "square"
		}
	}
	out := p.PortByName("out")
	if out == nil {
		return nil
	}
	view := out.Float32()
	switch o.wave {
	case "square":
		o.osc.ProcessSquare(view)
	case "saw":
		o.osc.ProcessSaw(view)
	case "triangle":
		o.osc.ProcessTriangle(view)
	default:
		o.osc.ProcessSine(view)
	}
	return nil
}

func (o *Oscillator) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (o *Oscillator) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (o *Oscillator) CleanupInternal(p *processor.Processor) {}
