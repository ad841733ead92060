package variant

import (
	"github.com/rimewave/audioproc/pkg/dsp/utility"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewNoiseDescription describes the "noise" variant: one audio output.
func NewNoiseDescription() processor.NodeDescription {
	return desc("noise", audioPort("out", processor.DirectionOut))
}

// Noise is the "noise" processor variant, grounded directly on
// pkg/dsp/utility.NoiseGenerator. The spec also names a VM-level NOISE
// opcode (pkg/vm) for inline buffer noise; this variant is the
// standalone processor form, selected independently by graph nodes that
// want a dedicated, configurable noise source (color set via
// parameters["color"]) rather than an opcode baked into a Program.
type Noise struct {
	gen *utility.NoiseGenerator
}

func NewNoise() processor.Behavior {
	return &Noise{gen: utility.NewNoiseGenerator(utility.WhiteNoise)}
}

func (n *Noise) SetupInternal(p *processor.Processor) error { return nil }

func (n *Noise) ProcessBlockInternal(p *processor.Processor) error {
	if params, fresh := p.ParametersObserve(); fresh {
		if color, ok := params["color"]; ok {
			n.gen.SetType(utility.NoiseType(int(color)))
		}
	}
	out := p.PortByName("out")
	if out == nil {
		return nil
	}
	n.gen.Generate(out.Float32())
	return nil
}

func (n *Noise) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (n *Noise) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (n *Noise) CleanupInternal(p *processor.Processor) {}
