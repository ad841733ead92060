package variant

import (
	"github.com/rimewave/audioproc/pkg/dsp/gain"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewVCADescription describes the "vca" variant: audio in, audio out.
func NewVCADescription() processor.NodeDescription {
	return desc("vca",
		audioPort("in", processor.DirectionIn),
		audioPort("out", processor.DirectionOut))
}

// VCA is the "vca" processor variant: a voltage-controlled-amplifier
// node scaling its input by a gain parameter, grounded directly on
// pkg/dsp/gain.ApplyBufferTo.
type VCA struct {
	gainLinear float32
}

func NewVCA() processor.Behavior { return &VCA{gainLinear: 1.0} }

func (v *VCA) SetupInternal(p *processor.Processor) error { return nil }

func (v *VCA) ProcessBlockInternal(p *processor.Processor) error {
	if params, fresh := p.ParametersObserve(); fresh {
		if g, ok := params["gain_db"]; ok {
			v.gainLinear = gain.DbToLinear32(float32(g))
		}
	}
	in := p.PortByName("in")
	out := p.PortByName("out")
	if in == nil || out == nil {
		return nil
	}
	gain.ApplyBufferTo(in.Float32(), v.gainLinear, out.Float32())
	return nil
}

func (v *VCA) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (v *VCA) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (v *VCA) CleanupInternal(p *processor.Processor) {}
