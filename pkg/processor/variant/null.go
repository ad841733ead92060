package variant

import "github.com/rimewave/audioproc/pkg/processor"

// NewNullDescription describes the "null" variant: one audio in, one
// audio out, wired straight through.
func NewNullDescription() processor.NodeDescription {
	return desc("null",
		audioPort("in", processor.DirectionIn),
		audioPort("out", processor.DirectionOut))
}

// Null is the "null" processor variant: a pass-through node used as a
// graph placeholder and in the spec's silence/passthrough test scenarios
// (spec §8 scenario 1). Grounded on simplest BaseProcessor
// embedding (pkg/framework/plugin/processor.go's default ProcessAudio,
// which null-op plugins commonly use as a starting template).
type Null struct{}

func NewNull() processor.Behavior { return Null{} }

func (Null) SetupInternal(p *processor.Processor) error { return nil }

func (Null) ProcessBlockInternal(p *processor.Processor) error {
	in := p.PortByName("in")
	out := p.PortByName("out")
	if in == nil || out == nil {
		return nil
	}
	return out.CopyFrom(in)
}

func (Null) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (Null) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (Null) CleanupInternal(p *processor.Processor) {}
