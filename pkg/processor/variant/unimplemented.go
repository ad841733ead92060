package variant

import (
	"github.com/rimewave/audioproc/internal/status"
	"github.com/rimewave/audioproc/pkg/processor"
)

// Unimplemented is shared by the three processor-type tags this repo does
// not build a real DSP path for. SetupInternal fails closed (so a Realm
// activating one transitions straight to BROKEN rather than silently
// running a no-op), matching spec scenario 5's BROKEN-on-setup-failure
// path rather than inventing a fifth lifecycle outcome.
type Unimplemented struct {
	TypeTag string
}

func (u Unimplemented) SetupInternal(p *processor.Processor) error {
	return status.Errorf("processor variant %q is not implemented", u.TypeTag)
}

func (u Unimplemented) ProcessBlockInternal(p *processor.Processor) error {
	return status.Errorf("processor variant %q is not implemented", u.TypeTag)
}

func (u Unimplemented) HandleMessageInternal(p *processor.Processor, msg []byte) error {
	return status.Errorf("processor variant %q is not implemented", u.TypeTag)
}

func (u Unimplemented) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return status.Errorf("processor variant %q is not implemented", u.TypeTag)
}

func (u Unimplemented) CleanupInternal(p *processor.Processor) {}

// NewCSound is the "csound" variant: scripted synthesis via an embedded
// CSound engine in the original (spec §9 Q3 names its spin-lock issue).
// No pack library embeds CSound; building a compatible interpreter from
// scratch is out of scope. See DESIGN.md.
func NewCSound() processor.Behavior { return Unimplemented{TypeTag: "csound"} }

// NewCustomCSound is "custom-csound": a csound variant with user-supplied
// orchestra/score text. Same gap as NewCSound.
func NewCustomCSound() processor.Behavior { return Unimplemented{TypeTag: "custom-csound"} }

// NewPlugin is "plugin": hosting a third-party LV2/VST plugin inside a
// node. This repo's engine is itself a processor host, not a plugin-of-
// plugins container; no pack example hosts a foreign plugin format from
// inside Go.
func NewPlugin() processor.Behavior { return Unimplemented{TypeTag: "plugin"} }
