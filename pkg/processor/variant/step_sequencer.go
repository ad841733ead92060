package variant

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/midi"
	"github.com/rimewave/audioproc/pkg/processor"
)

// Step is one entry of a step-sequencer pattern: note 0 means "rest".
type Step struct {
	Note     uint8
	Velocity uint8
}

// NewStepSequencerDescription describes the "step-sequencer" variant: an
// AtomData output, no audio inputs.
func NewStepSequencerDescription() processor.NodeDescription {
	return desc("step-sequencer", audioPort("events_out", processor.DirectionOut))
}

// StepSequencer is the "step-sequencer" processor variant: advances one
// step of a fixed pattern every stepBlocks blocks, emitting a NoteOn for
// the step then its NoteOff on the following block, whatever stepBlocks
// is. Grounded on the same periodic-emission idiom as
// MidiSource, generalized to a multi-step pattern.
type StepSequencer struct {
	pattern    []Step
	stepBlocks int
	blockCount int
	stepIdx    int
	pendingOff *Step
}

func NewStepSequencer(pattern []Step, stepBlocks int) processor.Behavior {
	return &StepSequencer{pattern: pattern, stepBlocks: stepBlocks}
}

func (s *StepSequencer) SetupInternal(p *processor.Processor) error { return nil }

func (s *StepSequencer) ProcessBlockInternal(p *processor.Processor) error {
	out := p.PortByName("events_out")
	if out == nil || len(s.pattern) == 0 {
		return nil
	}

	var events []midi.Event
	if s.pendingOff != nil {
		events = append(events, midi.NoteOffEvent{
			BaseEvent:  midi.BaseEvent{Offset: 0},
			NoteNumber: s.pendingOff.Note,
			Velocity:   0,
		})
		s.pendingOff = nil
	}

	if s.blockCount == 0 {
		step := s.pattern[s.stepIdx]
		if step.Note != 0 {
			events = append(events, midi.NoteOnEvent{
				BaseEvent:  midi.BaseEvent{Offset: 0},
				NoteNumber: step.Note,
				Velocity:   step.Velocity,
			})
			s.pendingOff = &step
		}
		s.stepIdx = (s.stepIdx + 1) % len(s.pattern)
	}
	s.blockCount = (s.blockCount + 1) % s.stepBlocks

	return buffer.EncodeEvents(out.Region(), events)
}

func (s *StepSequencer) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (s *StepSequencer) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (s *StepSequencer) CleanupInternal(p *processor.Processor) {}
