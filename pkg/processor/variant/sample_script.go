package variant

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/midi"
	"github.com/rimewave/audioproc/pkg/processor"
)

// ScriptCommand is one timed action of a sample-script: either a note
// trigger (Note != 0) or a control-value set (ParamName != "").
type ScriptCommand struct {
	AtSample  int64
	Note      uint8
	Velocity  uint8
	ParamName string
	Value     float32
}

// NewSampleScriptDescription describes the "sample-script" variant: an
// AtomData output for note commands plus a FloatControlValue-shaped
// output for the script's parameter commands.
func NewSampleScriptDescription() processor.NodeDescription {
	return desc("sample-script",
		audioPort("events_out", processor.DirectionOut),
		audioPort("cv_out", processor.DirectionOut))
}

// SampleScript is the "sample-script" processor variant: a minimal
// timed-command interpreter (note triggers + parameter sets) distinct
// from Pianoroll by also driving a control-value output, closer to the
// original's scripted-sample-cue concept
// (original_source/noisicaa: sample-script nodes combine note playback
// with parameter automation in one timeline). Unlike csound/
// custom-csound, this needs no embedded scripting language: the command
// list is fully resolved ahead of time by the Builder, so interpreting
// it is just a time-ordered scan, not sandboxed execution.
type SampleScript struct {
	commands  []ScriptCommand
	blockSize int64
	cursor    int64
	cvGen     uint64
	cvValue   float32
}

func NewSampleScript(commands []ScriptCommand, blockSize int) processor.Behavior {
	return &SampleScript{commands: commands, blockSize: int64(blockSize)}
}

func (s *SampleScript) SetupInternal(p *processor.Processor) error { return nil }

func (s *SampleScript) ProcessBlockInternal(p *processor.Processor) error {
	eventsOut := p.PortByName("events_out")
	cvOut := p.PortByName("cv_out")
	blockStart := s.cursor
	blockEnd := s.cursor + s.blockSize

	var events []midi.Event
	for _, cmd := range s.commands {
		if cmd.AtSample < blockStart || cmd.AtSample >= blockEnd {
			continue
		}
		if cmd.Note != 0 {
			events = append(events, midi.NoteOnEvent{
				BaseEvent:  midi.BaseEvent{Offset: int32(cmd.AtSample - blockStart)},
				NoteNumber: cmd.Note,
				Velocity:   cmd.Velocity,
			})
		}
		if cmd.ParamName != "" {
			s.cvValue = cmd.Value
			s.cvGen++
		}
	}
	s.cursor = blockEnd

	if eventsOut != nil {
		if err := buffer.EncodeEvents(eventsOut.Region(), events); err != nil {
			return err
		}
	}
	if cvOut != nil {
		buffer.WriteValueGeneration(cvOut.Region(), s.cvValue, s.cvGen)
	}
	return nil
}

func (s *SampleScript) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (s *SampleScript) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (s *SampleScript) CleanupInternal(p *processor.Processor) {}
