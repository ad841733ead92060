package variant

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/midi"
	"github.com/rimewave/audioproc/pkg/processor"
)

// ScheduledNote is one entry of a pianoroll recording: a note held from
// StartSample for DurationSamples.
type ScheduledNote struct {
	StartSample     int64
	DurationSamples int64
	Note            uint8
	Velocity        uint8
}

// NewPianorollDescription describes the "pianoroll" variant: an AtomData
// output, no audio inputs.
func NewPianorollDescription() processor.NodeDescription {
	return desc("pianoroll", audioPort("events_out", processor.DirectionOut))
}

// Pianoroll is the "pianoroll" processor variant: replays a fixed list
// of recorded notes against an internal sample cursor, emitting NoteOn
// at StartSample and NoteOff at StartSample+DurationSamples, each offset
// into the correct render block (spec §4.2 AtomData's per-event
// sample-accurate Offset field). Grounded on pkg/midi/queue.go's
// time-ordered event merge, here driving emission instead of ingestion.
type Pianoroll struct {
	notes     []ScheduledNote
	blockSize int64
	cursor    int64
}

func NewPianoroll(notes []ScheduledNote, blockSize int) processor.Behavior {
	return &Pianoroll{notes: notes, blockSize: int64(blockSize)}
}

func (r *Pianoroll) SetupInternal(p *processor.Processor) error { return nil }

func (r *Pianoroll) ProcessBlockInternal(p *processor.Processor) error {
	out := p.PortByName("events_out")
	if out == nil {
		return nil
	}
	blockStart := r.cursor
	blockEnd := r.cursor + r.blockSize

	var events []midi.Event
	for _, n := range r.notes {
		if n.StartSample >= blockStart && n.StartSample < blockEnd {
			events = append(events, midi.NoteOnEvent{
				BaseEvent:  midi.BaseEvent{Offset: int32(n.StartSample - blockStart)},
				NoteNumber: n.Note,
				Velocity:   n.Velocity,
			})
		}
		end := n.StartSample + n.DurationSamples
		if end >= blockStart && end < blockEnd {
			events = append(events, midi.NoteOffEvent{
				BaseEvent:  midi.BaseEvent{Offset: int32(end - blockStart)},
				NoteNumber: n.Note,
				Velocity:   0,
			})
		}
	}
	r.cursor = blockEnd
	return buffer.EncodeEvents(out.Region(), events)
}

func (r *Pianoroll) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (r *Pianoroll) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (r *Pianoroll) CleanupInternal(p *processor.Processor) {}
