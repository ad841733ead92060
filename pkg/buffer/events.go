package buffer

import (
	"encoding/binary"
	"sort"

	"github.com/rimewave/audioproc/pkg/midi"
)

// Each event record is a fixed 8 bytes: int32 sample offset, uint8 event
// type, uint8 channel, then two payload bytes whose meaning depends on
// type. This keeps AtomData's 10240-byte window holding up to 1279 events
// without any variable-length decoding on the hot path.
const eventRecordSize = 8

// DecodeEvents reads every event packed into an AtomData region (spec
// §4.2, §4.4 MIDI_MONKEY/LOG_ATOM). Allocates a []midi.Event slice; callers
// on the RT path should prefer operating on the raw region directly where
// possible (see EventCount, AppendEvent) and only call DecodeEvents for
// diagnostics (LOG_ATOM) or processor setup, not the steady-state hot loop.
func DecodeEvents(region []byte) []midi.Event {
	count := EventCount(region)
	events := make([]midi.Event, 0, count)
	for i := uint32(0); i < count; i++ {
		off := 4 + int(i)*eventRecordSize
		if off+eventRecordSize > len(region) {
			break
		}
		rec := region[off : off+eventRecordSize]
		ev, ok := decodeRecord(rec)
		if ok {
			events = append(events, ev)
		}
	}
	return events
}

// EncodeEvents overwrites region with the given events, time-ordered, and
// rewrites the header count. Events beyond the window capacity are
// silently dropped (the window is a fixed 10240-byte budget).
func EncodeEvents(region []byte, events []midi.Event) error {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].SampleOffset() < events[j].SampleOffset()
	})
	maxEvents := (len(region) - 4) / eventRecordSize
	n := len(events)
	if n > maxEvents {
		n = maxEvents
	}
	binary.LittleEndian.PutUint32(region[0:4], uint32(n))
	for i := 0; i < n; i++ {
		off := 4 + i*eventRecordSize
		encodeRecord(region[off:off+eventRecordSize], events[i])
	}
	return nil
}

// AppendEvent appends a single event to an already-encoded region,
// preserving time order. Returns false if the window is full.
func AppendEvent(region []byte, ev midi.Event) bool {
	events := DecodeEvents(region)
	maxEvents := (len(region) - 4) / eventRecordSize
	if len(events) >= maxEvents {
		return false
	}
	events = append(events, ev)
	_ = EncodeEvents(region, events)
	return true
}

func mergeEventsByTime(a, b []midi.Event) []midi.Event {
	merged := make([]midi.Event, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SampleOffset() < merged[j].SampleOffset()
	})
	return merged
}

func encodeRecord(rec []byte, ev midi.Event) {
	binary.LittleEndian.PutUint32(rec[0:4], uint32(ev.SampleOffset()))
	rec[4] = uint8(ev.Type())
	rec[5] = ev.Channel()
	switch e := ev.(type) {
	case midi.NoteOnEvent:
		rec[6], rec[7] = e.NoteNumber, e.Velocity
	case midi.NoteOffEvent:
		rec[6], rec[7] = e.NoteNumber, e.Velocity
	case midi.ControlChangeEvent:
		rec[6], rec[7] = e.Controller, e.Value
	case midi.ProgramChangeEvent:
		rec[6] = e.Program
	case midi.ChannelPressureEvent:
		rec[6] = e.Pressure
	case midi.PolyPressureEvent:
		rec[6], rec[7] = e.NoteNumber, e.Pressure
	case midi.PitchBendEvent:
		binary.LittleEndian.PutUint16(rec[6:8], uint16(e.Value))
	}
}

func decodeRecord(rec []byte) (midi.Event, bool) {
	offset := int32(binary.LittleEndian.Uint32(rec[0:4]))
	typ := midi.EventType(rec[4])
	base := midi.BaseEvent{EventChannel: rec[5], Offset: offset}
	switch typ {
	case midi.EventTypeNoteOn:
		return midi.NoteOnEvent{BaseEvent: base, NoteNumber: rec[6], Velocity: rec[7]}, true
	case midi.EventTypeNoteOff:
		return midi.NoteOffEvent{BaseEvent: base, NoteNumber: rec[6], Velocity: rec[7]}, true
	case midi.EventTypeControlChange:
		return midi.ControlChangeEvent{BaseEvent: base, Controller: rec[6], Value: rec[7]}, true
	case midi.EventTypeProgramChange:
		return midi.ProgramChangeEvent{BaseEvent: base, Program: rec[6]}, true
	case midi.EventTypeChannelPressure:
		return midi.ChannelPressureEvent{BaseEvent: base, Pressure: rec[6]}, true
	case midi.EventTypePolyPressure:
		return midi.PolyPressureEvent{BaseEvent: base, NoteNumber: rec[6], Pressure: rec[7]}, true
	case midi.EventTypePitchBend:
		return midi.PitchBendEvent{BaseEvent: base, Value: int16(binary.LittleEndian.Uint16(rec[6:8]))}, true
	case midi.EventTypeClock:
		return midi.ClockEvent{BaseEvent: base}, true
	case midi.EventTypeStart:
		return midi.StartEvent{BaseEvent: base}, true
	case midi.EventTypeStop:
		return midi.StopEvent{BaseEvent: base}, true
	case midi.EventTypeContinue:
		return midi.ContinueEvent{BaseEvent: base}, true
	default:
		return nil, false
	}
}
