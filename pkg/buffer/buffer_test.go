package buffer

import (
	"testing"

	"github.com/rimewave/audioproc/pkg/midi"
)

func TestFloatControlValueMixAdds(t *testing.T) {
	dst := make([]byte, floatControlValueSize)
	src := make([]byte, floatControlValueSize)
	WriteValueGeneration(dst, 1.5, 1)
	WriteValueGeneration(src, 2.5, 2)

	if err := FloatControlValueType.Mix(src, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := ReadValueGeneration(dst)
	if v != 4.0 {
		t.Errorf("expected 4.0, got %v", v)
	}
}

func TestFloatControlValueMul(t *testing.T) {
	region := make([]byte, floatControlValueSize)
	WriteValueGeneration(region, 2.0, 0)
	if err := FloatControlValueType.Mul(region, 3.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := ReadValueGeneration(region)
	if v != 6.0 {
		t.Errorf("expected 6.0, got %v", v)
	}
}

func TestBufferFloat32ZeroCopy(t *testing.T) {
	region := make([]byte, 16)
	b := New(NewFloatAudioBlockType(4), region)
	view := b.Float32()
	if len(view) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(view))
	}
	view[0] = 1.0
	if b.Float32()[0] != 1.0 {
		t.Error("expected cached view to reflect write")
	}
	putFloatAt(region, 4, 2.0)
	if b.Float32()[1] != 2.0 {
		t.Error("expected Float32 view to alias the backing region")
	}
}

func TestFloatAudioBlockMixAndMul(t *testing.T) {
	blockSize := 3
	typ := NewFloatAudioBlockType(blockSize)
	dst := make([]byte, typ.Size(nil))
	src := make([]byte, typ.Size(nil))
	for i := 0; i < blockSize; i++ {
		putFloatAt(dst, i*4, float32(i))
		putFloatAt(src, i*4, 1.0)
	}
	if err := typ.Mix(src, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < blockSize; i++ {
		if got, want := floatAt(dst, i*4), float32(i)+1.0; got != want {
			t.Errorf("sample %d: got %v want %v", i, got, want)
		}
	}
	if err := typ.Mul(dst, 2.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := floatAt(dst, 0), float32(2.0); got != want {
		t.Errorf("sample 0 after mul: got %v want %v", got, want)
	}
}

func TestAtomDataClearWritesEmptyHeader(t *testing.T) {
	region := make([]byte, atomDataSize)
	for i := range region {
		region[i] = 0xff
	}
	AtomDataType.Clear(region)
	if EventCount(region) != 0 {
		t.Errorf("expected zero events after clear, got %d", EventCount(region))
	}
}

func TestEventCodecRoundTrip(t *testing.T) {
	region := make([]byte, atomDataSize)
	AtomDataType.Clear(region)

	events := []midi.Event{
		midi.NoteOnEvent{BaseEvent: midi.BaseEvent{EventChannel: 0, Offset: 10}, NoteNumber: 60, Velocity: 100},
		midi.ControlChangeEvent{BaseEvent: midi.BaseEvent{EventChannel: 1, Offset: 5}, Controller: midi.CCSustain, Value: 127},
		midi.PitchBendEvent{BaseEvent: midi.BaseEvent{EventChannel: 0, Offset: 20}, Value: -1000},
	}
	if err := EncodeEvents(region, events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := EventCount(region); got != 3 {
		t.Fatalf("expected 3 events, got %d", got)
	}

	decoded := DecodeEvents(region)
	if len(decoded) != 3 {
		t.Fatalf("expected 3 decoded events, got %d", len(decoded))
	}
	// EncodeEvents sorts by offset: CC(5), NoteOn(10), PitchBend(20).
	if decoded[0].SampleOffset() != 5 || decoded[1].SampleOffset() != 10 || decoded[2].SampleOffset() != 20 {
		t.Errorf("expected time-ordered decode, got offsets %d, %d, %d",
			decoded[0].SampleOffset(), decoded[1].SampleOffset(), decoded[2].SampleOffset())
	}
	pb, ok := decoded[2].(midi.PitchBendEvent)
	if !ok || pb.Value != -1000 {
		t.Errorf("expected pitch bend -1000, got %+v", decoded[2])
	}
}

func TestAtomDataMixMergesByTime(t *testing.T) {
	dst := make([]byte, atomDataSize)
	src := make([]byte, atomDataSize)
	AtomDataType.Clear(dst)
	AtomDataType.Clear(src)

	_ = EncodeEvents(dst, []midi.Event{
		midi.NoteOnEvent{BaseEvent: midi.BaseEvent{Offset: 0}, NoteNumber: 60, Velocity: 100},
		midi.NoteOnEvent{BaseEvent: midi.BaseEvent{Offset: 30}, NoteNumber: 64, Velocity: 100},
	})
	_ = EncodeEvents(src, []midi.Event{
		midi.NoteOffEvent{BaseEvent: midi.BaseEvent{Offset: 15}, NoteNumber: 60, Velocity: 0},
	})

	if err := AtomDataType.Mix(src, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	merged := DecodeEvents(dst)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged events, got %d", len(merged))
	}
	if merged[0].SampleOffset() != 0 || merged[1].SampleOffset() != 15 || merged[2].SampleOffset() != 30 {
		t.Errorf("expected merged offsets 0,15,30, got %d,%d,%d",
			merged[0].SampleOffset(), merged[1].SampleOffset(), merged[2].SampleOffset())
	}
}

func TestAtomDataMulFails(t *testing.T) {
	region := make([]byte, atomDataSize)
	if err := AtomDataType.Mul(region, 2.0); err == nil {
		t.Error("expected Mul on AtomData to fail")
	}
}

func TestPluginCondBufferSetupCleanup(t *testing.T) {
	region := make([]byte, 1)
	region[0] = 1
	if err := PluginCondBufferType.(Setupable).Setup(region); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if region[0] != 0 {
		t.Error("expected Setup to reset signaled flag")
	}
}

func TestAppendEventRespectsCapacity(t *testing.T) {
	region := make([]byte, 4+eventRecordSize)
	AtomDataType.Clear(region)
	if !AppendEvent(region, midi.ClockEvent{BaseEvent: midi.BaseEvent{Offset: 1}}) {
		t.Fatal("expected first append to succeed")
	}
	if AppendEvent(region, midi.ClockEvent{BaseEvent: midi.BaseEvent{Offset: 2}}) {
		t.Error("expected append beyond capacity to fail")
	}
}
