package msgqueue

import (
	"testing"

	"github.com/rimewave/audioproc/pkg/musictime"
)

func TestPushAndDecodeEngineLoad(t *testing.T) {
	q := New(64)
	q.PushEngineLoad(0.42)
	msgs := q.Messages()
	if len(msgs) != 1 || msgs[0].Kind != KindEngineLoad {
		t.Fatalf("expected 1 EngineLoad message, got %+v", msgs)
	}
	if got := DecodeEngineLoad(msgs[0].Payload).Load; got != 0.42 {
		t.Errorf("expected 0.42, got %v", got)
	}
}

func TestPushGrowsPastCapacity(t *testing.T) {
	q := New(4)
	for i := 0; i < 20; i++ {
		q.PushEngineLoad(float64(i))
	}
	msgs := q.Messages()
	if len(msgs) != 20 {
		t.Fatalf("expected 20 messages after growth, got %d", len(msgs))
	}
	for i, m := range msgs {
		if got := DecodeEngineLoad(m.Payload).Load; got != float64(i) {
			t.Errorf("message %d: expected %v, got %v", i, float64(i), got)
		}
	}
}

func TestClearResetsButKeepsCapacity(t *testing.T) {
	q := New(64)
	q.PushEngineLoad(1.0)
	cap := q.Cap()
	q.Clear()
	if !q.IsEmpty() {
		t.Error("expected empty after clear")
	}
	if q.Cap() != cap {
		t.Error("expected clear to preserve capacity")
	}
}

func TestPlayerStateRoundTrip(t *testing.T) {
	q := New(128)
	want := PlayerState{
		RealmName:     "root",
		Playing:       true,
		CurrentTime:   musictime.NewTime(3, 2),
		LoopEnabled:   true,
		LoopStartTime: musictime.NewTime(0, 1),
		LoopEndTime:   musictime.NewTime(8, 1),
	}
	q.PushPlayerState(want)
	msgs := q.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := DecodePlayerState(msgs[0].Payload)
	if got.RealmName != want.RealmName || got.Playing != want.Playing || got.LoopEnabled != want.LoopEnabled {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if got.CurrentTime.Cmp(want.CurrentTime) != 0 {
		t.Errorf("expected current time %v, got %v", want.CurrentTime, got.CurrentTime)
	}
}

func TestNodeMessageRoundTrip(t *testing.T) {
	q := New(512)
	q.PushNodeMessage("synth-1", []byte{1, 2, 3, 4})
	msgs := q.Messages()
	got := DecodeNodeMessage(msgs[0].Payload)
	if got.NodeID != "synth-1" {
		t.Errorf("expected node id synth-1, got %q", got.NodeID)
	}
	if len(got.Atom) != 4 || got.Atom[3] != 4 {
		t.Errorf("expected atom bytes preserved, got %v", got.Atom)
	}
}

func TestMixedMessageKindsInOrder(t *testing.T) {
	q := New(512)
	q.PushEngineLoad(1.0)
	q.PushNodeStateChange(NodeStateChange{NodeID: "n1", OldState: 1, NewState: 2})
	q.PushDeviceManagerMessage(DeviceManagerMessage{Device: "default", Error: ""})

	msgs := q.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Kind != KindEngineLoad || msgs[1].Kind != KindNodeStateChange || msgs[2].Kind != KindDeviceManagerMessage {
		t.Errorf("unexpected kind order: %v, %v, %v", msgs[0].Kind, msgs[1].Kind, msgs[2].Kind)
	}
	sc := DecodeNodeStateChange(msgs[1].Payload)
	if sc.NodeID != "n1" || sc.OldState != 1 || sc.NewState != 2 {
		t.Errorf("unexpected state change: %+v", sc)
	}
	dm := DecodeDeviceManagerMessage(msgs[2].Payload)
	if dm.Device != "default" {
		t.Errorf("unexpected device: %+v", dm)
	}
}
