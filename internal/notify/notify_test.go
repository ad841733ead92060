package notify

import (
	"testing"

	"github.com/rimewave/audioproc/pkg/msgqueue"
)

func TestDispatchWithNoRegisteredCallbackIsNoop(t *testing.T) {
	b := NewBus()
	b.Dispatch([]msgqueue.Message{{Kind: msgqueue.KindEngineLoad}})
}

func TestDispatchInvokesRegisteredCallbackInOrder(t *testing.T) {
	b := NewBus()
	var seen []msgqueue.Kind
	b.Register(func(m msgqueue.Message) { seen = append(seen, m.Kind) })

	b.Dispatch([]msgqueue.Message{
		{Kind: msgqueue.KindEngineLoad},
		{Kind: msgqueue.KindPlayerState},
	})
	if len(seen) != 2 || seen[0] != msgqueue.KindEngineLoad || seen[1] != msgqueue.KindPlayerState {
		t.Errorf("expected [EngineLoad PlayerState], got %v", seen)
	}
}

func TestRegisterReplacesPreviousCallback(t *testing.T) {
	b := NewBus()
	first := 0
	second := 0
	b.Register(func(m msgqueue.Message) { first++ })
	b.Register(func(m msgqueue.Message) { second++ })

	b.Dispatch([]msgqueue.Message{{Kind: msgqueue.KindEngineLoad}})
	if first != 0 || second != 1 {
		t.Errorf("expected only the second registration to fire, got first=%d second=%d", first, second)
	}
}
