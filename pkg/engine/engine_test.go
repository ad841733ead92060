package engine

import (
	"testing"
	"time"

	"github.com/rimewave/audioproc/internal/notify"
	"github.com/rimewave/audioproc/pkg/backend"
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/host"
	"github.com/rimewave/audioproc/pkg/msgqueue"
	"github.com/rimewave/audioproc/pkg/opcode"
	"github.com/rimewave/audioproc/pkg/realm"
	"github.com/rimewave/audioproc/pkg/specpkg"
	"github.com/rimewave/audioproc/pkg/tripbuf"
)

const blockSize = 4

func silenceThroughBothChannels(t *testing.T) *specpkg.Spec {
	t.Helper()
	return specpkg.NewBuilder().
		WithBuffer("sink:in:left", buffer.NewFloatAudioBlockType(blockSize)).
		WithBuffer("sink:in:right", buffer.NewFloatAudioBlockType(blockSize)).
		Instruction(opcode.New(opcode.CLEAR, opcode.BufferRef(0))).
		Instruction(opcode.New(opcode.CLEAR, opcode.BufferRef(1))).
		Instruction(opcode.New(opcode.END)).
		MustBuild()
}

func newTestEngine(t *testing.T) (*Engine, *realm.Realm, *backend.Renderer) {
	t.Helper()
	h := host.New(48000, blockSize, nil)
	r := realm.New("root", h, 48000, 1)
	r.Setup(blockSize)
	if err := r.SetSpec(silenceThroughBothChannels(t)); err != nil {
		t.Fatalf("SetSpec: %v", err)
	}

	rnd := backend.NewRenderer()
	queues := tripbuf.New[msgqueue.Queue]()
	e := New(r, rnd, h, queues, nil, nil)
	return e, r, rnd
}

// TestLoopSleepsWhileNoProgramIsActive exercises spec §4.9 step 1's idle
// path: a Realm with no Program ever published renders nothing and the
// loop just sleeps, so ExitLoop must still be able to break it promptly.
func TestLoopSleepsWhileNoProgramIsActive(t *testing.T) {
	h := host.New(48000, blockSize, nil)
	r := realm.New("root", h, 48000, 1)
	r.Setup(blockSize)
	queues := tripbuf.New[msgqueue.Queue]()
	e := New(r, backend.NewNull(), h, queues, nil, nil)

	done := make(chan struct{})
	go func() {
		e.Loop()
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	e.ExitLoop()

	select {
	case <-done:
	case <-time.After(idleSleep + 500*time.Millisecond):
		t.Fatal("Loop did not exit after ExitLoop while idle")
	}
}

// TestLoopRendersSilenceThroughBothSinkChannels drives a handful of blocks
// against scenario 1 from spec §8 ("Silence-through") and checks the
// renderer backend captured zeroed output on both channels.
func TestLoopRendersSilenceThroughBothSinkChannels(t *testing.T) {
	e, _, rnd := newTestEngine(t)

	done := make(chan struct{})
	go func() {
		e.Loop()
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	e.ExitLoop()
	<-done

	if len(rnd.Left) < blockSize || len(rnd.Right) < blockSize {
		t.Fatalf("expected at least one block captured, got left=%d right=%d", len(rnd.Left), len(rnd.Right))
	}
	for i, v := range rnd.Left {
		if v != 0 {
			t.Errorf("left[%d]: expected silence, got %v", i, v)
		}
	}
	for i, v := range rnd.Right {
		if v != 0 {
			t.Errorf("right[%d]: expected silence, got %v", i, v)
		}
	}
}

// TestLoopPushesEngineLoadAfterFirstBlock exercises step 8: the first
// block never emits EngineLoad (no prior loop_duration yet), later blocks
// do.
func TestLoopPushesEngineLoadAfterFirstBlock(t *testing.T) {
	h := host.New(48000, blockSize, nil)
	r := realm.New("root", h, 48000, 1)
	r.Setup(blockSize)
	if err := r.SetSpec(silenceThroughBothChannels(t)); err != nil {
		t.Fatalf("SetSpec: %v", err)
	}

	bus := notify.NewBus()
	var loadMessages int
	bus.Register(func(m msgqueue.Message) {
		if m.Kind == msgqueue.KindEngineLoad {
			loadMessages++
		}
	})

	queues := tripbuf.New[msgqueue.Queue]()
	e := New(r, backend.NewNull(), h, queues, nil, nil)

	// Run Loop on its own goroutine for about 50ms, then stop it and drain
	// every queue manually, doing the pump's TakeOld/dispatch work here
	// instead of starting a pump.
	done := make(chan struct{})
	go func() {
		e.Loop()
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	e.ExitLoop()
	<-done

	for i := 0; i < 8; i++ {
		if q := queues.TakeOld(); q != nil {
			bus.Dispatch(q.Messages())
		}
	}
	if q := queues.Current(); q != nil {
		bus.Dispatch(q.Messages())
	}

	if loadMessages == 0 {
		t.Error("expected at least one EngineLoad message after more than one block rendered")
	}
}
