// Command audioengine wires one Realm, Engine, Backend, and notification
// Pump together and runs the RT loop until interrupted. It plays a single
// free-running oscillator processor out to both sink channels — a
// minimal but complete demonstration of every package this repo builds,
// standing in for a per-effect examples/ directory convention (each of
// which registers one VST3 plugin) now that the thing being wired up is
// a standalone engine process rather than a plugin the host drives.
package main

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rimewave/audioproc/internal/logging"
	"github.com/rimewave/audioproc/internal/notify"
	"github.com/rimewave/audioproc/internal/pump"
	"github.com/rimewave/audioproc/pkg/backend"
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/engine"
	"github.com/rimewave/audioproc/pkg/host"
	"github.com/rimewave/audioproc/pkg/msgqueue"
	"github.com/rimewave/audioproc/pkg/opcode"
	"github.com/rimewave/audioproc/pkg/player"
	"github.com/rimewave/audioproc/pkg/processor"
	"github.com/rimewave/audioproc/pkg/processor/variant"
	"github.com/rimewave/audioproc/pkg/realm"
	"github.com/rimewave/audioproc/pkg/specpkg"
	"github.com/rimewave/audioproc/pkg/tripbuf"
)

const (
	sampleRate = 48000.0
	blockSize  = 256
)

func main() {
	log := logging.New("audioengine")

	h := host.New(sampleRate, blockSize, nil)
	root := realm.New("root", h, sampleRate, 1)
	root.Setup(blockSize)

	osc := processor.New(1, "root", "osc1", variant.NewOscillatorDescription(), variant.NewOscillator(sampleRate))
	if err := osc.SetupBehavior(); err != nil {
		log.Fatal("oscillator setup failed", "err", err)
	}
	root.AddProcessor(osc)

	transport := player.New("root")
	if err := transport.UpdateState(player.Mutation{SetPlaying: true, Playing: true}); err != nil {
		log.Fatal("player setup failed", "err", err)
	}
	root.AttachPlayer(transport)

	spec := specpkg.NewBuilder().
		WithBuffer("osc", buffer.NewFloatAudioBlockType(blockSize)).
		WithBuffer("sink:in:left", buffer.NewFloatAudioBlockType(blockSize)).
		WithBuffer("sink:in:right", buffer.NewFloatAudioBlockType(blockSize)).
		WithProcessor(1).
		Instruction(opcode.New(opcode.CONNECT_PORT, opcode.ProcessorRef(0), opcode.Int(0), opcode.BufferRef(0))).
		Instruction(opcode.New(opcode.CALL, opcode.ProcessorRef(0))).
		Instruction(opcode.New(opcode.COPY, opcode.BufferRef(0), opcode.BufferRef(1))).
		Instruction(opcode.New(opcode.COPY, opcode.BufferRef(0), opcode.BufferRef(2))).
		Instruction(opcode.New(opcode.END)).
		MustBuild()
	if err := root.SetSpec(spec); err != nil {
		log.Fatal("spec activation failed", "err", err)
	}

	be := backend.NewNull()
	blockDuration := time.Duration(float64(blockSize) / sampleRate * float64(time.Second))
	be.SetPacing(blockDuration, 1.0)
	if err := be.Setup(root); err != nil {
		log.Fatal("backend setup failed", "err", err)
	}
	defer be.Cleanup()

	bus := notify.NewBus()
	bus.Register(func(m msgqueue.Message) {
		if m.Kind == msgqueue.KindEngineLoad {
			return // not logged; avoids a log line every block
		}
		log.Debug("engine notification", "kind", m.Kind)
	})

	queues := tripbuf.New[msgqueue.Queue]()
	p := pump.New(queues, bus, logging.New("pump"))
	go p.Run()
	defer p.Stop()

	e := engine.New(root, be, h, queues, p, logging.New("engine"))

	done := make(chan struct{})
	go func() {
		runtime.LockOSThread() // Setpriority is per-OS-thread on Linux
		if err := engine.SetRealtimePriority(); err != nil {
			log.Warn("could not raise RT scheduling priority", "err", err)
		}
		e.Loop()
		close(done)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	e.ExitLoop()
	<-done
}
