// Package engine implements the Engine: the single real-time render loop
// described step by step in spec §4.9, driving exactly one root Realm
// against a Backend and handing filled out-message queues off to the
// notification pump thread.
//
// Grounded on pkg/framework/debug/profiler.go
// (AudioProcessProfiler's cpu_load = avg_process_time/buffer_duration
// calculation, reused verbatim for step 8's EngineLoad) and
// pkg/framework/process/multibus.go's activate/render/deactivate loop
// shape, generalized from a per-call render to a free-running RT loop
// with an idle-sleep fallback.
package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/rimewave/audioproc/internal/logging"
	"github.com/rimewave/audioproc/internal/status"
	"github.com/rimewave/audioproc/pkg/backend"
	"github.com/rimewave/audioproc/pkg/host"
	"github.com/rimewave/audioproc/pkg/msgqueue"
	"github.com/rimewave/audioproc/pkg/realm"
	"github.com/rimewave/audioproc/pkg/specpkg"
	"github.com/rimewave/audioproc/pkg/tripbuf"
)

// idleSleep is how long the loop sleeps when no Program is active (spec
// §4.9 step 1, spec §5 "The RT loop sleeps 100 ms only when no program is
// active").
const idleSleep = 100 * time.Millisecond

// initialQueueCapacity sizes each out-messages Queue generously enough
// that steady-state operation never triggers msgqueue's RT-unsafe Grow.
const initialQueueCapacity = 4096

// audioChannels is the fixed pair of sink channels the loop drains every
// block (spec §4.9 step 7: "sink:in:left, sink:in:right"). EVENTS has no
// fixed sink buffer name and is not part of this per-block sweep.
var audioChannels = [2]backend.Channel{backend.AudioLeft, backend.AudioRight}

// Pump is the subset of *internal/pump.Pump the Engine needs: a
// non-blocking nudge once a new out-message batch exists. Declared here
// rather than imported directly so this package has no dependency on
// internal/pump's construction details.
type Pump interface {
	WakeUp()
}

// Engine drives one RT render loop against root (spec §4.9, §3 "Engine").
type Engine struct {
	root    *realm.Realm
	backend backend.Backend
	host    *host.System
	queues  *tripbuf.TripleBuffer[msgqueue.Queue]
	pump    Pump
	log     *log.Logger

	exiting       bool
	blockDuration time.Duration
}

// New builds an Engine rendering root through be, sized to h's
// sample_rate/block_size. queues is the out-messages TripleBuffer shared
// with the pump (internal/pump.New must be constructed over the same
// instance). pump may be nil in tests that don't care about notification
// delivery timing.
func New(root *realm.Realm, be backend.Backend, h *host.System, queues *tripbuf.TripleBuffer[msgqueue.Queue], p Pump, logger *log.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	e := &Engine{
		root:    root,
		backend: be,
		host:    h,
		queues:  queues,
		pump:    p,
		log:     logger,
		blockDuration: time.Duration(
			float64(h.BlockSize()) / h.SampleRate() * float64(time.Second),
		),
	}
	// Bootstrap the out-messages TripleBuffer with two empty queues: one
	// promoted straight into "current" (so the RT loop's first Acquire
	// has something to fill) and one left in "next" (so that same first
	// Acquire also has a recycled queue to promote instead of finding
	// nothing). Steady state afterward is exactly pkg/tripbuf's documented
	// cycle: the pump's Recycle refills "next", this loop's Acquire at
	// step 2 is the only promotion point.
	e.queues.Publish(msgqueue.New(initialQueueCapacity))
	e.queues.Acquire()
	e.queues.Publish(msgqueue.New(initialQueueCapacity))
	return e
}

// ExitLoop flips the cooperative stop flag Loop checks at the top of
// every iteration (spec §4.9 "exit_loop() flips an atomic flag read at
// the top of each iteration").
func (e *Engine) ExitLoop() { e.exiting = true }

// Loop runs the RT render loop until ExitLoop is called or the backend
// reports a ConnectionClosed status (spec §7: "backend sets a stop flag;
// engine exits the loop"). Meant to be launched on its own goroutine,
// ideally with SetRealtimePriority called first.
func (e *Engine) Loop() {
	firstBlock := true
	for !e.exiting {
		program := e.root.GetActiveProgram() // step 1
		if program == nil {
			time.Sleep(idleSleep)
			continue
		}

		q := e.queues.Acquire() // step 2
		if q == nil {
			q = msgqueue.New(initialQueueCapacity)
		}
		if e.pump != nil {
			e.pump.WakeUp()
		}

		block := e.root.Block()
		block.OutMessages = q

		if !block.Perf.IsEmpty() { // step 3
			q.PushPerfStats(block.Perf)
		}
		block.Perf.Reset() // step 4
		if block.InputEvents != nil {
			block.InputEvents.Clear()
		}

		loopStart := time.Now()
		e.renderBlock(program)

		if !firstBlock { // step 8
			load := float64(time.Since(loopStart)) / float64(e.blockDuration)
			q.PushEngineLoad(load)
		}
		firstBlock = false

		block.SamplePos += uint64(e.host.BlockSize())

		if e.pump != nil { // step 10
			e.pump.WakeUp()
		}
	}
}

// renderBlock runs steps 5-9 of the loop: begin_block, process_block,
// sink output, end_block. end_block is wrapped in a deferred, idempotent
// closure standing in for the spec's "scope guard" (spec §4.9 step 5:
// "install a scope guard that will call end_block on any failure path"),
// dismissed by the explicit call at the bottom on the success path (step
// 9: "Dismiss the scope guard; call backend.end_block(ctx) explicitly").
func (e *Engine) renderBlock(program *specpkg.Program) {
	ctx := &backend.Context{SamplePos: e.root.Block().SamplePos}

	if err := e.backend.BeginBlock(ctx); err != nil {
		e.handleStatus("begin_block", err)
		return
	}

	ended := false
	endBlock := func() {
		if ended {
			return
		}
		ended = true
		if err := e.backend.EndBlock(ctx); err != nil {
			e.handleStatus("end_block", err)
		}
	}
	defer endBlock()

	if err := e.root.ProcessProgram(program); err != nil {
		e.handleStatus("process_block", err)
		return
	}

	for _, ch := range audioChannels {
		buf, ok := e.root.Buffer(backend.SinkBufferName(ch))
		if !ok {
			continue
		}
		if err := e.backend.Output(ctx, ch, buf); err != nil {
			e.handleStatus("output", err)
		}
	}

	endBlock()
}

// handleStatus logs err and, per spec §7's taxonomy, exits the loop on a
// ConnectionClosed status ("backend/IPC peer closed ... engine exits the
// loop"). Every other kind is recoverable: the block aborts but the loop
// continues.
func (e *Engine) handleStatus(stage string, err error) {
	if status.Is(err, status.KindConnectionClosed) {
		e.log.Warn("backend connection closed, exiting loop", "stage", stage, "err", err)
		e.exiting = true
		return
	}
	e.log.Error("block aborted", "stage", stage, "err", err)
}
