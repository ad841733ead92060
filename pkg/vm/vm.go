// Package vm implements the block-scheduled VM: the interpreter that
// executes a Program's opcode list against its buffers and external
// collaborators (spec §3 "VM / Opcode interpreter", §4.4).
//
// Grounded on pkg/framework/dsp/chain.go (a fixed,
// sequentially-dispatched processing list) generalized to the spec's
// closed opcode set, two-pass init/run execution, and propagate-first-
// error-then-abort semantics (spec §4.4 "Semantics").
package vm

import (
	"fmt"
	"math"

	"github.com/rimewave/audioproc/internal/status"
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/control"
	"github.com/rimewave/audioproc/pkg/midi"
	"github.com/rimewave/audioproc/pkg/msgqueue"
	"github.com/rimewave/audioproc/pkg/opcode"
	"github.com/rimewave/audioproc/pkg/perf"
	"github.com/rimewave/audioproc/pkg/processor"
	"github.com/rimewave/audioproc/pkg/specpkg"
)

// ChildRealm is the minimal surface CALL_CHILD_REALM needs (spec §4.4):
// render one block and expose named sink buffers. pkg/realm.Realm
// satisfies this structurally; vm does not import pkg/realm to avoid a
// cycle (Realm is the one orchestrating the VM, not the other way
// around).
type ChildRealm interface {
	ProcessBlock() error
	Buffer(name string) (*buffer.Buffer, bool)
}

// Context bundles everything one Run call needs: the Program being
// executed and the concrete collaborators its Spec's reference vectors
// resolve to, in the same index order as Spec.ProcessorIDs /
// ControlValueNames / ChildRealmNames.
type Context struct {
	Program       *specpkg.Program
	Processors    []*processor.Processor
	ControlValues []control.Value
	ChildRealms   []ChildRealm

	OutMessages *msgqueue.Queue
	Perf        *perf.Stats

	rng uint64 // xorshift64 state for NOISE/MIDI_MONKEY; RT-safe, no locks
}

// NewContext seeds the VM's RNG. A zero seed, which xorshift64 would never
// leave, is replaced by a fixed nonzero constant.
func NewContext(program *specpkg.Program, processors []*processor.Processor, controlValues []control.Value, childRealms []ChildRealm, outMessages *msgqueue.Queue, stats *perf.Stats, seed uint64) *Context {
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &Context{
		Program:       program,
		Processors:    processors,
		ControlValues: controlValues,
		ChildRealms:   childRealms,
		OutMessages:   outMessages,
		Perf:          stats,
		rng:           seed,
	}
}

func (c *Context) nextFloat() float32 {
	c.rng ^= c.rng << 13
	c.rng ^= c.rng >> 7
	c.rng ^= c.rng << 17
	// top 24 bits -> [0,1)
	return float32(c.rng>>40) / float32(1<<24)
}

// Run executes program against ctx. On the first render of a Program
// version (Initialized == false) it runs every opcode's init handler
// (currently only CONNECT_PORT) before resetting the program counter and
// running every opcode's run handler; subsequent renders skip the init
// pass (spec §4.4 "Two passes").
func Run(ctx *Context) error {
	prog := ctx.Program
	if !prog.Initialized {
		for i, inst := range prog.Spec.Instructions {
			if inst.Op == opcode.CONNECT_PORT {
				if err := execConnectPort(ctx, inst); err != nil {
					return fmt.Errorf("vm: init pass instruction %d: %w", i, err)
				}
			}
		}
		prog.MarkInitialized()
	}

	for i, inst := range prog.Spec.Instructions {
		end, err := exec(ctx, inst)
		if err != nil {
			return fmt.Errorf("vm: instruction %d (%s): %w", i, inst.Op, err)
		}
		if end {
			break
		}
	}
	return nil
}

func (c *Context) buf(ref opcode.OpArg) (*buffer.Buffer, error) {
	idx := int(ref.Int)
	if idx < 0 || idx >= len(c.Program.Buffers) {
		return nil, status.Errorf("buffer ref %d out of range", idx)
	}
	return c.Program.Buffers[idx], nil
}

func exec(ctx *Context, inst opcode.Instruction) (end bool, err error) {
	switch inst.Op {
	case opcode.NOOP:
		return false, nil

	case opcode.END:
		return true, nil

	case opcode.COPY:
		dst, src, err := twoBuffers(ctx, inst)
		if err != nil {
			return false, err
		}
		return false, dst.CopyFrom(src)

	case opcode.CLEAR:
		b, err := ctx.buf(inst.Args[0])
		if err != nil {
			return false, err
		}
		b.Clear()
		return false, nil

	case opcode.MIX:
		dst, src, err := twoBuffers(ctx, inst)
		if err != nil {
			return false, err
		}
		return false, dst.Mix(src)

	case opcode.MUL:
		b, err := ctx.buf(inst.Args[0])
		if err != nil {
			return false, err
		}
		return false, b.Mul(inst.Args[1].Float)

	case opcode.SET_FLOAT:
		b, err := ctx.buf(inst.Args[0])
		if err != nil {
			return false, err
		}
		view := b.Float32()
		if len(view) > 0 {
			view[0] = inst.Args[1].Float
		}
		return false, nil

	case opcode.FETCH_CONTROL_VALUE:
		return false, execFetchControlValue(ctx, inst)

	case opcode.POST_RMS:
		return false, execPostRMS(ctx, inst)

	case opcode.NOISE:
		b, err := ctx.buf(inst.Args[0])
		if err != nil {
			return false, err
		}
		view := b.Float32()
		for i := range view {
			view[i] = ctx.nextFloat()*2 - 1
		}
		return false, nil

	case opcode.SINE:
		return false, status.Errorf("SINE is not implemented")

	case opcode.MIDI_MONKEY:
		return false, execMidiMonkey(ctx, inst)

	case opcode.CONNECT_PORT:
		// Only meaningful on the init pass; a run-pass occurrence is a no-op.
		return false, nil

	case opcode.CALL:
		idx := int(inst.Args[0].Int)
		if idx < 0 || idx >= len(ctx.Processors) {
			return false, status.Errorf("processor ref %d out of range", idx)
		}
		return false, ctx.Processors[idx].ProcessBlock()

	case opcode.LOG_RMS, opcode.LOG_ATOM:
		// Diagnostic only; the spec treats these as non-fatal logging hooks.
		return false, nil

	case opcode.CALL_CHILD_REALM:
		return false, execCallChildRealm(ctx, inst)

	default:
		return false, status.Errorf("unknown opcode %v", inst.Op)
	}
}

func twoBuffers(ctx *Context, inst opcode.Instruction) (dst, src *buffer.Buffer, err error) {
	src, err = ctx.buf(inst.Args[0])
	if err != nil {
		return nil, nil, err
	}
	dst, err = ctx.buf(inst.Args[1])
	if err != nil {
		return nil, nil, err
	}
	return dst, src, nil
}

func execConnectPort(ctx *Context, inst opcode.Instruction) error {
	procIdx := int(inst.Args[0].Int)
	if procIdx < 0 || procIdx >= len(ctx.Processors) {
		return status.Errorf("processor ref %d out of range", procIdx)
	}
	portIdx := int(inst.Args[1].Int)
	b, err := ctx.buf(inst.Args[2])
	if err != nil {
		return err
	}
	return ctx.Processors[procIdx].ConnectPort(portIdx, b)
}

func execFetchControlValue(ctx *Context, inst opcode.Instruction) error {
	cvIdx := int(inst.Args[0].Int)
	if cvIdx < 0 || cvIdx >= len(ctx.ControlValues) {
		return status.Errorf("control value ref %d out of range", cvIdx)
	}
	b, err := ctx.buf(inst.Args[1])
	if err != nil {
		return err
	}
	fcv, ok := ctx.ControlValues[cvIdx].(*control.FloatControlValue)
	if !ok {
		return status.Errorf("FETCH_CONTROL_VALUE: IntControlValue is not implemented")
	}
	value, generation := fcv.Load()
	buffer.WriteValueGeneration(b.Region(), value, generation)
	return nil
}

func execPostRMS(ctx *Context, inst opcode.Instruction) error {
	b, err := ctx.buf(inst.Args[2])
	if err != nil {
		return err
	}
	view := b.Float32()
	var sumSquares float64
	for _, v := range view {
		sumSquares += float64(v) * float64(v)
	}
	rms := float32(0)
	if len(view) > 0 {
		rms = float32(math.Sqrt(sumSquares / float64(len(view))))
	}
	if ctx.OutMessages != nil {
		payload := make([]byte, 8)
		bits := math.Float32bits(rms)
		payload[0] = byte(bits)
		payload[1] = byte(bits >> 8)
		payload[2] = byte(bits >> 16)
		payload[3] = byte(bits >> 24)
		ctx.OutMessages.PushNodeMessage("rms", payload[:4])
	}
	return nil
}

func execMidiMonkey(ctx *Context, inst opcode.Instruction) error {
	b, err := ctx.buf(inst.Args[0])
	if err != nil {
		return err
	}
	prob := inst.Args[1].Float
	if ctx.nextFloat() >= prob {
		return nil
	}
	note := midi.NoteOnEvent{
		BaseEvent:  midi.BaseEvent{EventChannel: 0, Offset: 0},
		NoteNumber: 60,
		Velocity:   100,
	}
	return buffer.EncodeEvents(b.Region(), append(buffer.DecodeEvents(b.Region()), note))
}

func execCallChildRealm(ctx *Context, inst opcode.Instruction) error {
	idx := int(inst.Args[0].Int)
	if idx < 0 || idx >= len(ctx.ChildRealms) {
		return status.Errorf("child realm ref %d out of range", idx)
	}
	child := ctx.ChildRealms[idx]

	outLeft, err := ctx.buf(inst.Args[1])
	if err != nil {
		return err
	}
	outRight, err := ctx.buf(inst.Args[2])
	if err != nil {
		return err
	}

	if err := child.ProcessBlock(); err != nil {
		outLeft.Clear()
		outRight.Clear()
		return fmt.Errorf("child realm: %w", err)
	}

	if sinkLeft, ok := child.Buffer("sink:in:left"); ok {
		_ = outLeft.CopyFrom(sinkLeft)
	}
	if sinkRight, ok := child.Buffer("sink:in:right"); ok {
		_ = outRight.CopyFrom(sinkRight)
	}
	return nil
}
