// Package opcode defines the VM's closed instruction set: OpArg, Instruction,
// and OpCode (spec §3 "OpArg / Instruction", §4.4 opcode table).
//
// Grounded on pkg/framework/dsp/chain.go (a fixed,
// sequentially-executed list of processing steps over named buffers) —
// generalized from Go closures to a tagged-union instruction encoding
// because the VM must support a two-pass init/run execution model and
// argument validation against a sealed Spec (spec §4.4 "Two passes"),
// neither of which a closure-based chain can do.
package opcode

import "fmt"

// OpCode is the closed set of VM instructions (spec §4.4).
type OpCode uint8

const (
	NOOP OpCode = iota
	CLEAR
	COPY
	MIX
	MUL
	SET_FLOAT
	FETCH_CONTROL_VALUE
	POST_RMS
	NOISE
	SINE
	MIDI_MONKEY
	CONNECT_PORT
	CALL
	LOG_RMS
	LOG_ATOM
	CALL_CHILD_REALM
	END
)

func (op OpCode) String() string {
	switch op {
	case NOOP:
		return "NOOP"
	case CLEAR:
		return "CLEAR"
	case COPY:
		return "COPY"
	case MIX:
		return "MIX"
	case MUL:
		return "MUL"
	case SET_FLOAT:
		return "SET_FLOAT"
	case FETCH_CONTROL_VALUE:
		return "FETCH_CONTROL_VALUE"
	case POST_RMS:
		return "POST_RMS"
	case NOISE:
		return "NOISE"
	case SINE:
		return "SINE"
	case MIDI_MONKEY:
		return "MIDI_MONKEY"
	case CONNECT_PORT:
		return "CONNECT_PORT"
	case CALL:
		return "CALL"
	case LOG_RMS:
		return "LOG_RMS"
	case LOG_ATOM:
		return "LOG_ATOM"
	case CALL_CHILD_REALM:
		return "CALL_CHILD_REALM"
	case END:
		return "END"
	default:
		return fmt.Sprintf("OpCode(%d)", uint8(op))
	}
}

// ArgKind tags an OpArg's payload. The four reference kinds (b/p/c/r in
// spec.md's invariant language) index into a sealed Spec's buffer,
// processor, control-value, and child-realm vectors respectively.
type ArgKind uint8

const (
	ArgInt ArgKind = iota
	ArgFloat
	ArgString
	ArgBufferRef
	ArgProcessorRef
	ArgControlValueRef
	ArgChildRealmRef
)

// OpArg is a tagged union of {int, float, string} plus the four index
// kinds (spec §3 "OpArg"). Only the field matching Kind is meaningful.
type OpArg struct {
	Kind  ArgKind
	Int   int64
	Float float32
	Str   string
}

func Int(v int64) OpArg            { return OpArg{Kind: ArgInt, Int: v} }
func Float(v float32) OpArg        { return OpArg{Kind: ArgFloat, Float: v} }
func String(v string) OpArg        { return OpArg{Kind: ArgString, Str: v} }
func BufferRef(idx int64) OpArg    { return OpArg{Kind: ArgBufferRef, Int: idx} }
func ProcessorRef(idx int64) OpArg { return OpArg{Kind: ArgProcessorRef, Int: idx} }
func ControlValueRef(idx int64) OpArg {
	return OpArg{Kind: ArgControlValueRef, Int: idx}
}
func ChildRealmRef(idx int64) OpArg { return OpArg{Kind: ArgChildRealmRef, Int: idx} }

// Instruction pairs an OpCode with its arguments (spec §3).
type Instruction struct {
	Op   OpCode
	Args []OpArg
}

// New builds an Instruction from an OpCode and its arguments.
func New(op OpCode, args ...OpArg) Instruction {
	return Instruction{Op: op, Args: args}
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s%v", i.Op, i.Args)
}
