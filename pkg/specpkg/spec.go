// Package specpkg implements Spec and Program: the immutable rendering
// plan a Realm activates and the VM executes (spec §3 "Spec", "Program").
//
// Grounded on pkg/framework/bus/builder.go (fluent builder
// accumulating entries plus a deferred Validate/Build step) and
// pkg/framework/param/registry.go (name/id -> index maps alongside a
// backing slice). Generalized from bus/parameter entries to the five
// vectors a Spec owns (instructions, buffer types, processor ids, control
// value names, child realm names) because a Spec is sealed once and then
// referenced purely by index from the VM, never mutated again.
package specpkg

import (
	"fmt"

	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/musictime"
	"github.com/rimewave/audioproc/pkg/opcode"
)

// Spec is the immutable plan for a program: opcodes plus the referenced
// resource vectors opcode arguments index into (spec §3).
type Spec struct {
	Instructions []opcode.Instruction

	BufferTypes    []buffer.Type
	bufferIndex    map[string]int

	ProcessorIDs []uint64
	processorIndex map[uint64]int

	ControlValueNames []string
	controlValueIndex map[string]int

	ChildRealmNames []string
	childRealmIndex map[string]int

	BPM      uint32
	Duration musictime.Duration
}

// BufferIndex resolves a buffer name to its index, per Spec's auxiliary
// name->index map (spec §3 "a vector of BufferTypes with an auxiliary
// name->index map").
func (s *Spec) BufferIndex(name string) (int, bool) {
	i, ok := s.bufferIndex[name]
	return i, ok
}

// ProcessorIndex resolves a processor's 64-bit id to its index.
func (s *Spec) ProcessorIndex(id uint64) (int, bool) {
	i, ok := s.processorIndex[id]
	return i, ok
}

// ControlValueIndex resolves a control value name to its index.
func (s *Spec) ControlValueIndex(name string) (int, bool) {
	i, ok := s.controlValueIndex[name]
	return i, ok
}

// ChildRealmIndex resolves a child realm name to its index.
func (s *Spec) ChildRealmIndex(name string) (int, bool) {
	i, ok := s.childRealmIndex[name]
	return i, ok
}

// Builder accumulates a Spec's vectors and instructions, then validates
// every opcode argument reference before sealing (spec §3 invariant:
// "opcode arguments only reference indices that exist ... at the moment
// the Spec is sealed").
type Builder struct {
	spec   *Spec
	errors []error
}

// NewBuilder starts a new Spec under construction.
func NewBuilder() *Builder {
	return &Builder{
		spec: &Spec{
			bufferIndex:       make(map[string]int),
			processorIndex:    make(map[uint64]int),
			controlValueIndex: make(map[string]int),
			childRealmIndex:   make(map[string]int),
			BPM:               120,
			Duration:          musictime.NewDuration(4, 1),
		},
	}
}

// WithBPM sets the Spec's tempo.
func (b *Builder) WithBPM(bpm uint32) *Builder {
	b.spec.BPM = bpm
	return b
}

// WithDuration sets the Spec's musical duration.
func (b *Builder) WithDuration(d musictime.Duration) *Builder {
	b.spec.Duration = d
	return b
}

// WithBuffer appends a named buffer type; its index is its position in
// declaration order (see BufferIndex).
func (b *Builder) WithBuffer(name string, t buffer.Type) *Builder {
	if _, exists := b.spec.bufferIndex[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("duplicate buffer name %q", name))
		return b
	}
	b.spec.bufferIndex[name] = len(b.spec.BufferTypes)
	b.spec.BufferTypes = append(b.spec.BufferTypes, t)
	return b
}

// WithProcessor references a processor by its 64-bit id.
func (b *Builder) WithProcessor(id uint64) *Builder {
	if _, exists := b.spec.processorIndex[id]; exists {
		b.errors = append(b.errors, fmt.Errorf("duplicate processor id %d", id))
		return b
	}
	b.spec.processorIndex[id] = len(b.spec.ProcessorIDs)
	b.spec.ProcessorIDs = append(b.spec.ProcessorIDs, id)
	return b
}

// WithControlValue references a named control value.
func (b *Builder) WithControlValue(name string) *Builder {
	if _, exists := b.spec.controlValueIndex[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("duplicate control value name %q", name))
		return b
	}
	b.spec.controlValueIndex[name] = len(b.spec.ControlValueNames)
	b.spec.ControlValueNames = append(b.spec.ControlValueNames, name)
	return b
}

// WithChildRealm references a named child realm, rejecting duplicates
// (spec §9 "Realm -> child-realm references form a DAG enforced by
// Spec's append_child_realm (duplicates rejected)").
func (b *Builder) WithChildRealm(name string) *Builder {
	if _, exists := b.spec.childRealmIndex[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("duplicate child realm name %q", name))
		return b
	}
	b.spec.childRealmIndex[name] = len(b.spec.ChildRealmNames)
	b.spec.ChildRealmNames = append(b.spec.ChildRealmNames, name)
	return b
}

// Instruction appends one instruction to the program.
func (b *Builder) Instruction(inst opcode.Instruction) *Builder {
	b.spec.Instructions = append(b.spec.Instructions, inst)
	return b
}

// Validate checks every opcode's reference-kind arguments against the
// vectors accumulated so far.
func (b *Builder) Validate() error {
	if len(b.errors) > 0 {
		return fmt.Errorf("spec builder errors: %v", b.errors)
	}
	for i, inst := range b.spec.Instructions {
		for _, arg := range inst.Args {
			switch arg.Kind {
			case opcode.ArgBufferRef:
				if arg.Int < 0 || int(arg.Int) >= len(b.spec.BufferTypes) {
					return fmt.Errorf("instruction %d: buffer ref %d out of range", i, arg.Int)
				}
			case opcode.ArgProcessorRef:
				if arg.Int < 0 || int(arg.Int) >= len(b.spec.ProcessorIDs) {
					return fmt.Errorf("instruction %d: processor ref %d out of range", i, arg.Int)
				}
			case opcode.ArgControlValueRef:
				if arg.Int < 0 || int(arg.Int) >= len(b.spec.ControlValueNames) {
					return fmt.Errorf("instruction %d: control value ref %d out of range", i, arg.Int)
				}
			case opcode.ArgChildRealmRef:
				if arg.Int < 0 || int(arg.Int) >= len(b.spec.ChildRealmNames) {
					return fmt.Errorf("instruction %d: child realm ref %d out of range", i, arg.Int)
				}
			}
		}
	}
	return nil
}

// Build validates and returns the sealed Spec.
func (b *Builder) Build() (*Spec, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.spec, nil
}

// MustBuild returns the sealed Spec or panics on a validation error.
// Intended for control-thread call sites that have already guaranteed a
// valid Spec (e.g. tests, fixed startup graphs).
func (b *Builder) MustBuild() *Spec {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
