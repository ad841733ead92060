// Package realm implements Realm: the named container that owns a set of
// processors, control values, child realms, and an optional Player,
// coordinates the Program swap protocol, and maintains the per-block
// scratch state the VM renders against (spec §3 "Realm", §4.7).
//
// Grounded on pkg/framework/process/multibus.go (an owner
// that activates/deactivates a fixed registry of named collaborators
// around a swappable processing plan) generalized from the
// single-generation bus table to the spec's full {next, current, old}
// Program handoff plus reference-counted collaborator lifetime, since the
// teacher never needed to hot-swap its bus plan while rendering.
package realm

import (
	"fmt"

	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/control"
	"github.com/rimewave/audioproc/pkg/msgqueue"
	"github.com/rimewave/audioproc/pkg/musictime"
	"github.com/rimewave/audioproc/pkg/perf"
	"github.com/rimewave/audioproc/pkg/player"
	"github.com/rimewave/audioproc/pkg/processor"
	"github.com/rimewave/audioproc/pkg/specpkg"
	"github.com/rimewave/audioproc/pkg/tripbuf"
	"github.com/rimewave/audioproc/pkg/vm"
)

type processorEntry struct {
	proc     *processor.Processor
	refCount int
}

type controlValueEntry struct {
	value    control.Value
	refCount int
}

type childRealmEntry struct {
	realm    *Realm
	refCount int
}

// programResources bundles everything a Program needs to render once its
// Spec's referenced collaborators are resolved: the arena it was built
// against (for later reclamation) and a vm.Context whose Processors/
// ControlValues/ChildRealms slices never change for this Program's
// lifetime. Built once on the control thread inside SetSpec; the RT
// thread only ever mutates vmCtx's OutMessages/Perf fields in place, so
// rendering a block never allocates here.
type programResources struct {
	arena *buffer.Arena
	vmCtx *vm.Context
}

// BlockContext is the per-realm scratch reused every block (spec §4.7
// "BlockContext"): current sample position, perf stats, the sample-time
// map the Player fills, the out-messages queue and input-event buffer for
// this block, and a small ancillary map of named ad-hoc buffers. Created
// at Realm.Setup, destroyed at Realm.Cleanup, mutated only on the RT
// thread.
type BlockContext struct {
	SamplePos   uint64
	Perf        *perf.Stats
	TimeMap     []musictime.SampleTime
	OutMessages *msgqueue.Queue
	InputEvents *buffer.Buffer
	Arena       *buffer.Arena
	Ancillary   map[string]*buffer.Buffer
}

// Realm is a named owner of processors, control values, and child realms,
// driving one Program swap cycle and exposing named-buffer access (spec
// §3 "Realm").
type Realm struct {
	Name string

	host       buffer.HostSystem
	sampleRate uint32

	programs    *tripbuf.TripleBuffer[specpkg.Program]
	nextVersion uint64
	resources   map[*specpkg.Program]*programResources

	processors    map[uint64]*processorEntry
	controlValues map[string]*controlValueEntry
	childRealms   map[string]*childRealmEntry

	arenaPool []*buffer.Arena

	block *BlockContext

	player *player.Player

	rngSeed uint64
}

// New constructs an empty Realm. Setup must be called before the first
// ProcessBlock to allocate its BlockContext.
func New(name string, host buffer.HostSystem, sampleRate uint32, rngSeed uint64) *Realm {
	return &Realm{
		Name:          name,
		host:          host,
		sampleRate:    sampleRate,
		programs:      tripbuf.New[specpkg.Program](),
		resources:     make(map[*specpkg.Program]*programResources),
		processors:    make(map[uint64]*processorEntry),
		controlValues: make(map[string]*controlValueEntry),
		childRealms:   make(map[string]*childRealmEntry),
		rngSeed:       rngSeed,
	}
}

// Setup allocates the Realm's BlockContext for a given block size (spec
// §4.7 "BlockContext: created at Realm.setup").
func (r *Realm) Setup(blockSize int) {
	r.block = &BlockContext{
		Perf:      &perf.Stats{},
		TimeMap:   make([]musictime.SampleTime, blockSize),
		Ancillary: make(map[string]*buffer.Buffer),
	}
}

// Cleanup forcibly deactivates every Program slot and destroys the
// BlockContext (spec §4.7 "BlockContext: ... destroyed at Realm.cleanup").
func (r *Realm) Cleanup() {
	r.ClearPrograms()
	r.block = nil
}

// Block returns the Realm's BlockContext, or nil before Setup.
func (r *Realm) Block() *BlockContext { return r.block }

// AddProcessor registers a processor with the Realm exactly once, wiring
// its lifecycle Notify to forward a NodeStateChange into the current
// block's out-messages queue (spec §4.3's supplemented NodeStateChange
// payload). It starts at ref_count 0: a Spec must reference it before it
// is ever activated.
func (r *Realm) AddProcessor(p *processor.Processor) {
	if _, exists := r.processors[p.ID]; exists {
		return
	}
	p.Notify = func(oldState, newState processor.State) {
		if r.block == nil || r.block.OutMessages == nil {
			return
		}
		r.block.OutMessages.PushNodeStateChange(msgqueue.NodeStateChange{
			NodeID:   p.NodeID,
			OldState: uint8(oldState),
			NewState: uint8(newState),
		})
	}
	r.processors[p.ID] = &processorEntry{proc: p}
}

// AddControlValue registers a named control value with the Realm exactly
// once.
func (r *Realm) AddControlValue(v control.Value) {
	if _, exists := r.controlValues[v.Name()]; exists {
		return
	}
	r.controlValues[v.Name()] = &controlValueEntry{value: v}
}

// AddChildRealm registers a nested Realm under a name exactly once (spec
// §9: "Realm -> child-realm references form a DAG").
func (r *Realm) AddChildRealm(name string, child *Realm) {
	if _, exists := r.childRealms[name]; exists {
		return
	}
	r.childRealms[name] = &childRealmEntry{realm: child}
}

// AttachPlayer gives this Realm an optional musical transport (spec §3
// "Realm ... owning: ... an optional Player"). ProcessProgram fills the
// block's time map from it, once per block, before running the VM.
func (r *Realm) AttachPlayer(p *player.Player) { r.player = p }

// Player returns the Realm's attached transport, or nil if none was set.
func (r *Realm) Player() *player.Player { return r.player }

// activateSpec walks every collaborator a Spec references and increments
// its ref_count (spec §4.7 "activate_program"). It validates every
// reference before mutating anything, so a Spec naming one unregistered
// collaborator leaves every ref_count untouched rather than partially
// activating.
func (r *Realm) activateSpec(spec *specpkg.Spec) error {
	for _, id := range spec.ProcessorIDs {
		if _, ok := r.processors[id]; !ok {
			return fmt.Errorf("realm %s: spec references unknown processor %d", r.Name, id)
		}
	}
	for _, name := range spec.ControlValueNames {
		if _, ok := r.controlValues[name]; !ok {
			return fmt.Errorf("realm %s: spec references unknown control value %q", r.Name, name)
		}
	}
	for _, name := range spec.ChildRealmNames {
		if _, ok := r.childRealms[name]; !ok {
			return fmt.Errorf("realm %s: spec references unknown child realm %q", r.Name, name)
		}
	}

	for _, id := range spec.ProcessorIDs {
		r.processors[id].refCount++
	}
	for _, name := range spec.ControlValueNames {
		r.controlValues[name].refCount++
	}
	for _, name := range spec.ChildRealmNames {
		r.childRealms[name].refCount++
	}
	return nil
}

// deactivateSpec decrements every collaborator a Spec referenced,
// destroying (full teardown via its own cleanup) any whose ref_count
// reaches zero (spec §4.7 "Activation counts").
func (r *Realm) deactivateSpec(spec *specpkg.Spec) {
	for _, id := range spec.ProcessorIDs {
		e, ok := r.processors[id]
		if !ok {
			continue
		}
		e.refCount--
		if e.refCount <= 0 {
			e.proc.Cleanup()
			delete(r.processors, id)
		}
	}
	for _, name := range spec.ControlValueNames {
		e, ok := r.controlValues[name]
		if !ok {
			continue
		}
		e.refCount--
		if e.refCount <= 0 {
			delete(r.controlValues, name)
		}
	}
	for _, name := range spec.ChildRealmNames {
		e, ok := r.childRealms[name]
		if !ok {
			continue
		}
		e.refCount--
		if e.refCount <= 0 {
			e.realm.Cleanup()
			delete(r.childRealms, name)
		}
	}
}

func (r *Realm) acquireArena(size int) *buffer.Arena {
	best := -1
	for i, a := range r.arenaPool {
		if a.FitsSize(size) && (best == -1 || r.arenaPool[i].Cap() < r.arenaPool[best].Cap()) {
			best = i
		}
	}
	if best < 0 {
		return buffer.NewArena(size)
	}
	a := r.arenaPool[best]
	r.arenaPool = append(r.arenaPool[:best], r.arenaPool[best+1:]...)
	a.Reset()
	return a
}

func (r *Realm) releaseArena(a *buffer.Arena) {
	r.arenaPool = append(r.arenaPool, a)
}

func (r *Realm) releaseProgram(p *specpkg.Program) {
	if p == nil {
		return
	}
	r.deactivateSpec(p.Spec)
	if res, ok := r.resources[p]; ok {
		r.releaseArena(res.arena)
		delete(r.resources, p)
	}
}

// SetSpec builds a Program from spec, activates the collaborators it
// references, and publishes it into the "next" slot (spec §4.7
// "set_spec"). If a not-yet-consumed Program was already waiting in
// "next", it is deactivated and destroyed here; any Program sitting in
// "old" is reclaimed too, so a control thread calling SetSpec repeatedly
// never needs a separate RunMaintenance call to keep up.
func (r *Realm) SetSpec(spec *specpkg.Spec) error {
	if err := r.activateSpec(spec); err != nil {
		return err
	}

	size := 0
	for _, t := range spec.BufferTypes {
		size += t.Size(r.host)
	}
	arena := r.acquireArena(size)

	r.nextVersion++
	program := specpkg.NewProgram(spec, arena, r.host, r.sampleRate, r.nextVersion)

	processors := make([]*processor.Processor, len(spec.ProcessorIDs))
	for i, id := range spec.ProcessorIDs {
		processors[i] = r.processors[id].proc
	}
	controlValues := make([]control.Value, len(spec.ControlValueNames))
	for i, name := range spec.ControlValueNames {
		controlValues[i] = r.controlValues[name].value
	}
	childRealms := make([]vm.ChildRealm, len(spec.ChildRealmNames))
	for i, name := range spec.ChildRealmNames {
		childRealms[i] = r.childRealms[name].realm
	}

	var outMessages *msgqueue.Queue
	var stats *perf.Stats
	if r.block != nil {
		outMessages, stats = r.block.OutMessages, r.block.Perf
	}
	vmCtx := vm.NewContext(program, processors, controlValues, childRealms, outMessages, stats, r.rngSeed)
	r.resources[program] = &programResources{arena: arena, vmCtx: vmCtx}

	if displaced := r.programs.Publish(program); displaced != nil {
		r.releaseProgram(displaced)
	}
	r.RunMaintenance()
	return nil
}

// RunMaintenance deactivates and destroys whatever sits in the "old" slot
// (spec §4.7 "run_maintenance"). Safe to call repeatedly; a no-op when
// "old" is empty.
func (r *Realm) RunMaintenance() {
	r.releaseProgram(r.programs.TakeOld())
}

// ClearPrograms forcibly deactivates every Program slot (spec §4.7
// "clear_programs"). After it returns, every processor/control-value/
// child-realm this Realm registered has ref_count 0 and has been
// destroyed, satisfying the invariant "R.processors, R.control_values,
// R.child_realms are empty".
func (r *Realm) ClearPrograms() {
	next, current, old := r.programs.Clear()
	r.releaseProgram(next)
	r.releaseProgram(current)
	r.releaseProgram(old)
}

// GetActiveProgram is the RT-thread read path: promotes "next" to
// "current" when "old" is empty, returning the now-current Program (spec
// §4.7 "get_active_program"). Returns nil if no Program has ever been
// published.
func (r *Realm) GetActiveProgram() *specpkg.Program {
	return r.programs.Acquire()
}

// ProcessBlock renders one block against the currently active Program
// (spec §4.9 engine loop step 6: "realm.process_block(program)"). A nil
// active Program is a silent no-op (the Engine's own "sleep 100ms"
// handling lives one level up, in pkg/engine). Also satisfies
// pkg/vm.ChildRealm, letting one Realm host another via CALL_CHILD_REALM.
func (r *Realm) ProcessBlock() error {
	program := r.GetActiveProgram()
	if program == nil {
		return nil
	}
	return r.ProcessProgram(program)
}

// ProcessProgram renders one block against an explicitly supplied Program
// (the Engine loop's step 1 already holds the latched Program and need
// not re-acquire it for step 6).
func (r *Realm) ProcessProgram(program *specpkg.Program) error {
	res, ok := r.resources[program]
	if !ok {
		return fmt.Errorf("realm %s: program has no resolved resources", r.Name)
	}
	if r.block != nil {
		res.vmCtx.OutMessages = r.block.OutMessages
		res.vmCtx.Perf = r.block.Perf
		if r.player != nil {
			r.player.FillTimeMap(program.Time, r.block.TimeMap, r.block.OutMessages)
		}
	}
	return vm.Run(res.vmCtx)
}

// Buffer resolves a named buffer through the current Program (spec §4.7
// "get_buffer(name) ... returns None if no current Program or the name is
// missing, never fails").
func (r *Realm) Buffer(name string) (*buffer.Buffer, bool) {
	p := r.programs.Current()
	if p == nil {
		return nil, false
	}
	return p.Buffer(name)
}

// SendProcessorMessage forwards an opaque message to a registered
// processor by id, verbatim (spec §4.7 "Processor messages / parameters
// ... the Realm does not introspect payloads").
func (r *Realm) SendProcessorMessage(id uint64, msg []byte) error {
	e, ok := r.processors[id]
	if !ok {
		return fmt.Errorf("realm %s: unknown processor %d", r.Name, id)
	}
	return e.proc.HandleMessage(msg)
}

// SetProcessorParameters forwards a parameter-bag mutation to a
// registered processor by id.
func (r *Realm) SetProcessorParameters(id uint64, params map[string]float64) error {
	e, ok := r.processors[id]
	if !ok {
		return fmt.Errorf("realm %s: unknown processor %d", r.Name, id)
	}
	return e.proc.SetParameters(params)
}

// SetFloatControlValue applies a generation-guarded write to a named
// float control value (spec §4.7 "set_float_control_value"). Writing a
// non-existent or wrong-type value is an error, not a panic.
func (r *Realm) SetFloatControlValue(name string, value float32, generation uint64) error {
	e, ok := r.controlValues[name]
	if !ok {
		return fmt.Errorf("realm %s: unknown control value %q", r.Name, name)
	}
	fcv, ok := e.value.(*control.FloatControlValue)
	if !ok {
		return fmt.Errorf("realm %s: control value %q is not a float control value", r.Name, name)
	}
	fcv.Write(value, generation)
	return nil
}
