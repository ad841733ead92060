// Package processor implements the Processor base: the polymorphic audio
// node with a uniform lifecycle, port connections, and message/parameter
// plumbing shared by every graph node (spec §3 "Processor", §9 "Dynamic
// dispatch -> tagged variants").
//
// Grounded on pkg/framework/plugin/processor.go
// (BaseProcessor: embeddable struct with lifecycle hooks customized via
// callbacks/an embedded interface) generalized from VST3's two-state
// active/inactive model to the spec's five-state machine, and from a
// single ProcessAudio callback to the spec's three polymorphic entry
// points (process_block_internal, handle_message_internal,
// set_parameters_internal — spec §9).
package processor

import (
	"sync/atomic"

	"github.com/rimewave/audioproc/internal/status"
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/tripbuf"
)

// State is the processor lifecycle (spec §3, §4.6).
type State int32

const (
	Inactive State = iota
	Setup
	Running
	Broken
	Cleanup
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "INACTIVE"
	case Setup:
		return "SETUP"
	case Running:
		return "RUNNING"
	case Broken:
		return "BROKEN"
	case Cleanup:
		return "CLEANUP"
	default:
		return "UNKNOWN"
	}
}

// PortDirection distinguishes a processor's input ports from its outputs.
type PortDirection uint8

const (
	DirectionIn PortDirection = iota
	DirectionOut
)

// PortDescription names one of a processor's connection points.
type PortDescription struct {
	Name      string
	Direction PortDirection
}

// NodeDescription is a processor variant's static shape: its ports and
// its type tag (spec §3 "a NodeDescription (ports, processor-type tag)").
type NodeDescription struct {
	Ports    []PortDescription
	TypeTag  string
}

// PortIndex resolves a port name to its index, or -1 if absent.
func (d NodeDescription) PortIndex(name string) int {
	for i, p := range d.Ports {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Behavior is the only polymorphic surface a concrete processor variant
// implements; everything else (lifecycle, port wiring, mute, broken-state
// isolation) is handled uniformly by Processor (spec §9).
type Behavior interface {
	// SetupInternal runs once when the processor transitions
	// INACTIVE -> SETUP -> RUNNING.
	SetupInternal(p *Processor) error
	// ProcessBlockInternal renders one block using p.Ports() for
	// connected buffers. A returned error transitions the processor to
	// BROKEN (spec scenario 5).
	ProcessBlockInternal(p *Processor) error
	// HandleMessageInternal interprets an opaque per-node message (spec
	// §6 "Per-node messaging": "The Realm only routes; the Processor
	// subtype interprets").
	HandleMessageInternal(p *Processor, msg []byte) error
	// SetParametersInternal applies a parameter-bag mutation.
	SetParametersInternal(p *Processor, params map[string]float64) error
	// CleanupInternal runs once when the processor transitions toward
	// INACTIVE via CLEANUP.
	CleanupInternal(p *Processor)
}

// Processor is the engine-visible node: unique id, owning realm/node
// names, a NodeDescription, a mutable parameter bag, a mute flag, the
// connected-buffer array indexed by port, lifecycle state, and a
// notifications slot (spec §3).
type Processor struct {
	ID        uint64
	RealmName string
	NodeID    string
	Desc      NodeDescription
	Behavior  Behavior

	params *tripbuf.DoubleBuffered[map[string]float64]
	mute   atomic.Bool
	state  atomic.Int32

	ports []*buffer.Buffer

	// Notify is invoked on any lifecycle state change, wired by the Realm
	// to forward a NodeStateChange into the out-messages MessageQueue.
	Notify func(old, new State)
}

// New constructs an INACTIVE processor with no ports connected.
func New(id uint64, realmName, nodeID string, desc NodeDescription, behavior Behavior) *Processor {
	return &Processor{
		ID:        id,
		RealmName: realmName,
		NodeID:    nodeID,
		Desc:      desc,
		Behavior:  behavior,
		params:    tripbuf.NewDoubleBuffered(map[string]float64{}),
		ports:     make([]*buffer.Buffer, len(desc.Ports)),
	}
}

// State returns the current lifecycle state.
func (p *Processor) State() State { return State(p.state.Load()) }

func (p *Processor) setState(s State) {
	old := State(p.state.Swap(int32(s)))
	if old != s && p.Notify != nil {
		p.Notify(old, s)
	}
}

// Mute reports whether the processor is currently muted.
func (p *Processor) Mute() bool { return p.mute.Load() }

// SetMute sets the mute flag. Muted processors still run Behavior (per
// spec's silence-through semantics the VM applies at the buffer level),
// but a Backend/Realm may skip CALL entirely when muted — the flag is
// exposed for that decision, not enforced here.
func (p *Processor) SetMute(m bool) { p.mute.Store(m) }

// ConnectPort wires a port index to a concrete Buffer (spec §4.4
// CONNECT_PORT, init-pass only).
func (p *Processor) ConnectPort(portIndex int, b *buffer.Buffer) error {
	if portIndex < 0 || portIndex >= len(p.ports) {
		return status.Errorf("processor: port index %d out of range (0..%d)", portIndex, len(p.ports)-1)
	}
	p.ports[portIndex] = b
	return nil
}

// Port returns the buffer connected at portIndex, or nil if unconnected.
func (p *Processor) Port(portIndex int) *buffer.Buffer {
	if portIndex < 0 || portIndex >= len(p.ports) {
		return nil
	}
	return p.ports[portIndex]
}

// PortByName resolves a port by name and returns its connected buffer.
func (p *Processor) PortByName(name string) *buffer.Buffer {
	idx := p.Desc.PortIndex(name)
	if idx < 0 {
		return nil
	}
	return p.Port(idx)
}

// SetupBehavior transitions INACTIVE -> SETUP -> RUNNING, invoking
// Behavior.SetupInternal. A setup failure leaves the processor BROKEN.
func (p *Processor) SetupBehavior() error {
	p.setState(Setup)
	if err := p.Behavior.SetupInternal(p); err != nil {
		p.setState(Broken)
		return err
	}
	p.setState(Running)
	return nil
}

// ProcessBlock renders one block. If the processor is already BROKEN, it
// clears every connected output buffer and returns nil without invoking
// Behavior (spec scenario 5: "its outputs become silent for blocks >=
// 4 ... the Engine continues rendering"). Otherwise it invokes Behavior;
// an error transitions the processor to BROKEN and silences outputs on
// this same call, matching the "on block 3, the processor transitions to
// BROKEN" boundary.
func (p *Processor) ProcessBlock() error {
	if p.State() == Broken {
		p.silenceOutputs()
		return nil
	}
	if err := p.Behavior.ProcessBlockInternal(p); err != nil {
		p.setState(Broken)
		p.silenceOutputs()
		return err
	}
	return nil
}

func (p *Processor) silenceOutputs() {
	for i, port := range p.Desc.Ports {
		if port.Direction == DirectionOut && p.ports[i] != nil {
			p.ports[i].Clear()
		}
	}
}

// HandleMessage forwards an opaque message to Behavior (spec §6).
func (p *Processor) HandleMessage(msg []byte) error {
	return p.Behavior.HandleMessageInternal(p, msg)
}

// SetParameters publishes a parameter-bag mutation through the
// DoubleBuffered manager, then lets Behavior react (e.g. recompute
// derived coefficients) before the next ProcessBlock observes it.
func (p *Processor) SetParameters(params map[string]float64) error {
	p.params.Mutate(func(current map[string]float64) map[string]float64 {
		next := make(map[string]float64, len(current)+len(params))
		for k, v := range current {
			next[k] = v
		}
		for k, v := range params {
			next[k] = v
		}
		return next
	})
	return p.Behavior.SetParametersInternal(p, params)
}

// Parameters returns the current parameter bag (always the latest
// published generation; see pkg/tripbuf.DoubleBuffered.Load).
func (p *Processor) Parameters() map[string]float64 { return p.params.Load() }

// ParametersObserve returns the current parameter bag plus whether this
// is the first observation of this generation, for a Behavior that wants
// to react to changes exactly once per generation (spec §5 ordering
// guarantee).
func (p *Processor) ParametersObserve() (map[string]float64, bool) { return p.params.Observe() }

// Cleanup transitions toward INACTIVE via CLEANUP, invoking
// Behavior.CleanupInternal.
func (p *Processor) Cleanup() {
	p.setState(Cleanup)
	p.Behavior.CleanupInternal(p)
	p.setState(Inactive)
}
