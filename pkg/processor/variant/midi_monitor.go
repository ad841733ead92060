package variant

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/rimewave/audioproc/internal/logging"
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewMidiMonitorDescription describes the "midi-monitor" variant:
// AtomData in passed straight through to AtomData out.
func NewMidiMonitorDescription() processor.NodeDescription {
	return desc("midi-monitor",
		audioPort("events_in", processor.DirectionIn),
		audioPort("events_out", processor.DirectionOut))
}

// MidiMonitor is the "midi-monitor" processor variant: passes events
// through unchanged, counting how many it has seen. It never logs from
// ProcessBlockInternal — internal/logging's own doc comment notes the RT
// thread must not call through it after setup, so counting is the only
// per-block side effect; SetupInternal/CleanupInternal log the lifetime
// totals on the control thread where a charmbracelet/log write is safe.
type MidiMonitor struct {
	seen atomic.Uint64
	log  *log.Logger
}

func NewMidiMonitor() processor.Behavior { return &MidiMonitor{} }

func (m *MidiMonitor) SetupInternal(p *processor.Processor) error {
	m.log = logging.New("midi-monitor:" + p.NodeID)
	return nil
}

func (m *MidiMonitor) ProcessBlockInternal(p *processor.Processor) error {
	in := p.PortByName("events_in")
	out := p.PortByName("events_out")
	if in == nil || out == nil {
		return nil
	}
	count := buffer.EventCount(in.Region())
	m.seen.Add(uint64(count))
	return out.CopyFrom(in)
}

// Seen reports the total events observed over this processor's lifetime.
func (m *MidiMonitor) Seen() uint64 { return m.seen.Load() }

func (m *MidiMonitor) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (m *MidiMonitor) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (m *MidiMonitor) CleanupInternal(p *processor.Processor) {
	if m.log != nil {
		m.log.Infof("midi-monitor %s observed %d events total", p.NodeID, m.seen.Load())
	}
}
