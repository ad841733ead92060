package variant

import (
	"math"
	"sync/atomic"

	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewVUMeterDescription describes the "vumeter" variant: audio in, plus a
// FloatControlValue-shaped "level" output port carrying the latest RMS.
func NewVUMeterDescription() processor.NodeDescription {
	return desc("vumeter",
		audioPort("in", processor.DirectionIn),
		audioPort("level", processor.DirectionOut))
}

// VUMeter is the "vumeter" processor variant. Grounded on
// pkg/dsp/analysis/meters.go's RMSMeter concept (sliding-window RMS) but
// deliberately NOT using RMSMeter/PhaseScope's `sync.Mutex`-guarded
// implementation: those types are built for a UI thread polling a
// separately-locked display buffer, and spec §5 forbids the RT thread
// from taking a lock on its once-per-block path. Instead this computes a
// single-block RMS directly (same per-block math the VM's own POST_RMS
// opcode uses) and republishes it through the generation-guarded
// FloatControlValue wire format so a control-thread reader never
// contends with the renderer.
type VUMeter struct {
	generation atomic.Uint64
}

func NewVUMeter() processor.Behavior { return &VUMeter{} }

func (m *VUMeter) SetupInternal(p *processor.Processor) error { return nil }

func (m *VUMeter) ProcessBlockInternal(p *processor.Processor) error {
	in := p.PortByName("in")
	level := p.PortByName("level")
	if in == nil || level == nil {
		return nil
	}
	samples := in.Float32()
	var sumSquares float64
	for _, v := range samples {
		sumSquares += float64(v) * float64(v)
	}
	rms := float32(0)
	if len(samples) > 0 {
		rms = float32(math.Sqrt(sumSquares / float64(len(samples))))
	}
	gen := m.generation.Add(1)
	buffer.WriteValueGeneration(level.Region(), rms, gen)
	return nil
}

func (m *VUMeter) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (m *VUMeter) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (m *VUMeter) CleanupInternal(p *processor.Processor) {}
