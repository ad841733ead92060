package variant

import "github.com/rimewave/audioproc/pkg/processor"

// NewOscilloscopeDescription describes the "oscilloscope" variant: stereo
// audio passthrough plus internal waveform capture.
func NewOscilloscopeDescription() processor.NodeDescription {
	return desc("oscilloscope",
		audioPort("in_l", processor.DirectionIn),
		audioPort("in_r", processor.DirectionIn),
		audioPort("out_l", processor.DirectionOut),
		audioPort("out_r", processor.DirectionOut))
}

// Oscilloscope is the "oscilloscope" processor variant: a stereo
// passthrough that also captures the most recent block's L/R samples for
// a control-thread display to poll via Snapshot. Grounded on
// pkg/dsp/analysis/phasescope.go's stereo-capture concept, generalized
// away from its `sync.Mutex`-guarded ring buffer: spec §5 forbids the RT
// thread from locking, so capture writes straight into a
// double-buffered pair of fixed-size arrays and a generation counter
// (same swap idiom as pkg/tripbuf), letting the reader take whichever
// buffer isn't currently being written without blocking the renderer.
type Oscilloscope struct {
	bufs       [2][][2]float32
	writeSlot  int
	generation uint64
}

// NewOscilloscope allocates capture buffers sized to one render block.
func NewOscilloscope(blockSize int) processor.Behavior {
	return &Oscilloscope{
		bufs: [2][][2]float32{
			make([][2]float32, blockSize),
			make([][2]float32, blockSize),
		},
	}
}

func (o *Oscilloscope) SetupInternal(p *processor.Processor) error { return nil }

func (o *Oscilloscope) ProcessBlockInternal(p *processor.Processor) error {
	inL := p.PortByName("in_l")
	inR := p.PortByName("in_r")
	outL := p.PortByName("out_l")
	outR := p.PortByName("out_r")

	slot := o.bufs[o.writeSlot]
	if inL != nil && inR != nil {
		l, r := inL.Float32(), inR.Float32()
		n := len(slot)
		if len(l) < n {
			n = len(l)
		}
		if len(r) < n {
			n = len(r)
		}
		for i := 0; i < n; i++ {
			slot[i] = [2]float32{l[i], r[i]}
		}
	}
	o.writeSlot = 1 - o.writeSlot
	o.generation++

	if outL != nil && inL != nil {
		if err := outL.CopyFrom(inL); err != nil {
			return err
		}
	}
	if outR != nil && inR != nil {
		if err := outR.CopyFrom(inR); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the most recently completed capture (the slot NOT
// currently being written) and its generation number, for a control
// thread display to poll without contending with the renderer.
func (o *Oscilloscope) Snapshot() ([][2]float32, uint64) {
	return o.bufs[1-o.writeSlot], o.generation
}

func (o *Oscilloscope) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (o *Oscilloscope) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (o *Oscilloscope) CleanupInternal(p *processor.Processor) {}
