package variant

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/processor"
)

// AutomationPoint is one keyframe of a control-track: value holds from
// SampleOffset until the next point.
type AutomationPoint struct {
	SampleOffset int64
	Value        float32
}

// NewControlTrackDescription describes the "control-track" variant: a
// FloatControlValue-shaped output, no audio ports.
func NewControlTrackDescription() processor.NodeDescription {
	return desc("control-track", audioPort("cv_out", processor.DirectionOut))
}

// ControlTrack is the "control-track" processor variant: plays back a
// fixed automation curve (step-held between keyframes) against an
// internal sample cursor advanced by blockSize every render, publishing
// the current value through the generation-guarded control-value wire
// format (spec §4.7).
type ControlTrack struct {
	points     []AutomationPoint
	blockSize  int64
	cursor     int64
	pointIdx   int
	generation uint64
	lastValue  float32
}

func NewControlTrack(points []AutomationPoint, blockSize int) processor.Behavior {
	return &ControlTrack{points: points, blockSize: int64(blockSize)}
}

func (c *ControlTrack) SetupInternal(p *processor.Processor) error { return nil }

func (c *ControlTrack) ProcessBlockInternal(p *processor.Processor) error {
	out := p.PortByName("cv_out")
	if out == nil {
		return nil
	}
	for c.pointIdx < len(c.points) && c.points[c.pointIdx].SampleOffset <= c.cursor {
		c.lastValue = c.points[c.pointIdx].Value
		c.generation++
		c.pointIdx++
	}
	c.cursor += c.blockSize
	buffer.WriteValueGeneration(out.Region(), c.lastValue, c.generation)
	return nil
}

func (c *ControlTrack) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (c *ControlTrack) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (c *ControlTrack) CleanupInternal(p *processor.Processor) {}
