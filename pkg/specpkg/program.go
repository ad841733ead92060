package specpkg

import (
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/musictime"
)

// Program is a materialized Spec for a specific block size: Spec plus the
// vector of Buffers laid out in a chosen BufferArena plus a TimeMapper
// plus initialized/version bookkeeping (spec §3 "Program").
type Program struct {
	Spec        *Spec
	Buffers     []*buffer.Buffer
	Time        *musictime.TimeMapper
	Initialized bool
	Version     uint64
}

// NewProgram lays out every buffer type in spec against arena (in
// declaration order, so BufferIndex lookups address the same slice
// positions) and builds the Spec's TimeMapper against the host's sample
// rate. The returned Program always starts with Initialized = false, so
// the VM runs its init pass on first render (spec §4.4 "Two passes").
func NewProgram(spec *Spec, arena *buffer.Arena, host buffer.HostSystem, sampleRate uint32, version uint64) *Program {
	buffers := make([]*buffer.Buffer, len(spec.BufferTypes))
	for i, t := range spec.BufferTypes {
		region := arena.Alloc(t.Size(host))
		b := buffer.New(t, region)
		b.Clear()
		buffers[i] = b
	}

	tm := musictime.NewTimeMapper(sampleRate)
	tm.SetBPM(spec.BPM)
	tm.SetDuration(spec.Duration)

	return &Program{
		Spec:    spec,
		Buffers: buffers,
		Time:    tm,
		Version: version,
	}
}

// Buffer resolves a buffer by name through the Spec's name->index map
// (spec §4.7 "Buffer named access": "get_buffer(name) ... returns None if
// no current Program or the name is missing, never fails").
func (p *Program) Buffer(name string) (*buffer.Buffer, bool) {
	i, ok := p.Spec.BufferIndex(name)
	if !ok {
		return nil, false
	}
	return p.Buffers[i], true
}

// MarkInitialized flips the one-shot init-pass flag; called by the VM
// after running every opcode's init handler once.
func (p *Program) MarkInitialized() { p.Initialized = true }
