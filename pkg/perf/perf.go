// Package perf implements the nested span timer collected during block
// render and serialized out-of-band to the pump thread (spec §3 "PerfStats",
// §4.3 MessageQueue's PerfStats payload).
//
// Grounded on pkg/framework/debug/profiler.go (named,
// start/stop timed sections with min/max/avg bookkeeping), generalized from
// a flat named-section map to a nested parent/child span tree and rebuilt
// without the profiler's mutex and map: BlockContext's PerfStats is
// mutated only on the RT thread once per block (spec §3 BlockContext
// lifecycle), so it must not allocate or lock on the hot path.
package perf

import "time"

// maxSpans bounds a single block's span tree. Exceeding it drops the span
// rather than growing the backing array, consistent with the RT thread
// never allocating (spec §5).
const maxSpans = 256

// Span is one named interval, optionally nested under a parent span.
// ParentID is -1 for a root span.
type Span struct {
	Name      string
	ParentID  int32
	StartNS   int64
	DurationNS int64
}

// Stats accumulates a block's span tree. Zero value is ready to use.
type Stats struct {
	spans   [maxSpans]Span
	count   int32
	stack   [maxSpans]int32
	stackTop int32
	dropped int32
}

// Reset clears all recorded spans, readying Stats for the next block (spec
// §4.9 engine loop step 4: "Reset perf stats").
func (s *Stats) Reset() {
	s.count = 0
	s.stackTop = 0
	s.dropped = 0
}

// IsEmpty reports whether any spans were recorded (spec §4.9 step 3: "If
// perf stats accumulated during the last block are non-empty").
func (s *Stats) IsEmpty() bool { return s.count == 0 }

// Begin opens a new span nested under whatever span is currently open (or
// a root span if none is), returning an id to pass to End. Returns -1 if
// the span budget is exhausted; End silently ignores a -1 id.
func (s *Stats) Begin(name string, now time.Time) int32 {
	if s.count >= maxSpans {
		s.dropped++
		return -1
	}
	parent := int32(-1)
	if s.stackTop > 0 {
		parent = s.stack[s.stackTop-1]
	}
	id := s.count
	s.spans[id] = Span{Name: name, ParentID: parent, StartNS: now.UnixNano()}
	s.count++
	if s.stackTop < maxSpans {
		s.stack[s.stackTop] = id
		s.stackTop++
	}
	return id
}

// End closes the span opened by Begin.
func (s *Stats) End(id int32, now time.Time) {
	if id < 0 || id >= s.count {
		return
	}
	s.spans[id].DurationNS = now.UnixNano() - s.spans[id].StartNS
	if s.stackTop > 0 {
		s.stackTop--
	}
}

// Track times fn as a named span, handling Begin/End around the call.
func (s *Stats) Track(name string, fn func()) {
	id := s.Begin(name, time.Now())
	fn()
	s.End(id, time.Now())
}

// Spans returns the recorded spans for this block. The returned slice
// aliases Stats' internal array and is only valid until the next Reset.
func (s *Stats) Spans() []Span { return s.spans[:s.count] }

// Dropped reports how many spans were discarded this block because the
// budget was exhausted.
func (s *Stats) Dropped() int32 { return s.dropped }
