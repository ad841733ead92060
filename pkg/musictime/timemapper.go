package musictime

// TimeMapper is a pure function of (bpm, sample_rate, duration): it maps a
// sample index to a musical time and back by the identity
// musical = bpm * sample / (4 * 60 * sample_rate), per spec §3.
type TimeMapper struct {
	bpm        uint32
	sampleRate uint32
	duration   Duration
}

// NewTimeMapper builds a mapper for a fixed sample rate. bpm defaults to
// 120 and duration to 4 bars, matching the original engine's defaults
// (original_source/.../time_mapper.h).
func NewTimeMapper(sampleRate uint32) *TimeMapper {
	return &TimeMapper{
		bpm:        120,
		sampleRate: sampleRate,
		duration:   DurationFromInt(4),
	}
}

func (m *TimeMapper) SetBPM(bpm uint32)         { m.bpm = bpm }
func (m *TimeMapper) BPM() uint32               { return m.bpm }
func (m *TimeMapper) SetDuration(d Duration)    { m.duration = d }
func (m *TimeMapper) Duration() Duration        { return m.duration }
func (m *TimeMapper) SampleRate() uint32        { return m.sampleRate }

// EndTime is the musical time at the end of the mapper's configured duration.
func (m *TimeMapper) EndTime() Time { return ZeroTime.Add(m.duration) }

// NumSamples is the sample-time equivalent of EndTime.
func (m *TimeMapper) NumSamples() uint64 { return m.MusicalToSampleTime(m.EndTime()) }

// SampleToMusicalTime converts a sample index to musical time at the
// mapper's current bpm/sample rate. Exact: musical = bpm*sample / (4*60*sr).
func (m *TimeMapper) SampleToMusicalTime(sample uint64) Time {
	return NewTime(int64(m.bpm)*int64(sample), 4*60*int64(m.sampleRate))
}

// MusicalToSampleTime converts a musical time to the nearest (truncated)
// sample index at the mapper's current bpm/sample rate.
//
// Round-tripping sample -> musical -> sample is lossy but monotonic;
// musical -> sample -> musical is not guaranteed exact (spec §4.1).
func (m *TimeMapper) MusicalToSampleTime(t Time) uint64 {
	num := 4 * 60 * int64(m.sampleRate) * t.Numerator()
	den := int64(m.bpm) * t.Denominator()
	if den == 0 {
		panic("musictime: musical_to_sample_time with zero bpm")
	}
	v := num / den
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// Iterator walks successive musical-time boundaries, one per sample,
// starting at the given sample index.
type Iterator struct {
	mapper *TimeMapper
	sample uint64
}

// Iterate returns a forward iterator starting at sample 0.
func (m *TimeMapper) Iterate() *Iterator { return &Iterator{mapper: m, sample: 0} }

// Find returns a forward iterator positioned so that the first Next() call
// returns the musical time one sample past t, not t itself.
//
// The original engine's player advances before it reads on every step
// (original_source/.../player.cpp: "++_tmap_it; _state.current_time =
// *_tmap_it"), including the very first step after a seek. Iterator.Next
// here is read-then-advance (needed so Iterate()'s sample-0 start still
// yields ZeroTime first), so Find compensates by landing one sample past t
// up front: the first Next() then reads that already-advanced position,
// reproducing the original's advance-then-read result without changing
// Next()'s contract for callers that start from Iterate() instead.
func (m *TimeMapper) Find(t Time) *Iterator {
	return &Iterator{mapper: m, sample: m.MusicalToSampleTime(t) + 1}
}

// Next returns the musical time at the iterator's current sample and then
// advances by one sample.
func (it *Iterator) Next() Time {
	t := it.mapper.SampleToMusicalTime(it.sample)
	it.sample++
	return t
}

// SamplePos reports the iterator's current (not-yet-consumed) sample index.
func (it *Iterator) SamplePos() uint64 { return it.sample }
