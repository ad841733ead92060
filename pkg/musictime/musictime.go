// Package musictime implements the engine's exact rational time arithmetic:
// MusicalTime is a signed point in musical time, MusicalDuration a signed
// quantity, both held as reduced int64 numerator/denominator pairs so
// scheduling math never drifts the way floating point would.
package musictime

import "fmt"

// fraction is the shared reduced-rational representation for Time and
// Duration. The denominator is always positive and non-zero.
type fraction struct {
	num, den int64
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func newFraction(n, d int64) fraction {
	if d == 0 {
		panic("musictime: zero denominator")
	}
	if d < 0 {
		n, d = -n, -d
	}
	g := gcd(n, d)
	return fraction{num: n / g, den: d / g}
}

func (f fraction) add(o fraction) fraction {
	return newFraction(f.num*o.den+o.num*f.den, f.den*o.den)
}

func (f fraction) sub(o fraction) fraction {
	return newFraction(f.num*o.den-o.num*f.den, f.den*o.den)
}

func (f fraction) mul(o fraction) fraction {
	return newFraction(f.num*o.num, f.den*o.den)
}

func (f fraction) div(o fraction) fraction {
	if o.num == 0 {
		panic("musictime: division by zero")
	}
	return newFraction(f.num*o.den, f.den*o.num)
}

// mod returns the positive remainder of f modulo o, matching the original
// engine's Fraction::mod (spec §4.1 "Modulo ... returns the positive
// remainder").
func (f fraction) mod(o fraction) fraction {
	if o.num == 0 {
		panic("musictime: modulo by zero")
	}
	denom := f.den * o.den
	a := o.num * f.den
	r := ((f.num*o.den)%a + a) % a
	return newFraction(r, denom)
}

func (f fraction) cmp(o fraction) int {
	// f.den and o.den are both positive, so cross-multiplication preserves order.
	lhs := f.num * o.den
	rhs := o.num * f.den
	switch {
	case lhs > rhs:
		return 1
	case lhs < rhs:
		return -1
	default:
		return 0
	}
}

func (f fraction) toFloat64() float64 { return float64(f.num) / float64(f.den) }
func (f fraction) toFloat32() float32 { return float32(f.num) / float32(f.den) }

func (f fraction) String() string { return fmt.Sprintf("%d/%d", f.num, f.den) }

// Duration is a signed musical-time quantity.
type Duration struct{ f fraction }

// NewDuration builds a Duration from a numerator/denominator pair, reduced
// and normalized to a positive denominator.
func NewDuration(num, den int64) Duration { return Duration{newFraction(num, den)} }

// DurationFromInt builds a whole-bar duration (den = 1).
func DurationFromInt(n int64) Duration { return Duration{newFraction(n, 1)} }

// ZeroDuration is the additive identity.
var ZeroDuration = Duration{fraction{0, 1}}

func (d Duration) Numerator() int64   { return d.f.num }
func (d Duration) Denominator() int64 { return d.f.den }
func (d Duration) Float64() float64   { return d.f.toFloat64() }
func (d Duration) Float32() float32   { return d.f.toFloat32() }
func (d Duration) String() string     { return d.f.String() }

func (d Duration) Add(o Duration) Duration { return Duration{d.f.add(o.f)} }
func (d Duration) Sub(o Duration) Duration { return Duration{d.f.sub(o.f)} }
func (d Duration) Mul(n, den int64) Duration {
	return Duration{d.f.mul(newFraction(n, den))}
}
func (d Duration) Div(n, den int64) Duration {
	return Duration{d.f.div(newFraction(n, den))}
}
func (d Duration) Cmp(o Duration) int { return d.f.cmp(o.f) }
func (d Duration) Equal(o Duration) bool { return d.Cmp(o) == 0 }
func (d Duration) Less(o Duration) bool  { return d.Cmp(o) < 0 }
func (d Duration) IsZero() bool          { return d.f.num == 0 }

// Time is a signed point in musical time. A negative numerator is the
// sentinel for "not playing" (spec §3).
type Time struct{ f fraction }

// NewTime builds a Time from a numerator/denominator pair.
func NewTime(num, den int64) Time { return Time{newFraction(num, den)} }

// TimeFromInt builds a whole-bar time point.
func TimeFromInt(n int64) Time { return Time{newFraction(n, 1)} }

// ZeroTime is bar zero.
var ZeroTime = Time{fraction{0, 1}}

// StoppedTime is the canonical "transport stopped" sentinel: any Time with
// a negative numerator qualifies, but callers that need one to compare
// against use this value.
var StoppedTime = Time{fraction{-1, 1}}

func (t Time) Numerator() int64   { return t.f.num }
func (t Time) Denominator() int64 { return t.f.den }
func (t Time) Float64() float64   { return t.f.toFloat64() }
func (t Time) Float32() float32   { return t.f.toFloat32() }
func (t Time) String() string     { return t.f.String() }

// IsStopped reports the "not playing" sentinel: a negative numerator.
func (t Time) IsStopped() bool { return t.f.num < 0 }

func (t Time) Add(d Duration) Time { return Time{t.f.add(d.f)} }
func (t Time) Sub(d Duration) Time { return Time{t.f.sub(d.f)} }

// Diff returns the Duration between two Times (t - o).
func (t Time) Diff(o Time) Duration { return Duration{t.f.sub(o.f)} }

func (t Time) Mul(n, den int64) Time { return Time{t.f.mul(newFraction(n, den))} }
func (t Time) Div(n, den int64) Time { return Time{t.f.div(newFraction(n, den))} }

// Mod returns the positive remainder of t modulo d.
func (t Time) Mod(d Duration) Time { return Time{t.f.mod(d.f)} }

func (t Time) Cmp(o Time) int      { return t.f.cmp(o.f) }
func (t Time) Equal(o Time) bool   { return t.Cmp(o) == 0 }
func (t Time) Less(o Time) bool    { return t.Cmp(o) < 0 }
func (t Time) LessEqual(o Time) bool { return t.Cmp(o) <= 0 }
func (t Time) Greater(o Time) bool  { return t.Cmp(o) > 0 }
func (t Time) GreaterEqual(o Time) bool { return t.Cmp(o) >= 0 }

// SampleTime is one entry of a BlockContext's per-sample time map: the
// musical-time span {start, end} covering one audio sample (spec §3
// "SampleTime"). Start.IsStopped() is the "transport stopped at this
// sample" sentinel.
type SampleTime struct {
	Start Time
	End   Time
}

// StoppedSampleTime is the canonical stopped-transport entry Player fills
// every slot with when playback is not running.
var StoppedSampleTime = SampleTime{Start: StoppedTime, End: ZeroTime}

// IsStopped reports whether this sample's transport is stopped.
func (s SampleTime) IsStopped() bool { return s.Start.IsStopped() }
