package musictime

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawFraction(t *rapid.T, label string) (int64, int64) {
	n := rapid.Int64Range(-1_000_000, 1_000_000).Draw(t, label+".num")
	d := rapid.Int64Range(1, 10_000).Draw(t, label+".den")
	return n, d
}

// Round-trip law from spec §8: musical_to_sample_time(sample_to_musical_time(n))
// never overshoots n and lands less than one sample below it, for all n >= 0.
func TestProperty_SampleRoundTripBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sr := uint32(rapid.IntRange(1000, 192000).Draw(t, "sampleRate"))
		bpm := uint32(rapid.IntRange(1, 400).Draw(t, "bpm"))
		n := uint64(rapid.Uint32Range(0, 10_000_000).Draw(t, "sample"))

		m := NewTimeMapper(sr)
		m.SetBPM(bpm)

		musical := m.SampleToMusicalTime(n)
		back := m.MusicalToSampleTime(musical)

		require.LessOrEqualf(t, back, n, "round trip must not overshoot n=%d", n)
		require.Greaterf(t, back+1, n, "round trip must stay within one sample of n=%d", n)
	})
}

// Exact-arithmetic determinism: the same fraction built two different ways
// compares equal and commutes.
func TestProperty_AddCommutesAndReduces(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		an, ad := drawFraction(t, "a")
		bn, bd := drawFraction(t, "b")

		a := NewDuration(an, ad)
		b := NewDuration(bn, bd)

		require.Equal(t, 0, a.Add(b).Cmp(b.Add(a)), "addition must commute")

		// gcd(num, den) must always be 1 for a normalized fraction.
		sum := a.Add(b)
		require.Equal(t, int64(1), gcd(sum.Numerator(), sum.Denominator()))
	})
}

// Comparison is a total order consistent with subtraction's sign.
func TestProperty_CmpMatchesSubtractionSign(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		an, ad := drawFraction(t, "a")
		bn, bd := drawFraction(t, "b")

		a := NewTime(an, ad)
		b := NewTime(bn, bd)

		diff := a.Diff(b)
		switch {
		case diff.Numerator() > 0:
			require.Positive(t, a.Cmp(b))
		case diff.Numerator() < 0:
			require.Negative(t, a.Cmp(b))
		default:
			require.Zero(t, a.Cmp(b))
		}
	})
}

// Modulo of a time by a positive duration always returns a non-negative
// remainder strictly less than the modulus (spec §4.1).
func TestProperty_ModAlwaysNonNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tn, td := drawFraction(t, "t")
		dn := rapid.Int64Range(1, 1_000_000).Draw(t, "d.num")
		dd := rapid.Int64Range(1, 10_000).Draw(t, "d.den")

		tm := NewTime(tn, td)
		d := NewDuration(dn, dd)

		r := tm.Mod(d)
		require.GreaterOrEqual(t, r.Numerator(), int64(0))
		require.True(t, r.Less(Time{d.f}))
	})
}
