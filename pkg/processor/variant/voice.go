package variant

import (
	"math"

	"github.com/rimewave/audioproc/pkg/dsp/envelope"
	"github.com/rimewave/audioproc/pkg/dsp/oscillator"
	"github.com/rimewave/audioproc/pkg/framework/voice"
)

// synthVoice is a single oscillator+ADSR voice satisfying
// pkg/framework/voice.Voice, grounded on the equivalent Voice
// contract (pkg/framework/voice/allocator.go) with the simplest possible
// concrete generator: note-on sets the oscillator frequency from MIDI
// note number and triggers the envelope; note-off releases it.
type synthVoice struct {
	osc      *oscillator.Oscillator
	env      *envelope.ADSR
	note     uint8
	velocity uint8
	age      int64
}

func newSynthVoice(sampleRate float64) *synthVoice {
	env := envelope.New(sampleRate)
	env.SetADSR(0.005, 0.05, 0.8, 0.2)
	return &synthVoice{osc: oscillator.New(sampleRate), env: env}
}

func noteToFrequency(note uint8) float64 {
	return 440.0 * math.Pow(2, (float64(note)-69)/12.0)
}

func (v *synthVoice) IsActive() bool        { return v.env.IsActive() }
func (v *synthVoice) GetNote() uint8        { return v.note }
func (v *synthVoice) GetVelocity() uint8    { return v.velocity }
func (v *synthVoice) GetAmplitude() float64 { return float64(v.velocity) / 127.0 }
func (v *synthVoice) GetAge() int64         { return v.age }

func (v *synthVoice) TriggerNote(note uint8, velocity uint8) {
	v.note = note
	v.velocity = velocity
	v.age = 0
	v.osc.SetFrequency(noteToFrequency(note))
	v.env.Trigger()
}

func (v *synthVoice) ReleaseNote() { v.env.Release() }

func (v *synthVoice) Stop() { v.env.Reset() }

func (v *synthVoice) Process(output []float32) {
	amp := float32(v.GetAmplitude())
	for i := range output {
		output[i] += v.osc.Sine() * v.env.Next() * amp
	}
	v.age += int64(len(output))
}

var _ voice.Voice = (*synthVoice)(nil)
