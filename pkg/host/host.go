// Package host implements HostSystem: the process-wide, immutable-after-
// setup carrier of sample_rate, block_size, and capability providers every
// other package consults (spec §5 "Shared resources": "HostSystem is
// process-wide, immutable after setup ... and consulted from all
// threads").
//
// Grounded on pkg/framework/plugin/base.go (a small
// explicit config struct, Info, passed into every plugin rather than read
// off a package-level global), generalized from one plugin's metadata to
// the engine-wide sample_rate/block_size pair plus the AudioFileSubSystem
// capability provider spec §5 names. Spec §9's "Global state" note is
// honored literally: System is constructed once and threaded explicitly
// through Realm/Engine/Backend construction, never stored in a package
// variable.
package host

// System is the engine's process-wide HostSystem. It satisfies
// pkg/buffer.HostSystem structurally.
type System struct {
	sampleRate float64
	blockSize  int
	audioFiles *AudioFileSubSystem
}

// New builds a System for a fixed sample rate and block size, wiring a
// fresh AudioFileSubSystem using loader to fetch files not already cached.
func New(sampleRate float64, blockSize int, loader AudioFileLoader) *System {
	return &System{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		audioFiles: NewAudioFileSubSystem(loader),
	}
}

// SampleRate returns the process-wide sample rate in Hz.
func (s *System) SampleRate() float64 { return s.sampleRate }

// BlockSize returns the process-wide block size in samples.
func (s *System) BlockSize() int { return s.blockSize }

// AudioFiles returns the refcounted audio-file cache (spec §5
// "AudioFileSubSystem is a refcounted cache").
func (s *System) AudioFiles() *AudioFileSubSystem { return s.audioFiles }
