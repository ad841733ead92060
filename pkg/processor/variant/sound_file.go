package variant

import (
	"github.com/rimewave/audioproc/pkg/host"
	"github.com/rimewave/audioproc/pkg/processor"
)

// NewSoundFileDescription describes the "sound-file" variant: a single
// audio output streaming from a cached file.
func NewSoundFileDescription() processor.NodeDescription {
	return desc("sound-file", audioPort("out", processor.DirectionOut))
}

// SoundFile is the "sound-file" processor variant: streaming playback
// from pkg/host.AudioFileSubSystem's refcounted cache (spec §5
// "AudioFileSubSystem ... acquire/release pair up with each load"). The
// file is fetched once in SetupInternal (control thread) per spec §5's
// ownership rule ("the RT thread may hold file pointers fetched at setup
// time but must not call load_audio_file itself"); ProcessBlockInternal
// only ever indexes into the already-resolved *host.AudioFile's sample
// slice, never touching the cache again. Grounded on
// pkg/framework/voice/allocator.go's per-voice playhead-advance pattern
// (a cursor into a fixed sample source, looping or silencing at the end),
// generalized from a synthesized voice to a file-backed one.
type SoundFile struct {
	files *host.AudioFileSubSystem
	path  string
	loop  bool

	file   *host.AudioFile
	cursor int
}

// NewSoundFile builds a sound-file processor that streams path out of
// files. loop controls whether playback wraps back to sample 0 at the end
// of the file or silences thereafter.
func NewSoundFile(files *host.AudioFileSubSystem, path string, loop bool) processor.Behavior {
	return &SoundFile{files: files, path: path, loop: loop}
}

func (s *SoundFile) SetupInternal(p *processor.Processor) error {
	f, err := s.files.Acquire(s.path)
	if err != nil {
		return err
	}
	s.file = f
	return nil
}

func (s *SoundFile) ProcessBlockInternal(p *processor.Processor) error {
	out := p.PortByName("out")
	if out == nil {
		return nil
	}
	view := out.Float32()
	if s.file == nil || len(s.file.Samples) == 0 {
		for i := range view {
			view[i] = 0
		}
		return nil
	}
	src := s.file.Samples
	for i := range view {
		if s.cursor >= len(src) {
			if !s.loop {
				view[i] = 0
				continue
			}
			s.cursor = 0
		}
		view[i] = src[s.cursor]
		s.cursor++
	}
	return nil
}

func (s *SoundFile) HandleMessageInternal(p *processor.Processor, msg []byte) error { return nil }

func (s *SoundFile) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

// CleanupInternal releases the file back to the cache (spec §5
// "acquire/release pair up with each load").
func (s *SoundFile) CleanupInternal(p *processor.Processor) {
	if s.file != nil {
		s.files.Release(s.path)
		s.file = nil
	}
}
