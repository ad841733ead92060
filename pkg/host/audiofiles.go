package host

import (
	"fmt"
	"sync"
)

// AudioFile is one decoded, read-only audio asset (spec §6 "Persisted
// state layout: ... Audio files ... referenced by processors are
// read-only inputs fetched by their path/URI through the HostSystem
// capability providers").
type AudioFile struct {
	Path       string
	Samples    []float32 // interleaved
	Channels   int
	SampleRate float64
}

// AudioFileLoader decodes the file at path. Supplied by the embedder
// (cmd/ wiring), since this package has no opinion on file formats.
type AudioFileLoader func(path string) (*AudioFile, error)

type audioFileEntry struct {
	file     *AudioFile
	refCount int
}

// AudioFileSubSystem is a refcounted cache of decoded audio files, keyed
// by path (spec §5 "AudioFileSubSystem is a refcounted cache; acquire/
// release pair up with each load"). Acquire/Release are control-thread-
// only operations (spec §5: "the RT thread may hold file pointers fetched
// at setup time but must not call load_audio_file itself") — this package
// does not enforce that at runtime, matching the spec's own framing of it
// as a calling-convention rule rather than a mechanism.
type AudioFileSubSystem struct {
	mu      sync.Mutex
	entries map[string]*audioFileEntry
	loader  AudioFileLoader
}

// NewAudioFileSubSystem builds an empty cache using loader to decode files
// not already resident.
func NewAudioFileSubSystem(loader AudioFileLoader) *AudioFileSubSystem {
	return &AudioFileSubSystem{
		entries: make(map[string]*audioFileEntry),
		loader:  loader,
	}
}

// Acquire loads (or reuses) the file at path and increments its ref count.
// Control-thread only; called from a processor's SetupInternal.
func (a *AudioFileSubSystem) Acquire(path string) (*AudioFile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.entries[path]; ok {
		e.refCount++
		return e.file, nil
	}
	if a.loader == nil {
		return nil, fmt.Errorf("host: no audio file loader configured for %q", path)
	}
	f, err := a.loader(path)
	if err != nil {
		return nil, fmt.Errorf("host: load audio file %q: %w", path, err)
	}
	a.entries[path] = &audioFileEntry{file: f, refCount: 1}
	return f, nil
}

// Release drops one reference to the file at path, evicting it from the
// cache once the ref count reaches zero. Releasing a path never acquired
// is a no-op.
func (a *AudioFileSubSystem) Release(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[path]
	if !ok {
		return
	}
	e.refCount--
	if e.refCount <= 0 {
		delete(a.entries, path)
	}
}

// RefCount reports the current reference count for path, for tests and
// diagnostics. Returns 0 if path is not cached.
func (a *AudioFileSubSystem) RefCount(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.entries[path]; ok {
		return e.refCount
	}
	return 0
}
