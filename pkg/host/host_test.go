package host

import "testing"

func TestSystemReportsSampleRateAndBlockSize(t *testing.T) {
	s := New(48000, 256, nil)
	if s.SampleRate() != 48000 {
		t.Errorf("expected sample rate 48000, got %v", s.SampleRate())
	}
	if s.BlockSize() != 256 {
		t.Errorf("expected block size 256, got %v", s.BlockSize())
	}
}

func TestAudioFileSubSystemAcquireCachesAndRefCounts(t *testing.T) {
	calls := 0
	loader := func(path string) (*AudioFile, error) {
		calls++
		return &AudioFile{Path: path, Samples: []float32{0.5, -0.5}, Channels: 1, SampleRate: 48000}, nil
	}
	sub := NewAudioFileSubSystem(loader)

	f1, err := sub.Acquire("kick.wav")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	f2, err := sub.Acquire("kick.wav")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if f1 != f2 {
		t.Error("expected the same cached *AudioFile on a second Acquire")
	}
	if calls != 1 {
		t.Errorf("expected the loader called once, got %d", calls)
	}
	if got := sub.RefCount("kick.wav"); got != 2 {
		t.Errorf("expected ref_count 2 after two Acquires, got %d", got)
	}

	sub.Release("kick.wav")
	if got := sub.RefCount("kick.wav"); got != 1 {
		t.Errorf("expected ref_count 1 after one Release, got %d", got)
	}
	sub.Release("kick.wav")
	if got := sub.RefCount("kick.wav"); got != 0 {
		t.Errorf("expected eviction once ref_count reaches zero, got %d", got)
	}
}

func TestAudioFileSubSystemAcquireWithoutLoaderFails(t *testing.T) {
	sub := NewAudioFileSubSystem(nil)
	if _, err := sub.Acquire("missing.wav"); err == nil {
		t.Error("expected an error acquiring with no loader configured")
	}
}
