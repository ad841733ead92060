package perf

import (
	"testing"
	"time"
)

func TestBeginEndNesting(t *testing.T) {
	var s Stats
	now := time.Now()
	outer := s.Begin("block", now)
	inner := s.Begin("opcode:gain", now.Add(time.Microsecond))
	s.End(inner, now.Add(2*time.Microsecond))
	s.End(outer, now.Add(3*time.Microsecond))

	spans := s.Spans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].ParentID != -1 {
		t.Errorf("expected root span, got parent %d", spans[0].ParentID)
	}
	if spans[1].ParentID != 0 {
		t.Errorf("expected nested span parent 0, got %d", spans[1].ParentID)
	}
	if spans[0].DurationNS <= 0 {
		t.Error("expected positive duration")
	}
}

func TestResetClearsSpans(t *testing.T) {
	var s Stats
	s.Begin("x", time.Now())
	if s.IsEmpty() {
		t.Fatal("expected non-empty before reset")
	}
	s.Reset()
	if !s.IsEmpty() {
		t.Error("expected empty after reset")
	}
}

func TestBudgetExhaustionDrops(t *testing.T) {
	var s Stats
	now := time.Now()
	for i := 0; i < maxSpans+5; i++ {
		s.Begin("span", now)
	}
	if s.Dropped() != 5 {
		t.Errorf("expected 5 dropped spans, got %d", s.Dropped())
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var s Stats
	now := time.Now()
	outer := s.Begin("block", now)
	s.End(outer, now.Add(time.Millisecond))

	region := make([]byte, s.EncodedSize())
	n := s.Encode(region)
	if n != len(region) {
		t.Fatalf("expected to write %d bytes, wrote %d", len(region), n)
	}

	decoded := Decode(region)
	if len(decoded) != 1 {
		t.Fatalf("expected 1 decoded span, got %d", len(decoded))
	}
	if decoded[0].Name != "block" || decoded[0].ParentID != -1 {
		t.Errorf("unexpected decoded span: %+v", decoded[0])
	}
}
