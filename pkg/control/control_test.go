package control

import "testing"

func TestFloatControlValueWriteGuardedByGeneration(t *testing.T) {
	cv := NewFloatControlValue("cutoff")
	if !cv.Write(440.0, 1) {
		t.Fatal("expected first write (gen 1 > 0) to apply")
	}
	if cv.Write(220.0, 1) {
		t.Error("expected write with generation <= current to be ignored")
	}
	v, g := cv.Load()
	if v != 440.0 || g != 1 {
		t.Errorf("expected value unchanged at (440, 1), got (%v, %d)", v, g)
	}
	if !cv.Write(880.0, 2) {
		t.Error("expected write with strictly greater generation to apply")
	}
	v, g = cv.Load()
	if v != 880.0 || g != 2 {
		t.Errorf("expected (880, 2), got (%v, %d)", v, g)
	}
}

func TestIntControlValueWriteGuardedByGeneration(t *testing.T) {
	cv := NewIntControlValue("program")
	cv.Write(3, 5)
	if cv.Write(7, 5) {
		t.Error("expected write with equal generation to be ignored")
	}
	v, g := cv.Load()
	if v != 3 || g != 5 {
		t.Errorf("expected (3, 5), got (%v, %d)", v, g)
	}
}

func TestControlValueImplementsValue(t *testing.T) {
	var _ Value = NewFloatControlValue("x")
	var _ Value = NewIntControlValue("y")
}
