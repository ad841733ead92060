package buffer

import "testing"

func TestArenaAllocIsDisjoint(t *testing.T) {
	a := NewArena(32)
	r1 := a.Alloc(12)
	r2 := a.Alloc(20)
	if len(r1) != 12 || len(r2) != 20 {
		t.Fatalf("unexpected region sizes: %d, %d", len(r1), len(r2))
	}
	r1[0] = 0xAA
	if r2[0] == 0xAA {
		t.Error("expected regions not to alias")
	}
	if a.Used() != 32 || a.Remaining() != 0 {
		t.Errorf("expected arena fully used, used=%d remaining=%d", a.Used(), a.Remaining())
	}
}

func TestArenaOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on arena overflow")
		}
	}()
	a := NewArena(8)
	_ = a.Alloc(9)
}

func TestArenaResetAllowsReuse(t *testing.T) {
	a := NewArena(16)
	_ = a.Alloc(16)
	if a.Remaining() != 0 {
		t.Fatal("expected arena exhausted")
	}
	a.Reset()
	if a.Remaining() != 16 {
		t.Errorf("expected full capacity after reset, got %d", a.Remaining())
	}
}

func TestArenaFitsSize(t *testing.T) {
	a := NewArena(64)
	if !a.FitsSize(64) || !a.FitsSize(10) {
		t.Error("expected arena to fit sizes <= its cap")
	}
	if a.FitsSize(65) {
		t.Error("expected arena not to fit a size larger than its cap")
	}
}
