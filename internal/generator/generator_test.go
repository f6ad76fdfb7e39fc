package generator

import "testing"

func TestTargetWithinRangeAndStep(t *testing.T) {
	g := NewSeeded(42)
	for i := 0; i < 500; i++ {
		v := g.Target(1250, 9000)
		if v < 1250 || v > 9000 {
			t.Fatalf("target %d out of range", v)
		}
		if v%Step != 0 {
			t.Fatalf("target %d not a multiple of %d", v, Step)
		}
	}
}

func TestTargetSwappedAndNarrowRange(t *testing.T) {
	g := NewSeeded(1)
	if v := g.Target(3000, 1000); v < 1000 || v > 3000 {
		t.Fatalf("swapped bounds produced %d", v)
	}
	if v := g.Target(1010, 1050); v != 1010 {
		t.Fatalf("expected min for narrow range, got %d", v)
	}
}

func TestNextAvoidsRepeat(t *testing.T) {
	g := NewSeeded(7)
	prev := int64(1000)
	for i := 0; i < 50; i++ {
		next := g.Next(prev, 1000, 1100)
		if next == prev {
			t.Fatalf("expected a different target than %d", prev)
		}
		prev = next
	}
}
