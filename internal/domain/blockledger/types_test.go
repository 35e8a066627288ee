package blockledger

import "testing"

func TestEscalateBelowThresholdNeverBlocks(t *testing.T) {
	for c := 1; c <= 3; c++ {
		if _, blocks := Escalate(c); blocks {
			t.Fatalf("counter %d must not trigger a block", c)
		}
	}
}

func TestEscalateTableMonotonic(t *testing.T) {
	var prev int
	for k := 4; k <= 9; k++ {
		d, ok := Escalate(k)
		if !ok {
			t.Fatalf("counter %d should block", k)
		}
		if int(d.Minutes()) <= prev {
			t.Fatalf("duration for counter %d (%v) must exceed prior (%d min)", k, d, prev)
		}
		prev = int(d.Minutes())
	}
}

func TestEscalateExactlyTenIsThirtyDays(t *testing.T) {
	d, ok := Escalate(10)
	if !ok || d != ThirtyDayBlock {
		t.Fatalf("counter 10 must trigger the 30-day block, got %v ok=%v", d, ok)
	}
}

func TestEscalateAboveTenIsThirtyDays(t *testing.T) {
	d, ok := Escalate(25)
	if !ok || d != ThirtyDayBlock {
		t.Fatalf("counter > 10 must trigger the 30-day block, got %v ok=%v", d, ok)
	}
}
