package testing

import (
	"testing"
	"time"
)

func TestFakeClock_Advance(t *testing.T) {
	clk := NewFakeClock()
	if clk.Now() != 0 {
		t.Fatalf("expected clock to start at 0, got %v", clk.Now())
	}

	if got := clk.Advance(100 * time.Millisecond); got != 0.1 {
		t.Errorf("expected 0.1s after Advance, got %v", got)
	}
	if got := clk.AdvanceSeconds(0.4); got != 0.5 {
		t.Errorf("expected 0.5s after AdvanceSeconds, got %v", got)
	}
	if clk.Now() != 0.5 {
		t.Errorf("Now disagrees with Advance: %v", clk.Now())
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock()
	clk.AdvanceSeconds(3)
	clk.Set(1.25)
	if clk.Now() != 1.25 {
		t.Errorf("expected 1.25, got %v", clk.Now())
	}
}
