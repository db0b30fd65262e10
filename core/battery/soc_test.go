package battery

import (
	"math"
	"testing"
)

func TestCharge_Saturates(t *testing.T) {
	s := NewState(50, 40)
	applied := s.Charge(25)
	if applied != 10 {
		t.Fatalf("expected 10 kWh applied, got %v", applied)
	}
	if s.SoC() != 50 {
		t.Fatalf("expected full battery, got %v", s.SoC())
	}
	if s.Charge(1) != 0 {
		t.Errorf("charge on a full battery must saturate to 0")
	}
}

func TestDischarge_Saturates(t *testing.T) {
	s := NewState(50, 5)
	applied := s.Discharge(25)
	if applied != 5 {
		t.Fatalf("expected 5 kWh applied, got %v", applied)
	}
	if s.SoC() != 0 {
		t.Fatalf("expected empty battery, got %v", s.SoC())
	}
	if s.Discharge(1) != 0 {
		t.Errorf("discharge on an empty battery must saturate to 0")
	}
}

func TestNegativeRequestsAreIgnored(t *testing.T) {
	s := NewState(50, 25)
	if got := s.Charge(-3); got != 0 {
		t.Errorf("negative charge applied %v", got)
	}
	if got := s.Discharge(-3); got != 0 {
		t.Errorf("negative discharge applied %v", got)
	}
	if s.SoC() != 25 {
		t.Errorf("soc changed by negative request: %v", s.SoC())
	}
}

func TestZeroCapacity(t *testing.T) {
	s := NewState(0, 10)
	if s.SoC() != 0 {
		t.Fatalf("initial soc must clamp to capacity, got %v", s.SoC())
	}
	if s.Charge(5) != 0 || s.Discharge(5) != 0 {
		t.Errorf("zero-capacity battery must saturate all requests")
	}
}

func TestInitialStateClamped(t *testing.T) {
	if s := NewState(50, 80); s.SoC() != 50 {
		t.Errorf("initial soc above capacity not clamped: %v", s.SoC())
	}
	if s := NewState(50, -3); s.SoC() != 0 {
		t.Errorf("negative initial soc not clamped: %v", s.SoC())
	}
	if s := NewState(-10, 5); s.Capacity() != 0 {
		t.Errorf("negative capacity not clamped")
	}
}

func TestBoundsHoldUnderRandomWalk(t *testing.T) {
	s := NewState(13.7, 13.7)
	amount := 0.31
	for i := 0; i < 10000; i++ {
		if i%3 == 0 {
			s.Charge(amount * float64(i%7))
		} else {
			s.Discharge(amount * float64(i%5))
		}
		if s.SoC() < 0 || s.SoC() > s.Capacity() {
			t.Fatalf("soc %v escaped [0, %v] at step %d", s.SoC(), s.Capacity(), i)
		}
	}
	if math.IsNaN(s.SoC()) {
		t.Fatal("soc is NaN")
	}
}
