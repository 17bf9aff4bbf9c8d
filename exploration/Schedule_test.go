package exploration

import (
	"math"
	"testing"
)

// TestExponentialDecayReachesFloor checks that repeated decays are
// non-increasing and settle exactly on the floor once the raw recurrence
// would fall below it.
func TestExponentialDecayReachesFloor(t *testing.T) {
	s, err := NewExponential(1.0, 0.1, 0.9)
	if err != nil {
		t.Fatal(err)
	}

	prev := s.Value()
	for i := 0; i < 50; i++ {
		s.Decay()
		if s.Value() > prev {
			t.Fatalf("epsilon increased from %v to %v on decay %d", prev,
				s.Value(), i)
		}
		if s.Value() < 0.1 {
			t.Fatalf("epsilon %v fell below floor on decay %d", s.Value(), i)
		}
		prev = s.Value()
	}

	// 0.9^50 ≈ 0.00515 < 0.1, so the floor must have been reached
	if s.Value() != 0.1 {
		t.Errorf("after 50 decays expected epsilon == 0.1, got %v", s.Value())
	}
}

func TestExponentialDecayValue(t *testing.T) {
	s, err := NewExponential(1.0, 0.005, 0.99)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		s.Decay()
	}

	want := math.Pow(0.99, 10)
	if math.Abs(s.Value()-want) > 1e-12 {
		t.Errorf("expected epsilon %v, got %v", want, s.Value())
	}
}

// TestLinearDecayClampsAtFloor checks that the linear mode cannot
// overshoot past the floor.
func TestLinearDecayClampsAtFloor(t *testing.T) {
	s, err := NewLinear(1.0, 0.25, 0.3)
	if err != nil {
		t.Fatal(err)
	}

	expected := []float64{0.7, 0.4, 0.25, 0.25}
	for i, want := range expected {
		s.Decay()
		if math.Abs(s.Value()-want) > 1e-12 {
			t.Errorf("decay %d: expected %v, got %v", i+1, want, s.Value())
		}
	}
}

func TestScheduleConstructorValidation(t *testing.T) {
	if _, err := NewExponential(0.5, 0.9, 0.99); err == nil {
		t.Error("expected error when floor exceeds starting value")
	}
	if _, err := NewExponential(1.0, 0.1, 1.0); err == nil {
		t.Error("expected error for decay rate of 1")
	}
	if _, err := NewExponential(1.0, 0.1, 0.0); err == nil {
		t.Error("expected error for decay rate of 0")
	}
	if _, err := NewLinear(1.0, 0.1, -0.5); err == nil {
		t.Error("expected error for negative linear step")
	}
}
