// Package exploration implements decaying scalar schedules, used for
// the epsilon of epsilon-greedy policies and for decaying step sizes.
package exploration

import (
	"fmt"
	"math"
)

// decayMode determines how a Schedule moves toward its floor
type decayMode int

const (
	exponential decayMode = iota
	linear
)

// Schedule holds a scalar that decays toward a floor each time Decay()
// is called. The Schedule itself is frequency-agnostic: callers decide
// whether Decay() runs once per step or once per episode.
type Schedule struct {
	value float64
	min   float64
	rate  float64 // multiplicative factor, exponential mode
	step  float64 // subtractive step, linear mode
	mode  decayMode
}

// NewExponential returns a Schedule that decays multiplicatively:
// value <- max(min, value * rate).
func NewExponential(start, min, rate float64) (*Schedule, error) {
	if min > start {
		return nil, fmt.Errorf("exploration: floor (%v) above starting "+
			"value (%v)", min, start)
	}
	if rate <= 0.0 || rate >= 1.0 {
		return nil, fmt.Errorf("exploration: decay rate must be in (0, 1), "+
			"got %v", rate)
	}
	return &Schedule{value: start, min: min, rate: rate, mode: exponential}, nil
}

// NewLinear returns a Schedule that decays subtractively:
// value <- max(min, value - step).
func NewLinear(start, min, step float64) (*Schedule, error) {
	if min > start {
		return nil, fmt.Errorf("exploration: floor (%v) above starting "+
			"value (%v)", min, start)
	}
	if step <= 0.0 {
		return nil, fmt.Errorf("exploration: linear step must be positive, "+
			"got %v", step)
	}
	return &Schedule{value: start, min: min, step: step, mode: linear}, nil
}

// Value returns the current scheduled value.
func (s *Schedule) Value() float64 {
	return s.value
}

// Min returns the floor of the Schedule.
func (s *Schedule) Min() float64 {
	return s.min
}

// Set overwrites the current value, clamping at the floor. Used when
// restoring a schedule from a checkpoint.
func (s *Schedule) Set(value float64) {
	s.value = math.Max(s.min, value)
}

// Decay advances the Schedule by one decay event. The value is clamped
// at the floor in both modes; the linear mode would otherwise overshoot
// below it.
func (s *Schedule) Decay() {
	switch s.mode {
	case exponential:
		s.value = math.Max(s.min, s.value*s.rate)
	case linear:
		s.value = math.Max(s.min, s.value-s.step)
	}
}
