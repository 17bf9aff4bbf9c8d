package dql

import (
	"fmt"

	"github.com/thuthu-c/urnai-tools/backend"
)

// Config holds the hyperparameters of a DQL learner.
type Config struct {
	// Gamma is the discount on future action values.
	Gamma float64

	// EpsilonStart, EpsilonMin and EpsilonDecay parameterize the
	// exploration schedule: after each decay event epsilon becomes
	// max(EpsilonMin, epsilon * EpsilonDecay), or
	// max(EpsilonMin, epsilon - EpsilonDecay) with EpsilonLinearDecay.
	EpsilonStart float64
	EpsilonMin   float64
	EpsilonDecay float64

	// EpsilonLinearDecay switches the schedule from multiplicative to
	// subtractive decay, with EpsilonDecay as the step.
	EpsilonLinearDecay bool

	// DecayPerEpisode moves the epsilon decay event from every learn
	// call to every episode boundary.
	DecayPerEpisode bool

	// UseMemory enables experience replay. When false the learner
	// updates on each transition as it arrives and the replay fields
	// below are ignored.
	UseMemory bool

	// MemoryMaxLen bounds the replay buffer; the oldest transition is
	// evicted when a new one arrives at capacity.
	MemoryMaxLen int

	// BatchSize is the number of transitions sampled per update.
	BatchSize int

	// MinMemorySize gates learning until the buffer holds at least this
	// many transitions.
	MinMemorySize int

	// Backend is the registry tag of the value function to construct.
	// Ignored when ValueFunction is set.
	Backend string

	// LearningRate and HiddenSizes are forwarded to the backend
	// constructor.
	LearningRate float64
	HiddenSizes  []int

	// ValueFunction, when non-nil, is used directly instead of
	// constructing a backend from the Backend tag. It must agree with
	// the wrapper and builder sizes and with the effective batch size.
	ValueFunction backend.ValueFunction
}

// DefaultConfig returns the hyperparameters the algorithm shipped with.
func DefaultConfig() Config {
	return Config{
		Gamma:         0.99,
		EpsilonStart:  1.0,
		EpsilonMin:    0.005,
		EpsilonDecay:  0.99995,
		UseMemory:     true,
		MemoryMaxLen:  50000,
		BatchSize:     32,
		MinMemorySize: 2000,
		Backend:       "mlp",
		LearningRate:  0.001,
		HiddenSizes:   []int{50, 50},
	}
}

// batchSize returns the number of rows each backend update carries.
// Without replay every transition is learned on its own.
func (c Config) batchSize() int {
	if !c.UseMemory {
		return 1
	}
	return c.BatchSize
}

// Validate checks hyperparameter ranges and the relations between the
// replay sizes. BatchSize <= MinMemorySize ensures that once the memory
// gate opens, sampling can never fail.
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("config: discount must be in [0, 1], got %v", c.Gamma)
	}
	if c.EpsilonStart < 0 || c.EpsilonStart > 1 {
		return fmt.Errorf("config: starting epsilon must be in [0, 1], got %v",
			c.EpsilonStart)
	}
	if !c.UseMemory {
		return nil
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("config: batch size must be positive, got %v",
			c.BatchSize)
	}
	if c.BatchSize > c.MinMemorySize {
		return fmt.Errorf("config: batch size (%v) above minimum memory "+
			"size (%v)", c.BatchSize, c.MinMemorySize)
	}
	if c.MinMemorySize > c.MemoryMaxLen {
		return fmt.Errorf("config: minimum memory size (%v) above memory "+
			"capacity (%v)", c.MinMemorySize, c.MemoryMaxLen)
	}
	return nil
}
