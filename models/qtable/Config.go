package qtable

import "fmt"

// Config holds the hyperparameters of a tabular Q-learner.
type Config struct {
	// Gamma is the discount on future action values.
	Gamma float64

	// AlphaStart, AlphaMin and AlphaDecay parameterize the step size
	// schedule, decayed once per episode.
	AlphaStart float64
	AlphaMin   float64
	AlphaDecay float64

	// EpsilonStart, EpsilonMin and EpsilonDecay parameterize the
	// exploration schedule, decayed once per episode.
	EpsilonStart float64
	EpsilonMin   float64
	EpsilonDecay float64
}

// DefaultConfig returns the hyperparameters the algorithm shipped with.
func DefaultConfig() Config {
	return Config{
		Gamma:        0.95,
		AlphaStart:   0.1,
		AlphaMin:     0.01,
		AlphaDecay:   0.995,
		EpsilonStart: 1.0,
		EpsilonMin:   0.01,
		EpsilonDecay: 0.995,
	}
}

// Validate checks hyperparameter ranges.
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("config: discount must be in [0, 1], got %v", c.Gamma)
	}
	if c.AlphaStart <= 0 || c.AlphaStart > 1 {
		return fmt.Errorf("config: step size must be in (0, 1], got %v",
			c.AlphaStart)
	}
	if c.EpsilonStart < 0 || c.EpsilonStart > 1 {
		return fmt.Errorf("config: starting epsilon must be in [0, 1], got %v",
			c.EpsilonStart)
	}
	return nil
}
