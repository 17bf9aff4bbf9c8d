// Package envs outlines the interface game environments must satisfy
// to be driven by the trainer. Concrete engines (grid worlds, RTS
// adapters) normalize their own step/reset semantics to this contract.
package envs

// Observation is the opaque per-step output of an environment. State
// builders, reward builders, and action wrappers know how to interpret
// the observations of the environment they were written for; the
// learning core never looks inside one.
type Observation interface{}

// Environment is a simulated world that an agent acts in.
type Environment interface {
	// Start initializes the environment and returns the first
	// observation of the first episode.
	Start() (Observation, error)

	// Step applies an environment action and returns the next
	// observation, the raw engine reward, and whether the episode
	// ended.
	Step(action int) (Observation, float64, bool, error)

	// Reset starts a new episode and returns its first observation.
	Reset() (Observation, error)

	// Close releases any resources held by the engine.
	Close() error
}
