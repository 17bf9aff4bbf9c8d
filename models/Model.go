// Package models defines the interface learning algorithms implement
// to be driven by an agent and trainer.
package models

// Learner is a reinforcement learning algorithm. Implementations own
// their exploration schedules and any function approximator or table
// behind their value estimates.
type Learner interface {
	// ChooseAction selects an action for the state. Actions in excluded
	// are never returned. When testing is true the choice is greedy and
	// no exploration state changes.
	ChooseAction(state []float64, excluded []int, testing bool) (int, error)

	// Predict returns the greedy action for the state without touching
	// exploration state.
	Predict(state []float64, excluded []int) (int, error)

	// Learn records a transition and performs whatever update the
	// algorithm schedules for it.
	Learn(state []float64, action int, reward float64, nextState []float64,
		done bool) error

	// EndEpisode signals an episode boundary so per-episode schedules
	// can advance.
	EndEpisode()

	// Save persists the learner's parameters to path.
	Save(path string) error

	// Load restores parameters written by Save.
	Load(path string) error
}
