// Package rewards defines reward builders, which shape the raw reward
// reported by an environment into the training signal a model learns
// from.
package rewards

import "github.com/thuthu-c/urnai-tools/envs"

// Builder turns environment observations and raw rewards into shaped
// training rewards. Builders may carry per-episode state; Reset is
// called at every episode boundary.
type Builder interface {
	// Reward returns the shaped reward for a step.
	Reward(obs envs.Observation, raw float64, done bool) float64

	// Reset clears any per-episode state.
	Reset()
}

// Pure passes the engine reward through unchanged.
type Pure struct{}

func (Pure) Reward(_ envs.Observation, raw float64, _ bool) float64 { return raw }

func (Pure) Reset() {}

// Sparse pays a fixed amount on episode end and nothing before.
type Sparse struct {
	// Amount is paid on the terminal step.
	Amount float64
}

func (s Sparse) Reward(_ envs.Observation, _ float64, done bool) float64 {
	if done {
		return s.Amount
	}
	return 0
}

func (Sparse) Reset() {}
