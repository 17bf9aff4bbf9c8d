// Package actions defines action-space wrappers, which map the
// abstract discrete actions a learning model chooses between onto the
// commands of a concrete environment.
package actions

import "github.com/thuthu-c/urnai-tools/envs"

// Wrapper describes a fixed, ordered set of abstract actions and knows
// how to realize each one in its environment.
//
// The action set is established at construction and immutable
// thereafter. Exclusion sets returned by Excluded are transient
// per-step values; they never change the action set itself.
type Wrapper interface {
	// Actions returns the ordered action identifiers the model chooses
	// between. The returned slice must not be mutated.
	Actions() []int

	// Size returns len(Actions()).
	Size() int

	// Excluded returns the actions that must not be chosen given the
	// current observation, or nil if all are available.
	Excluded(obs envs.Observation) []int

	// Apply translates a chosen abstract action into the concrete
	// environment action to submit to Environment.Step.
	Apply(action int, obs envs.Observation) int
}

// Contains reports whether action is in the exclusion set. Exclusion
// sets are small, so a linear scan beats building a map per step.
func Contains(excluded []int, action int) bool {
	for _, e := range excluded {
		if e == action {
			return true
		}
	}
	return false
}
