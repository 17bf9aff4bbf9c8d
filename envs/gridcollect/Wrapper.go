package gridcollect

import "github.com/thuthu-c/urnai-tools/envs"

// Wrapper exposes the four movement actions, excluding any that would
// walk the agent off the grid.
type Wrapper struct {
	ids []int
}

// NewWrapper returns the action wrapper for grid environments.
func NewWrapper() *Wrapper {
	return &Wrapper{ids: []int{MoveUp, MoveDown, MoveLeft, MoveRight}}
}

// Actions returns the movement action identifiers.
func (w *Wrapper) Actions() []int {
	return w.ids
}

// Size returns the number of movement actions.
func (w *Wrapper) Size() int {
	return len(w.ids)
}

// Excluded returns the moves that would leave the grid from the agent's
// current cell.
func (w *Wrapper) Excluded(obs envs.Observation) []int {
	o := obs.(*Observation)

	var excluded []int
	if o.AgentY == 0 {
		excluded = append(excluded, MoveUp)
	}
	if o.AgentY == o.Height-1 {
		excluded = append(excluded, MoveDown)
	}
	if o.AgentX == 0 {
		excluded = append(excluded, MoveLeft)
	}
	if o.AgentX == o.Width-1 {
		excluded = append(excluded, MoveRight)
	}
	return excluded
}

// Apply passes movement actions through unchanged; the engine speaks
// the same action vocabulary.
func (w *Wrapper) Apply(action int, _ envs.Observation) int {
	return action
}
