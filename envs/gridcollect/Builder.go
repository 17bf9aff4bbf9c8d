package gridcollect

import "github.com/thuthu-c/urnai-tools/envs"

// Builder flattens grid observations into state vectors: the agent
// coordinates normalized to [0, 1] followed by the item bitmap.
type Builder struct {
	width  int
	height int
}

// NewBuilder returns a state builder for a width x height grid.
func NewBuilder(width, height int) *Builder {
	return &Builder{width: width, height: height}
}

// Build returns the state vector for an observation.
func (b *Builder) Build(obs envs.Observation) []float64 {
	o := obs.(*Observation)

	state := make([]float64, b.Size())
	state[0] = float64(o.AgentX) / float64(b.width-1)
	state[1] = float64(o.AgentY) / float64(b.height-1)
	for i, item := range o.Items {
		if item {
			state[2+i] = 1.0
		}
	}
	return state
}

// Size returns 2 + width*height.
func (b *Builder) Size() int {
	return 2 + b.width*b.height
}
