package gridcollect

import "github.com/thuthu-c/urnai-tools/envs"

// CollectReward pays the number of items collected during a step,
// computed from the shrinking remaining count in the observation rather
// than from the engine reward. It lets reward shaping be changed
// without touching the engine.
type CollectReward struct {
	items  int
	prev   int
	primed bool
}

// NewCollectReward returns a reward builder for episodes starting with
// items scattered items.
func NewCollectReward(items int) *CollectReward {
	return &CollectReward{items: items}
}

// Reward returns how many items this step collected.
func (c *CollectReward) Reward(obs envs.Observation, _ float64, _ bool) float64 {
	o := obs.(*Observation)

	prev := c.prev
	if !c.primed {
		prev = c.items
		c.primed = true
	}
	c.prev = o.Remaining
	return float64(prev - o.Remaining)
}

// Reset starts a fresh episode count.
func (c *CollectReward) Reset() {
	c.primed = false
}
