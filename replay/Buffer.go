// Package replay implements an experience replay buffer for
// reinforcement learning agents.
package replay

import (
	"fmt"
	"math/rand"
)

// Transition packages a single step of agent-environment interaction.
// A nil NextState marks a terminal transition: there is no continuation
// value beyond it. Transitions are never mutated once stored.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// Buffer is a bounded, insertion-ordered store of Transitions with
// first-in-first-out eviction. Once the buffer reaches capacity, each
// Store evicts the oldest entry.
type Buffer struct {
	data  []Transition
	start int // index of the oldest entry
	count int
	rng   *rand.Rand
}

// New returns an empty Buffer holding at most maxLen transitions.
func New(maxLen int, seed int64) (*Buffer, error) {
	if maxLen < 1 {
		return nil, fmt.Errorf("new: buffer capacity must be >= 1, got %v",
			maxLen)
	}

	source := rand.NewSource(seed)
	return &Buffer{
		data: make([]Transition, maxLen),
		rng:  rand.New(source),
	}, nil
}

// Store appends a transition, evicting the oldest entry if the buffer
// is at capacity. The state slices are copied so that later mutation by
// the caller cannot reach stored history.
func (b *Buffer) Store(t Transition) {
	stored := Transition{
		State:  append([]float64(nil), t.State...),
		Action: t.Action,
		Reward: t.Reward,
		Done:   t.Done,
	}
	if t.NextState != nil {
		stored.NextState = append([]float64(nil), t.NextState...)
	}

	if b.count < len(b.data) {
		b.data[(b.start+b.count)%len(b.data)] = stored
		b.count++
		return
	}

	// At capacity: overwrite the oldest slot and advance the ring
	b.data[b.start] = stored
	b.start = (b.start + 1) % len(b.data)
}

// Sample draws n transitions uniformly at random without replacement.
// Sampling more transitions than the buffer holds returns a
// *BufferError reporting insufficient samples; it never silently
// returns fewer.
func (b *Buffer) Sample(n int) ([]Transition, error) {
	if n > b.count {
		return nil, &BufferError{Op: "sample", Err: errInsufficientSamples}
	}
	if n < 0 {
		return nil, fmt.Errorf("sample: negative sample size %v", n)
	}

	batch := make([]Transition, n)
	for i, j := range b.rng.Perm(b.count)[:n] {
		batch[i] = b.data[(b.start+j)%len(b.data)]
	}
	return batch, nil
}

// Len returns the number of transitions currently stored.
func (b *Buffer) Len() int {
	return b.count
}

// MaxLen returns the capacity of the buffer.
func (b *Buffer) MaxLen() int {
	return len(b.data)
}
