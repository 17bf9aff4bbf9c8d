// Package gridcollect implements a small collecting task on a
// rectangular grid. The agent starts in a corner and must walk over
// every scattered item; an episode ends when all items are collected or
// a step limit runs out.
//
// The package also provides the action wrapper and state builder that
// interpret its observations, so a learner can be wired to the task
// without any glue code.
package gridcollect

import (
	"fmt"
	"math/rand"

	"github.com/thuthu-c/urnai-tools/envs"
)

// Movement actions.
const (
	MoveUp = iota
	MoveDown
	MoveLeft
	MoveRight
	numActions
)

// Observation is the full visible state of the grid at one step.
type Observation struct {
	Width  int
	Height int
	AgentX int
	AgentY int

	// Items flags the cells that still hold an item, row-major.
	Items []bool

	Remaining int
	Steps     int
}

// itemAt reports whether the cell holds an uncollected item.
func (o *Observation) itemAt(x, y int) bool {
	return o.Items[y*o.Width+x]
}

// Env is the grid engine.
type Env struct {
	width    int
	height   int
	numItems int
	maxSteps int
	rng      *rand.Rand

	obs     *Observation
	started bool
}

// NewEnv returns a width x height grid with numItems items scattered
// fresh each episode. Episodes end after maxSteps steps at the latest.
func NewEnv(width, height, numItems, maxSteps int, seed int64) (*Env, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("gridcollect: grid must be at least 2x2, "+
			"got %vx%v", width, height)
	}
	// Cell (0, 0) is the agent start and never holds an item
	if numItems < 1 || numItems > width*height-1 {
		return nil, fmt.Errorf("gridcollect: item count must be in [1, %v], "+
			"got %v", width*height-1, numItems)
	}
	if maxSteps < 1 {
		return nil, fmt.Errorf("gridcollect: step limit must be positive, "+
			"got %v", maxSteps)
	}
	return &Env{
		width:    width,
		height:   height,
		numItems: numItems,
		maxSteps: maxSteps,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Start begins the first episode.
func (e *Env) Start() (envs.Observation, error) {
	e.started = true
	return e.Reset()
}

// Reset begins a new episode with the agent at the origin and a fresh
// item scatter.
func (e *Env) Reset() (envs.Observation, error) {
	if !e.started {
		return nil, fmt.Errorf("gridcollect: reset before start")
	}

	e.obs = &Observation{
		Width:     e.width,
		Height:    e.height,
		Items:     make([]bool, e.width*e.height),
		Remaining: e.numItems,
	}
	for _, cell := range e.rng.Perm(e.width*e.height - 1)[:e.numItems] {
		// Shift past cell 0 so the start cell stays empty
		e.obs.Items[cell+1] = true
	}
	return e.snapshot(), nil
}

// Step moves the agent. Walking over an item collects it for a reward
// of 1; every other step pays 0. Moves off the grid are rejected with
// an error since the action wrapper excludes them.
func (e *Env) Step(action int) (envs.Observation, float64, bool, error) {
	if e.obs == nil {
		return nil, 0, false, fmt.Errorf("gridcollect: step before start")
	}

	x, y := e.obs.AgentX, e.obs.AgentY
	switch action {
	case MoveUp:
		y--
	case MoveDown:
		y++
	case MoveLeft:
		x--
	case MoveRight:
		x++
	default:
		return nil, 0, false, fmt.Errorf("gridcollect: unknown action %v",
			action)
	}
	if x < 0 || x >= e.width || y < 0 || y >= e.height {
		return nil, 0, false, fmt.Errorf("gridcollect: action %v moves off "+
			"the %vx%v grid from (%v, %v)", action, e.width, e.height,
			e.obs.AgentX, e.obs.AgentY)
	}

	e.obs.AgentX, e.obs.AgentY = x, y
	e.obs.Steps++

	reward := 0.0
	if e.obs.itemAt(x, y) {
		e.obs.Items[y*e.width+x] = false
		e.obs.Remaining--
		reward = 1.0
	}

	done := e.obs.Remaining == 0 || e.obs.Steps >= e.maxSteps
	return e.snapshot(), reward, done, nil
}

// Close releases nothing; the engine is purely in-memory.
func (e *Env) Close() error {
	e.obs = nil
	return nil
}

// snapshot copies the current observation so callers can hold it across
// steps.
func (e *Env) snapshot() *Observation {
	o := *e.obs
	o.Items = append([]bool(nil), e.obs.Items...)
	return &o
}
