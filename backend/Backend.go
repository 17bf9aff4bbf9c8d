// Package backend defines the value-function contract that learning
// models drive, together with a registry of concrete implementations.
//
// A ValueFunction is an opaque function approximator mapping a batch of
// state vectors to a batch of action-value vectors. Models never branch
// on which implementation is behind the interface; anything capable of
// supervised regression satisfies the contract.
package backend

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ValueFunction approximates action values for states and can be
// regressed toward supplied targets.
type ValueFunction interface {
	// Evaluate returns one row of action values per input state row.
	// Implementations must accept a batch of size 1 without
	// special-casing by the caller.
	Evaluate(states *mat.Dense) (*mat.Dense, error)

	// Update performs one gradient step (or equivalent) minimizing the
	// squared error between the backend output for states and the
	// supplied targets. The only side effect is mutation of internal
	// parameters.
	Update(states, targets *mat.Dense) error

	// Save persists the backend parameters to path.
	Save(path string) error

	// Load restores parameters previously written by Save. The
	// receiver must have been constructed with a matching
	// architecture.
	Load(path string) error

	// StateSize returns the state vector dimensionality.
	StateSize() int

	// ActionSize returns the length of each action-value row.
	ActionSize() int
}

// Config collects the construction parameters shared by registered
// backends. Backends ignore fields that do not apply to them.
type Config struct {
	StateSize  int
	ActionSize int

	// BatchSize is the number of rows Update will be called with. It
	// is fixed for the lifetime of the backend; Evaluate accepts any
	// batch size.
	BatchSize int

	LearningRate float64

	// HiddenSizes lists hidden layer widths for neural backends. An
	// empty slice yields a linear architecture.
	HiddenSizes []int

	Seed int64
}

// Validate checks the fields every backend depends on.
func (c Config) Validate() error {
	if c.StateSize < 1 {
		return fmt.Errorf("backend: state size must be positive, got %v",
			c.StateSize)
	}
	if c.ActionSize < 1 {
		return fmt.Errorf("backend: action size must be positive, got %v",
			c.ActionSize)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("backend: batch size must be positive, got %v",
			c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("backend: learning rate must be positive, got %v",
			c.LearningRate)
	}
	return nil
}

// Constructor builds a ValueFunction from a Config.
type Constructor func(Config) (ValueFunction, error)

var registry = map[string]Constructor{}

// Register makes a backend constructor available under tag. It is
// intended to be called from the init function of backend packages.
// Registering the same tag twice panics: two packages claiming one tag
// is a programming error.
func Register(tag string, fn Constructor) {
	if _, ok := registry[tag]; ok {
		panic(fmt.Sprintf("backend: tag %q registered twice", tag))
	}
	registry[tag] = fn
}

// Make constructs the backend registered under tag.
func Make(tag string, c Config) (ValueFunction, error) {
	fn, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("make: no backend registered under %q "+
			"(registered: %v)", tag, Tags())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return fn(c)
}

// Tags returns the tags of all registered backends.
func Tags() []string {
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	return tags
}
