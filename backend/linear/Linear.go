// Package linear implements a linear value-function backend on gonum.
//
// Action values are computed as W * state, one weight row per action.
// Updates follow a plain gradient step on the mean squared error, which
// for a linear model reduces to scaling the state by the per-action
// error.
package linear

import (
	"fmt"
	"os"

	"github.com/thuthu-c/urnai-tools/backend"
	"gonum.org/v1/gonum/mat"
)

// Tag is the registry tag of this backend.
const Tag = "linear"

func init() {
	backend.Register(Tag, func(c backend.Config) (backend.ValueFunction, error) {
		return New(c)
	})
}

// Linear is a linear function approximator over state features.
type Linear struct {
	weights      *mat.Dense // actionSize x stateSize
	stateSize    int
	actionSize   int
	learningRate float64
}

// New returns a zero-initialized linear backend.
func New(c backend.Config) (*Linear, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &Linear{
		weights:      mat.NewDense(c.ActionSize, c.StateSize, nil),
		stateSize:    c.StateSize,
		actionSize:   c.ActionSize,
		learningRate: c.LearningRate,
	}, nil
}

// StateSize returns the state vector dimensionality.
func (l *Linear) StateSize() int {
	return l.stateSize
}

// ActionSize returns the number of predicted action values per state.
func (l *Linear) ActionSize() int {
	return l.actionSize
}

// Evaluate returns the action values states * Wᵀ, one row per state.
func (l *Linear) Evaluate(states *mat.Dense) (*mat.Dense, error) {
	rows, cols := states.Dims()
	if cols != l.stateSize {
		return nil, fmt.Errorf("evaluate: invalid state size \n\twant(%v)"+
			"\n\thave(%v)", l.stateSize, cols)
	}

	out := mat.NewDense(rows, l.actionSize, nil)
	out.Mul(states, l.weights.T())
	return out, nil
}

// Update performs one gradient step toward targets:
// W <- W + (α/B) * (targets - prediction)ᵀ * states
func (l *Linear) Update(states, targets *mat.Dense) error {
	rows, cols := states.Dims()
	tRows, tCols := targets.Dims()
	if tRows != rows || tCols != l.actionSize {
		return fmt.Errorf("update: invalid target shape \n\twant(%vx%v)"+
			"\n\thave(%vx%v)", rows, l.actionSize, tRows, tCols)
	}
	if cols != l.stateSize {
		return fmt.Errorf("update: invalid state size \n\twant(%v)"+
			"\n\thave(%v)", l.stateSize, cols)
	}

	pred, err := l.Evaluate(states)
	if err != nil {
		return err
	}

	diff := mat.NewDense(rows, l.actionSize, nil)
	diff.Sub(targets, pred)

	grad := mat.NewDense(l.actionSize, l.stateSize, nil)
	grad.Mul(diff.T(), states)
	grad.Scale(l.learningRate/float64(rows), grad)

	l.weights.Add(l.weights, grad)
	return nil
}

// Save writes the weight matrix to path.
func (l *Linear) Save(path string) error {
	data, err := l.weights.MarshalBinary()
	if err != nil {
		return fmt.Errorf("save: could not encode weights: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}

// Load restores a weight matrix written by Save. The checkpoint must
// match the backend's architecture.
func (l *Linear) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load: %v", err)
	}

	var loaded mat.Dense
	if err := loaded.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("load: corrupt checkpoint %v: %v", path, err)
	}

	rows, cols := loaded.Dims()
	if rows != l.actionSize || cols != l.stateSize {
		return fmt.Errorf("load: checkpoint shape %vx%v does not match "+
			"backend %vx%v", rows, cols, l.actionSize, l.stateSize)
	}

	l.weights = &loaded
	return nil
}
