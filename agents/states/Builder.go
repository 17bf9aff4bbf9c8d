// Package states defines state builders, which turn environment
// observations into the fixed-size float vectors learning models
// consume.
package states

import "github.com/thuthu-c/urnai-tools/envs"

// Builder converts observations of one environment into state vectors.
type Builder interface {
	// Build returns the state vector for an observation. The returned
	// slice is owned by the caller.
	Build(obs envs.Observation) []float64

	// Size returns the fixed dimensionality of built state vectors.
	Size() int
}
