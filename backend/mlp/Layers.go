package mlp

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	relu    bool
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x = G.Must(G.Mul(x, f.weights))
	if f.bias != nil {
		// Broadcast the bias weights to all samples along the batch
		// dimension
		x = G.Must(G.BroadcastAdd(x, f.bias, nil, []byte{0}))
	}
	if f.relu {
		return G.Rectify(x)
	}
	return x, nil
}

// cloneTo clones an fcLayer, with its current weight values, to a new
// computational graph
func (f *fcLayer) cloneTo(g *G.ExprGraph) *fcLayer {
	clone := &fcLayer{
		weights: f.weights.CloneTo(g),
		relu:    f.relu,
	}
	if f.bias != nil {
		clone.bias = f.bias.CloneTo(g)
	}
	return clone
}

// setFrom sets the weight values of the layer to a copy of those of
// src, which must share the same architecture.
func (f *fcLayer) setFrom(src *fcLayer) error {
	srcWeights := src.weights.Clone()
	if err := G.Let(f.weights, srcWeights.(*G.Node).Value()); err != nil {
		return err
	}
	if f.bias != nil {
		srcBias := src.bias.Clone()
		if err := G.Let(f.bias, srcBias.(*G.Node).Value()); err != nil {
			return err
		}
	}
	return nil
}

// learnables returns the learnable nodes of the layer
func (f *fcLayer) learnables() G.Nodes {
	if f.bias == nil {
		return G.Nodes{f.weights}
	}
	return G.Nodes{f.weights, f.bias}
}

// addLayers creates the fully connected layers of a network on graph g.
// Hidden layers use ReLU activations; the final layer is linear so that
// the network outputs one unbounded value per action.
func addLayers(g *G.ExprGraph, features, outputs int, hiddenSizes []int,
	init G.InitWFn, suffix string) []*fcLayer {
	sizes := append(append([]int{}, hiddenSizes...), outputs)

	layers := make([]*fcLayer, len(sizes))
	in := features
	for i, out := range sizes {
		layers[i] = &fcLayer{
			weights: G.NewMatrix(
				g,
				tensor.Float64,
				G.WithShape(in, out),
				G.WithInit(init),
				G.WithName(fmt.Sprintf("L%dW%s", i, suffix)),
			),
			bias: G.NewMatrix(
				g,
				tensor.Float64,
				G.WithShape(1, out),
				G.WithInit(G.Zeroes()),
				G.WithName(fmt.Sprintf("L%dB%s", i, suffix)),
			),
			relu: i != len(sizes)-1,
		}
		in = out
	}
	return layers
}
