// Package mlp implements a multi-layer perceptron value-function
// backend on Gorgonia.
//
// The backend keeps one computational graph for training, with an MSE
// loss over a fixed update batch size, and lazily built forward-only
// clones for evaluation at whatever batch sizes callers ask for. After
// each gradient step the evaluation clones are marked stale and
// re-synced from the training weights on the next Evaluate.
package mlp

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/thuthu-c/urnai-tools/backend"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Tag is the registry tag of this backend.
const Tag = "mlp"

func init() {
	backend.Register(Tag, func(c backend.Config) (backend.ValueFunction, error) {
		return New(c)
	})
}

// qNet bundles a computational graph holding the network layers with
// the tape machine that runs it.
type qNet struct {
	g          *G.ExprGraph
	input      *G.Node
	layers     []*fcLayer
	prediction *G.Node
	predVal    G.Value
	vm         G.VM
	batchSize  int
}

// fwd runs the layer chain on the input node and records the
// prediction.
func (q *qNet) fwd() error {
	pred := q.input
	var err error
	for i, l := range q.layers {
		if pred, err = l.fwd(pred); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"layer %v: %v", i, err)
		}
	}
	q.prediction = pred
	G.Read(q.prediction, &q.predVal)
	return nil
}

// setInput loads a batch of states into the input node.
func (q *qNet) setInput(states *mat.Dense, features int) error {
	rows, cols := states.Dims()
	if rows != q.batchSize || cols != features {
		return fmt.Errorf("setinput: invalid input shape \n\twant(%vx%v)"+
			"\n\thave(%vx%v)", q.batchSize, features, rows, cols)
	}

	backing := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		copy(backing[i*cols:(i+1)*cols], states.RawRowView(i))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(backing),
		tensor.WithShape(rows, cols),
	)
	return G.Let(q.input, inputTensor)
}

// learnables returns the learnable nodes of all layers, in layer order.
func (q *qNet) learnables() G.Nodes {
	nodes := make(G.Nodes, 0, 2*len(q.layers))
	for _, l := range q.layers {
		nodes = append(nodes, l.learnables()...)
	}
	return nodes
}

// MLP is a feedforward neural network value function.
type MLP struct {
	stateSize   int
	actionSize  int
	batchSize   int
	hiddenSizes []int

	train   *qNet
	targets *G.Node
	model   []G.ValueGrad
	solver  G.Solver

	evals map[int]*qNet
	stale bool
}

// New returns a new MLP backend with Glorot-initialized weights, ReLU
// hidden layers as sized by c.HiddenSizes, and an Adam solver stepping
// at c.LearningRate. The update batch size is fixed to c.BatchSize.
func New(c backend.Config) (*MLP, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	m := &MLP{
		stateSize:   c.StateSize,
		actionSize:  c.ActionSize,
		batchSize:   c.BatchSize,
		hiddenSizes: append([]int{}, c.HiddenSizes...),
		evals:       map[int]*qNet{},
	}

	// Training graph: forward pass, MSE loss against a target node,
	// gradients bound for the solver
	g := G.NewGraph()
	m.train = &qNet{
		g: g,
		input: G.NewMatrix(g, tensor.Float64,
			G.WithShape(c.BatchSize, c.StateSize), G.WithName("input"),
			G.WithInit(G.Zeroes())),
		layers:    addLayers(g, c.StateSize, c.ActionSize, m.hiddenSizes, G.GlorotU(1.0), ""),
		batchSize: c.BatchSize,
	}
	if err := m.train.fwd(); err != nil {
		return nil, err
	}

	m.targets = G.NewMatrix(g, tensor.Float64,
		G.WithShape(c.BatchSize, c.ActionSize), G.WithName("targets"))

	losses := G.Must(G.Sub(m.train.prediction, m.targets))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	learnables := m.train.learnables()
	if _, err := G.Grad(cost, learnables...); err != nil {
		return nil, fmt.Errorf("new: could not compute gradient: %v", err)
	}

	m.train.vm = G.NewTapeMachine(g, G.BindDualValues(learnables...))

	m.model = make([]G.ValueGrad, len(learnables))
	for i, node := range learnables {
		m.model[i] = node
	}

	m.solver = G.NewAdamSolver(
		G.WithLearnRate(c.LearningRate),
		G.WithBatchSize(float64(c.BatchSize)),
	)

	return m, nil
}

// StateSize returns the state vector dimensionality.
func (m *MLP) StateSize() int {
	return m.stateSize
}

// ActionSize returns the number of predicted action values per state.
func (m *MLP) ActionSize() int {
	return m.actionSize
}

// evalNet returns a forward-only clone of the training network with the
// given input batch size, creating and caching it on first use.
func (m *MLP) evalNet(batch int) (*qNet, error) {
	if net, ok := m.evals[batch]; ok {
		return net, nil
	}

	g := G.NewGraph()
	net := &qNet{
		g: g,
		input: G.NewMatrix(g, tensor.Float64,
			G.WithShape(batch, m.stateSize), G.WithName("input"),
			G.WithInit(G.Zeroes())),
		batchSize: batch,
	}
	net.layers = make([]*fcLayer, len(m.train.layers))
	for i, l := range m.train.layers {
		net.layers[i] = l.cloneTo(g)
	}
	if err := net.fwd(); err != nil {
		return nil, err
	}
	net.vm = G.NewTapeMachine(g)

	m.evals[batch] = net
	return net, nil
}

// syncEvals copies the training weights into every evaluation clone.
func (m *MLP) syncEvals() error {
	for _, net := range m.evals {
		for i, layer := range net.layers {
			if err := layer.setFrom(m.train.layers[i]); err != nil {
				return fmt.Errorf("sync: could not set layer %v: %v", i, err)
			}
		}
	}
	m.stale = false
	return nil
}

// Evaluate returns one row of action values per input state row.
func (m *MLP) Evaluate(states *mat.Dense) (*mat.Dense, error) {
	rows, cols := states.Dims()
	if cols != m.stateSize {
		return nil, fmt.Errorf("evaluate: invalid state size \n\twant(%v)"+
			"\n\thave(%v)", m.stateSize, cols)
	}

	net, err := m.evalNet(rows)
	if err != nil {
		return nil, err
	}
	if m.stale {
		if err := m.syncEvals(); err != nil {
			return nil, err
		}
	}

	if err := net.setInput(states, m.stateSize); err != nil {
		return nil, err
	}
	if err := net.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("evaluate: %v", err)
	}

	values := net.predVal.Data().([]float64)
	out := mat.NewDense(rows, m.actionSize, nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, values[i*m.actionSize:(i+1)*m.actionSize])
	}

	net.vm.Reset()
	return out, nil
}

// Update performs one Adam step minimizing the mean squared error
// between the network output for states and targets. The batch size
// must equal the one fixed at construction.
func (m *MLP) Update(states, targets *mat.Dense) error {
	tRows, tCols := targets.Dims()
	if tRows != m.batchSize || tCols != m.actionSize {
		return fmt.Errorf("update: invalid target shape \n\twant(%vx%v)"+
			"\n\thave(%vx%v)", m.batchSize, m.actionSize, tRows, tCols)
	}

	if err := m.train.setInput(states, m.stateSize); err != nil {
		return err
	}

	backing := make([]float64, tRows*tCols)
	for i := 0; i < tRows; i++ {
		copy(backing[i*tCols:(i+1)*tCols], targets.RawRowView(i))
	}
	targetTensor := tensor.New(
		tensor.WithBacking(backing),
		tensor.WithShape(tRows, tCols),
	)
	if err := G.Let(m.targets, targetTensor); err != nil {
		return fmt.Errorf("update: could not set targets: %v", err)
	}

	if err := m.train.vm.RunAll(); err != nil {
		return fmt.Errorf("update: %v", err)
	}
	if err := m.solver.Step(m.model); err != nil {
		return fmt.Errorf("update: solver step: %v", err)
	}
	m.train.vm.Reset()

	m.stale = true
	return nil
}

// checkpoint is the gob layout of a saved MLP.
type checkpoint struct {
	Shapes  [][]int
	Weights [][]float64
}

// Save persists the learnable parameters to path with gob.
func (m *MLP) Save(path string) error {
	learnables := m.train.learnables()
	chk := checkpoint{
		Shapes:  make([][]int, len(learnables)),
		Weights: make([][]float64, len(learnables)),
	}
	for i, node := range learnables {
		chk.Shapes[i] = append([]int{}, node.Shape()...)
		data := node.Value().Data().([]float64)
		chk.Weights[i] = append([]float64{}, data...)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(chk); err != nil {
		return fmt.Errorf("save: could not encode parameters: %v", err)
	}
	return nil
}

// Load restores parameters written by Save into a backend constructed
// with the same architecture.
func (m *MLP) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load: %v", err)
	}
	defer file.Close()

	var chk checkpoint
	if err := gob.NewDecoder(file).Decode(&chk); err != nil {
		return fmt.Errorf("load: corrupt checkpoint %v: %v", path, err)
	}

	learnables := m.train.learnables()
	if len(chk.Weights) != len(learnables) {
		return fmt.Errorf("load: checkpoint has %v parameter tensors, "+
			"architecture has %v", len(chk.Weights), len(learnables))
	}

	for i, node := range learnables {
		shape := node.Shape()
		if len(chk.Weights[i]) != shape.TotalSize() {
			return fmt.Errorf("load: parameter %v has %v values, want %v",
				i, len(chk.Weights[i]), shape.TotalSize())
		}
		loaded := tensor.New(
			tensor.WithShape(chk.Shapes[i]...),
			tensor.WithBacking(chk.Weights[i]),
		)
		if err := G.Let(node, loaded); err != nil {
			return fmt.Errorf("load: could not set parameter %v: %v", i, err)
		}
	}

	m.stale = true
	return nil
}
