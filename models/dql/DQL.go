// Package dql implements deep Q-learning with experience replay and an
// epsilon-greedy behaviour policy over a pluggable value-function
// backend.
package dql

import (
	"encoding/gob"
	"fmt"
	"math/rand"
	"os"

	"github.com/thuthu-c/urnai-tools/agents/actions"
	"github.com/thuthu-c/urnai-tools/agents/states"
	"github.com/thuthu-c/urnai-tools/backend"
	"github.com/thuthu-c/urnai-tools/exploration"
	"github.com/thuthu-c/urnai-tools/replay"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DQL learns action values by regressing its backend toward one-step
// Bellman targets computed over minibatches drawn from a replay buffer.
type DQL struct {
	actionIDs []int
	column    map[int]int // action id to backend output column
	stateSize int

	gamma           float64
	epsilon         *exploration.Schedule
	decayPerEpisode bool

	useMemory bool
	memory    *replay.Buffer
	minMemory int
	batchSize int

	vf  backend.ValueFunction
	rng *rand.Rand
}

// New returns a DQL learner acting over the wrapper's action set on
// states produced by the builder. When c.ValueFunction is nil the
// backend is constructed from the c.Backend registry tag.
func New(aw actions.Wrapper, sb states.Builder, c Config, seed int64) (*DQL, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	vf := c.ValueFunction
	if vf == nil {
		var err error
		vf, err = backend.Make(c.Backend, backend.Config{
			StateSize:    sb.Size(),
			ActionSize:   aw.Size(),
			BatchSize:    c.batchSize(),
			LearningRate: c.LearningRate,
			HiddenSizes:  c.HiddenSizes,
			Seed:         seed,
		})
		if err != nil {
			return nil, err
		}
	}
	if vf.StateSize() != sb.Size() || vf.ActionSize() != aw.Size() {
		return nil, fmt.Errorf("dql: backend shape %vx%v does not match "+
			"state builder (%v) and action wrapper (%v)", vf.StateSize(),
			vf.ActionSize(), sb.Size(), aw.Size())
	}

	var epsilon *exploration.Schedule
	var err error
	if c.EpsilonLinearDecay {
		epsilon, err = exploration.NewLinear(c.EpsilonStart, c.EpsilonMin,
			c.EpsilonDecay)
	} else {
		epsilon, err = exploration.NewExponential(c.EpsilonStart, c.EpsilonMin,
			c.EpsilonDecay)
	}
	if err != nil {
		return nil, err
	}

	d := &DQL{
		actionIDs:       aw.Actions(),
		column:          make(map[int]int, aw.Size()),
		stateSize:       sb.Size(),
		gamma:           c.Gamma,
		epsilon:         epsilon,
		decayPerEpisode: c.DecayPerEpisode,
		useMemory:       c.UseMemory,
		minMemory:       c.MinMemorySize,
		batchSize:       c.batchSize(),
		vf:              vf,
		rng:             rand.New(rand.NewSource(seed)),
	}
	for i, id := range d.actionIDs {
		d.column[id] = i
	}

	if c.UseMemory {
		if d.memory, err = replay.New(c.MemoryMaxLen, seed); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Epsilon returns the current exploration rate.
func (d *DQL) Epsilon() float64 {
	return d.epsilon.Value()
}

// ChooseAction returns an epsilon-greedy action for the state. When
// testing is true the greedy action is returned. The exploration
// schedule only advances in Learn, so choices alone never change it.
func (d *DQL) ChooseAction(state []float64, excluded []int, testing bool) (int, error) {
	if testing {
		return d.Predict(state, excluded)
	}

	if d.rng.Float64() <= d.epsilon.Value() {
		return d.randomAction(excluded), nil
	}
	return d.Predict(state, excluded)
}

// randomAction draws uniformly from the actions not excluded.
func (d *DQL) randomAction(excluded []int) int {
	candidates := make([]int, 0, len(d.actionIDs))
	for _, id := range d.actionIDs {
		if !actions.Contains(excluded, id) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		// An exclusion set covering the whole action set is a
		// programming error in the wrapper
		panic(fmt.Sprintf("chooseaction: all %v actions excluded",
			len(d.actionIDs)))
	}
	return candidates[d.rng.Intn(len(candidates))]
}

// Predict returns the greedy action for the state. Excluded actions are
// skipped during the argmax; the action values of the remaining actions
// keep their identities, so exclusion never shifts which value belongs
// to which action.
func (d *DQL) Predict(state []float64, excluded []int) (int, error) {
	values, err := d.evaluateOne(state)
	if err != nil {
		return 0, err
	}

	best := 0
	bestValue := 0.0
	found := false
	for i, id := range d.actionIDs {
		if actions.Contains(excluded, id) {
			continue
		}
		if v := values.At(0, i); !found || v > bestValue {
			best, bestValue, found = id, v, true
		}
	}
	if !found {
		panic(fmt.Sprintf("predict: all %v actions excluded",
			len(d.actionIDs)))
	}
	return best, nil
}

func (d *DQL) evaluateOne(state []float64) (*mat.Dense, error) {
	if len(state) != d.stateSize {
		return nil, fmt.Errorf("dql: invalid state size \n\twant(%v)"+
			"\n\thave(%v)", d.stateSize, len(state))
	}
	return d.vf.Evaluate(mat.NewDense(1, d.stateSize, state))
}

// Learn records the transition and updates the backend. With replay
// enabled the transition is stored first; no update happens until the
// buffer holds MinMemorySize transitions, after which each call updates
// on a fresh uniform sample of BatchSize transitions. Every call ends
// by advancing the per-step epsilon schedule, gated or not, unless
// decay runs per episode.
func (d *DQL) Learn(state []float64, action int, reward float64,
	nextState []float64, done bool) error {
	if _, ok := d.column[action]; !ok {
		return fmt.Errorf("learn: unknown action %v", action)
	}
	if !done && nextState == nil {
		// The done flag and the next state must agree; substituting a
		// zero vector here would poison the Bellman targets
		panic("learn: non-terminal transition with no next state")
	}

	t := replay.Transition{
		State:  state,
		Action: action,
		Reward: reward,
		Done:   done,
	}
	if !done {
		t.NextState = nextState
	}

	if !d.useMemory {
		if err := d.learnBatch([]replay.Transition{t}); err != nil {
			return err
		}
		d.decayStep()
		return nil
	}

	d.memory.Store(t)
	if d.memory.Len() >= d.minMemory {
		batch, err := d.memory.Sample(d.batchSize)
		if err != nil {
			// Validate guarantees BatchSize <= MinMemorySize, so a
			// filled gate can always satisfy a sample.
			panic(fmt.Sprintf("learn: %v", err))
		}
		if err := d.learnBatch(batch); err != nil {
			return err
		}
	}
	d.decayStep()
	return nil
}

// decayStep advances the per-step epsilon schedule at the end of a
// learn call.
func (d *DQL) decayStep() {
	if !d.decayPerEpisode {
		d.epsilon.Decay()
	}
}

// learnBatch regresses the backend toward the Bellman targets of a
// batch of transitions. Terminal transitions keep a zero next-state
// row; their Done flag pins the target to the bare reward, so the row
// content never influences learning.
func (d *DQL) learnBatch(batch []replay.Transition) error {
	n := len(batch)
	statesM := mat.NewDense(n, d.stateSize, nil)
	nextM := mat.NewDense(n, d.stateSize, nil)
	for i, t := range batch {
		statesM.SetRow(i, t.State)
		if !t.Done {
			nextM.SetRow(i, t.NextState)
		}
	}

	current, err := d.vf.Evaluate(statesM)
	if err != nil {
		return fmt.Errorf("learn: %v", err)
	}
	next, err := d.vf.Evaluate(nextM)
	if err != nil {
		return fmt.Errorf("learn: %v", err)
	}

	// Targets equal the current predictions everywhere except the
	// column of the taken action, so the regression leaves untaken
	// actions alone.
	targets := mat.DenseCopyOf(current)
	for i, t := range batch {
		target := t.Reward
		if !t.Done {
			target += d.gamma * floats.Max(next.RawRowView(i))
		}
		targets.Set(i, d.column[t.Action], target)
	}

	if err := d.vf.Update(statesM, targets); err != nil {
		return fmt.Errorf("learn: %v", err)
	}
	return nil
}

// EndEpisode advances per-episode schedules.
func (d *DQL) EndEpisode() {
	if d.decayPerEpisode {
		d.epsilon.Decay()
	}
}

// meta is the gob layout of learner state saved alongside the backend
// parameters.
type meta struct {
	Epsilon float64
}

// Save persists the backend parameters to path and the exploration
// state to path + ".meta".
func (d *DQL) Save(path string) error {
	if err := d.vf.Save(path); err != nil {
		return err
	}

	file, err := os.Create(path + ".meta")
	if err != nil {
		return fmt.Errorf("save: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(meta{Epsilon: d.epsilon.Value()}); err != nil {
		return fmt.Errorf("save: could not encode learner state: %v", err)
	}
	return nil
}

// Load restores state written by Save.
func (d *DQL) Load(path string) error {
	if err := d.vf.Load(path); err != nil {
		return err
	}

	file, err := os.Open(path + ".meta")
	if err != nil {
		return fmt.Errorf("load: %v", err)
	}
	defer file.Close()

	var m meta
	if err := gob.NewDecoder(file).Decode(&m); err != nil {
		return fmt.Errorf("load: corrupt learner state %v: %v", path+".meta", err)
	}
	d.epsilon.Set(m.Epsilon)
	return nil
}
