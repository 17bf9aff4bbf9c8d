// Package qtable implements tabular Q-learning. State vectors are keyed
// into a table of action-value rows, so it suits environments whose
// state builders emit a manageable number of distinct vectors.
package qtable

import (
	"encoding/gob"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/thuthu-c/urnai-tools/agents/actions"
	"github.com/thuthu-c/urnai-tools/agents/states"
	"github.com/thuthu-c/urnai-tools/exploration"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/thuthu-c/urnai-tools/utils/floatutils"
)

// QTable learns action values with one-step Q-learning over an
// in-memory table, behaving epsilon-greedily.
type QTable struct {
	actionIDs []int
	column    map[int]int
	stateSize int

	table map[string][]float64

	gamma   float64
	alpha   *exploration.Schedule
	epsilon *exploration.Schedule

	src rand.Source
}

// New returns a tabular Q-learner over the wrapper's action set.
func New(aw actions.Wrapper, sb states.Builder, c Config, seed int64) (*QTable, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	alpha, err := exploration.NewExponential(c.AlphaStart, c.AlphaMin,
		c.AlphaDecay)
	if err != nil {
		return nil, err
	}
	epsilon, err := exploration.NewExponential(c.EpsilonStart, c.EpsilonMin,
		c.EpsilonDecay)
	if err != nil {
		return nil, err
	}

	q := &QTable{
		actionIDs: aw.Actions(),
		column:    make(map[int]int, aw.Size()),
		stateSize: sb.Size(),
		table:     map[string][]float64{},
		gamma:     c.Gamma,
		alpha:     alpha,
		epsilon:   epsilon,
		src:       rand.NewSource(uint64(seed)),
	}
	for i, id := range q.actionIDs {
		q.column[id] = i
	}
	return q, nil
}

// key canonicalizes a state vector into a table key.
func key(state []float64) string {
	var b strings.Builder
	for i, v := range state {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// row returns the action-value row for a state, creating a zero row for
// states seen for the first time.
func (q *QTable) row(state []float64) []float64 {
	k := key(state)
	if r, ok := q.table[k]; ok {
		return r
	}
	r := make([]float64, len(q.actionIDs))
	q.table[k] = r
	return r
}

// Epsilon returns the current exploration rate.
func (q *QTable) Epsilon() float64 {
	return q.epsilon.Value()
}

// TableSize returns the number of distinct states seen so far.
func (q *QTable) TableSize() int {
	return len(q.table)
}

// ChooseAction samples an epsilon-greedy action for the state: each
// available action carries probability epsilon/m, and the greedy action
// additionally carries 1 - epsilon, where m counts the actions not
// excluded. When testing is true the greedy action is returned.
func (q *QTable) ChooseAction(state []float64, excluded []int, testing bool) (int, error) {
	if testing {
		return q.Predict(state, excluded)
	}

	greedy, err := q.Predict(state, excluded)
	if err != nil {
		return 0, err
	}

	available := 0
	for _, id := range q.actionIDs {
		if !actions.Contains(excluded, id) {
			available++
		}
	}

	eps := q.epsilon.Value()
	weights := make([]float64, len(q.actionIDs))
	for i, id := range q.actionIDs {
		if actions.Contains(excluded, id) {
			continue
		}
		weights[i] = eps / float64(available)
		if id == greedy {
			weights[i] += 1.0 - eps
		}
	}

	sampler := distuv.NewCategorical(weights, q.src)
	return q.actionIDs[int(sampler.Rand())], nil
}

// Predict returns the greedy action for the state. Excluded actions are
// skipped during the argmax without disturbing the pairing of the
// remaining actions with their values.
func (q *QTable) Predict(state []float64, excluded []int) (int, error) {
	if len(state) != q.stateSize {
		return 0, fmt.Errorf("qtable: invalid state size \n\twant(%v)"+
			"\n\thave(%v)", q.stateSize, len(state))
	}

	values := q.row(state)
	best := 0
	bestValue := 0.0
	found := false
	for i, id := range q.actionIDs {
		if actions.Contains(excluded, id) {
			continue
		}
		if !found || values[i] > bestValue {
			best, bestValue, found = id, values[i], true
		}
	}
	if !found {
		panic(fmt.Sprintf("predict: all %v actions excluded",
			len(q.actionIDs)))
	}
	return best, nil
}

// Learn applies the one-step Q-learning update
// Q(s,a) <- Q(s,a) + alpha * (target - Q(s,a)), where the target is the
// bare reward on terminal transitions and r + gamma * max Q(s')
// otherwise.
func (q *QTable) Learn(state []float64, action int, reward float64,
	nextState []float64, done bool) error {
	col, ok := q.column[action]
	if !ok {
		return fmt.Errorf("learn: unknown action %v", action)
	}
	if !done && nextState == nil {
		panic("learn: non-terminal transition with no next state")
	}

	target := reward
	if !done {
		next, _ := floatutils.MaxSlice(q.row(nextState))
		target += q.gamma * next
	}

	values := q.row(state)
	values[col] += q.alpha.Value() * (target - values[col])
	return nil
}

// EndEpisode decays the step size and exploration schedules.
func (q *QTable) EndEpisode() {
	q.alpha.Decay()
	q.epsilon.Decay()
}

// checkpoint is the gob layout of a saved table.
type checkpoint struct {
	Table   map[string][]float64
	Alpha   float64
	Epsilon float64
}

// Save persists the table and schedules to path with gob.
func (q *QTable) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %v", err)
	}
	defer file.Close()

	chk := checkpoint{
		Table:   q.table,
		Alpha:   q.alpha.Value(),
		Epsilon: q.epsilon.Value(),
	}
	if err := gob.NewEncoder(file).Encode(chk); err != nil {
		return fmt.Errorf("save: could not encode table: %v", err)
	}
	return nil
}

// Load restores state written by Save.
func (q *QTable) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load: %v", err)
	}
	defer file.Close()

	var chk checkpoint
	if err := gob.NewDecoder(file).Decode(&chk); err != nil {
		return fmt.Errorf("load: corrupt table %v: %v", path, err)
	}
	for k, r := range chk.Table {
		if len(r) != len(q.actionIDs) {
			return fmt.Errorf("load: state %q has %v action values, want %v",
				k, len(r), len(q.actionIDs))
		}
	}

	q.table = chk.Table
	q.alpha.Set(chk.Alpha)
	q.epsilon.Set(chk.Epsilon)
	return nil
}
