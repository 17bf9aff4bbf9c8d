package trainer

import (
	"path/filepath"
	"testing"

	"github.com/thuthu-c/urnai-tools/agents"
	"github.com/thuthu-c/urnai-tools/agents/rewards"
	"github.com/thuthu-c/urnai-tools/envs"
	"go.uber.org/zap"
)

// fakeEnv pays reward 1 per step and ends each episode after length
// steps.
type fakeEnv struct {
	length int

	steps  int
	resets int
	closed bool
}

func (e *fakeEnv) Start() (envs.Observation, error) {
	return e.steps, nil
}

func (e *fakeEnv) Step(int) (envs.Observation, float64, bool, error) {
	e.steps++
	return e.steps, 1.0, e.steps%e.length == 0, nil
}

func (e *fakeEnv) Reset() (envs.Observation, error) {
	e.resets++
	return e.steps, nil
}

func (e *fakeEnv) Close() error {
	e.closed = true
	return nil
}

type stubModel struct {
	learned int
	ended   int
	saved   []string
}

func (m *stubModel) ChooseAction([]float64, []int, bool) (int, error) {
	return 0, nil
}

func (m *stubModel) Predict([]float64, []int) (int, error) { return 0, nil }

func (m *stubModel) Learn([]float64, int, float64, []float64, bool) error {
	m.learned++
	return nil
}

func (m *stubModel) EndEpisode() { m.ended++ }

func (m *stubModel) Save(path string) error {
	m.saved = append(m.saved, path)
	return nil
}

func (m *stubModel) Load(string) error { return nil }

type fakeWrapper struct{}

func (fakeWrapper) Actions() []int                    { return []int{0} }
func (fakeWrapper) Size() int                         { return 1 }
func (fakeWrapper) Excluded(envs.Observation) []int   { return nil }
func (fakeWrapper) Apply(a int, _ envs.Observation) int { return a }

type fakeBuilder struct{}

func (fakeBuilder) Build(obs envs.Observation) []float64 {
	return []float64{float64(obs.(int))}
}

func (fakeBuilder) Size() int { return 1 }

func newTestTrainer(t *testing.T, env *fakeEnv, model *stubModel,
	cfg Config) *Trainer {
	t.Helper()
	agent := agents.New(model, fakeWrapper{}, fakeBuilder{}, rewards.Pure{})
	tr, err := New(env, agent, zap.NewNop(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestTrainRecordsEveryEpisode(t *testing.T) {
	env := &fakeEnv{length: 4}
	model := &stubModel{}
	tr := newTestTrainer(t, env, model, Config{Episodes: 3})

	tracker, err := tr.Train()
	if err != nil {
		t.Fatal(err)
	}
	if tracker.Episodes() != 3 {
		t.Fatalf("expected 3 recorded episodes, got %v", tracker.Episodes())
	}
	for ep, ret := range tracker.Returns {
		if ret != 4.0 {
			t.Errorf("episode %v return %v, want 4", ep, ret)
		}
	}
	if model.ended != 3 {
		t.Errorf("expected 3 episode ends, got %v", model.ended)
	}
	if model.learned != 12 {
		t.Errorf("expected 12 learned transitions, got %v", model.learned)
	}
	if env.resets != 2 {
		t.Errorf("expected 2 resets between 3 episodes, got %v", env.resets)
	}
}

func TestMaxStepsCutsEpisodes(t *testing.T) {
	env := &fakeEnv{length: 1000}
	tr := newTestTrainer(t, env, &stubModel{}, Config{Episodes: 2, MaxSteps: 5})

	tracker, err := tr.Train()
	if err != nil {
		t.Fatal(err)
	}
	for ep, steps := range tracker.Steps {
		if steps != 5 {
			t.Errorf("episode %v ran %v steps, want 5", ep, steps)
		}
	}
}

func TestTrainCheckpoints(t *testing.T) {
	env := &fakeEnv{length: 2}
	model := &stubModel{}
	path := filepath.Join(t.TempDir(), "model.bin")
	tr := newTestTrainer(t, env, model, Config{
		Episodes:       5,
		SaveEvery:      2,
		CheckpointPath: path,
	})

	if _, err := tr.Train(); err != nil {
		t.Fatal(err)
	}
	if len(model.saved) != 2 {
		t.Fatalf("expected 2 checkpoints over 5 episodes, got %v",
			len(model.saved))
	}
	for _, p := range model.saved {
		if p != path {
			t.Errorf("checkpoint written to %q, want %q", p, path)
		}
	}
}

func TestPlayNeverLearnsOrCheckpoints(t *testing.T) {
	env := &fakeEnv{length: 3}
	model := &stubModel{}
	tr := newTestTrainer(t, env, model, Config{
		Episodes:       1,
		SaveEvery:      1,
		CheckpointPath: "unused",
	})

	tracker, err := tr.Play(2)
	if err != nil {
		t.Fatal(err)
	}
	if tracker.Episodes() != 2 {
		t.Fatalf("expected 2 evaluation episodes, got %v", tracker.Episodes())
	}
	if model.learned != 0 {
		t.Errorf("evaluation learned %v transitions", model.learned)
	}
	if model.ended != 0 {
		t.Errorf("evaluation advanced per-episode schedules %v times",
			model.ended)
	}
	if len(model.saved) != 0 {
		t.Errorf("evaluation wrote %v checkpoints", len(model.saved))
	}
}

func TestCloseReleasesEnvironment(t *testing.T) {
	env := &fakeEnv{length: 1}
	tr := newTestTrainer(t, env, &stubModel{}, Config{Episodes: 1})

	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if !env.closed {
		t.Error("expected the environment to be closed")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Episodes: 0}).Validate(); err == nil {
		t.Error("expected error for zero episodes")
	}
	if err := (Config{Episodes: 1, SaveEvery: 5}).Validate(); err == nil {
		t.Error("expected error for checkpointing without a path")
	}
}

func TestTrackerMeanAndRoundTrip(t *testing.T) {
	tracker := NewTracker(4)
	for _, r := range []float64{1, 2, 3, 4} {
		tracker.Record(r, 10)
	}
	if got := tracker.MeanReturn(2); got != 3.5 {
		t.Errorf("expected mean 3.5 over the last 2, got %v", got)
	}
	if got := tracker.MeanReturn(100); got != 2.5 {
		t.Errorf("expected mean 2.5 over everything, got %v", got)
	}

	path := filepath.Join(t.TempDir(), "run.bin")
	if err := tracker.Save(path); err != nil {
		t.Fatal(err)
	}
	restored, err := LoadTracker(path)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Episodes() != 4 || restored.Returns[3] != 4 {
		t.Errorf("run data not restored: %+v", restored)
	}
}
