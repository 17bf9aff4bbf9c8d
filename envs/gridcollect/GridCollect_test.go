package gridcollect

import (
	"testing"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	env, err := NewEnv(3, 3, 2, 50, 13)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func TestStartPlacesAgentAtOrigin(t *testing.T) {
	env := newTestEnv(t)
	obs, err := env.Start()
	if err != nil {
		t.Fatal(err)
	}

	o := obs.(*Observation)
	if o.AgentX != 0 || o.AgentY != 0 {
		t.Errorf("expected agent at (0, 0), got (%v, %v)", o.AgentX, o.AgentY)
	}
	if o.Items[0] {
		t.Error("start cell must not hold an item")
	}
	if o.Remaining != 2 {
		t.Errorf("expected 2 items, got %v", o.Remaining)
	}
}

func TestCollectingEveryItemEndsTheEpisode(t *testing.T) {
	env, err := NewEnv(2, 2, 3, 50, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Start(); err != nil {
		t.Fatal(err)
	}

	// Every non-origin cell of a 2x2 grid holds an item; a lap around
	// the grid collects all three
	total := 0.0
	var done bool
	for _, action := range []int{MoveRight, MoveDown, MoveLeft} {
		var reward float64
		_, reward, done, err = env.Step(action)
		if err != nil {
			t.Fatal(err)
		}
		total += reward
	}
	if total != 3.0 {
		t.Errorf("expected total reward 3, got %v", total)
	}
	if !done {
		t.Error("expected episode end after collecting every item")
	}
}

func TestStepLimitEndsTheEpisode(t *testing.T) {
	env, err := NewEnv(3, 3, 1, 2, 99)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Start(); err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := env.Step(MoveRight); err != nil {
		t.Fatal(err)
	}
	_, _, done, err := env.Step(MoveLeft)
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("expected episode end at the step limit")
	}
}

func TestStepRejectsOffGridMoves(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Start(); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := env.Step(MoveUp); err == nil {
		t.Error("expected error moving up from the top row")
	}
}

func TestWrapperExcludesEdges(t *testing.T) {
	w := NewWrapper()

	origin := &Observation{Width: 3, Height: 3}
	excluded := w.Excluded(origin)
	if len(excluded) != 2 {
		t.Fatalf("expected 2 exclusions at the origin, got %v", excluded)
	}
	for _, a := range excluded {
		if a != MoveUp && a != MoveLeft {
			t.Errorf("unexpected exclusion %v at the origin", a)
		}
	}

	center := &Observation{Width: 3, Height: 3, AgentX: 1, AgentY: 1}
	if excluded := w.Excluded(center); excluded != nil {
		t.Errorf("expected no exclusions at the center, got %v", excluded)
	}
}

func TestBuilderVector(t *testing.T) {
	b := NewBuilder(3, 3)
	if b.Size() != 11 {
		t.Fatalf("expected size 11, got %v", b.Size())
	}

	o := &Observation{
		Width: 3, Height: 3,
		AgentX: 2, AgentY: 1,
		Items: make([]bool, 9),
	}
	o.Items[4] = true

	state := b.Build(o)
	if state[0] != 1.0 || state[1] != 0.5 {
		t.Errorf("wrong normalized coordinates (%v, %v)", state[0], state[1])
	}
	for i := 0; i < 9; i++ {
		want := 0.0
		if i == 4 {
			want = 1.0
		}
		if state[2+i] != want {
			t.Errorf("wrong bitmap entry %v: %v", i, state[2+i])
		}
	}
}

func TestCollectRewardTracksDeltas(t *testing.T) {
	rb := NewCollectReward(3)

	obs := func(remaining int) *Observation {
		return &Observation{Width: 3, Height: 3, Remaining: remaining}
	}

	// First step collects one item, second collects none, third two
	if got := rb.Reward(obs(2), 0, false); got != 1 {
		t.Errorf("expected reward 1 on first pickup, got %v", got)
	}
	if got := rb.Reward(obs(2), 0, false); got != 0 {
		t.Errorf("expected reward 0 without pickups, got %v", got)
	}
	if got := rb.Reward(obs(0), 0, true); got != 2 {
		t.Errorf("expected reward 2 for a double pickup, got %v", got)
	}

	// A new episode starts from the full scatter again
	rb.Reset()
	if got := rb.Reward(obs(3), 0, false); got != 0 {
		t.Errorf("expected reward 0 after reset, got %v", got)
	}
}

func TestResetScattersFreshItems(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Start(); err != nil {
		t.Fatal(err)
	}
	obs, err := env.Reset()
	if err != nil {
		t.Fatal(err)
	}

	o := obs.(*Observation)
	if o.Remaining != 2 || o.Steps != 0 {
		t.Errorf("expected a fresh episode, got remaining %v steps %v",
			o.Remaining, o.Steps)
	}
}
