// Package agents connects a learning model to an environment through
// an action wrapper, a state builder, and a reward builder. The agent
// owns the bookkeeping of the previous state and action so that models
// only ever see complete transitions.
package agents

import (
	"github.com/thuthu-c/urnai-tools/agents/actions"
	"github.com/thuthu-c/urnai-tools/agents/rewards"
	"github.com/thuthu-c/urnai-tools/agents/states"
	"github.com/thuthu-c/urnai-tools/envs"
	"github.com/thuthu-c/urnai-tools/models"
)

// Agent drives a Learner over one environment.
type Agent struct {
	model   models.Learner
	wrapper actions.Wrapper
	builder states.Builder
	rewards rewards.Builder

	prevState  []float64
	prevAction int
	hasPrev    bool
}

// New returns an Agent wiring the model to an environment's action
// wrapper, state builder, and reward builder.
func New(model models.Learner, aw actions.Wrapper, sb states.Builder,
	rb rewards.Builder) *Agent {
	return &Agent{
		model:   model,
		wrapper: aw,
		builder: sb,
		rewards: rb,
	}
}

// Model returns the wrapped learner, for checkpointing.
func (a *Agent) Model() models.Learner {
	return a.model
}

// Act chooses an action for the observation and returns the concrete
// environment action to submit. The chosen abstract action and the
// built state are retained as the pending transition start.
func (a *Agent) Act(obs envs.Observation, testing bool) (int, error) {
	state := a.builder.Build(obs)
	action, err := a.model.ChooseAction(state, a.wrapper.Excluded(obs), testing)
	if err != nil {
		return 0, err
	}

	a.prevState = state
	a.prevAction = action
	a.hasPrev = true
	return a.wrapper.Apply(action, obs), nil
}

// Observe completes the pending transition with the step outcome,
// feeds it to the model unless testing, and returns the shaped reward.
// Calling Observe without a preceding Act is a no-op.
func (a *Agent) Observe(obs envs.Observation, raw float64, done,
	testing bool) (float64, error) {
	shaped := a.rewards.Reward(obs, raw, done)
	if !a.hasPrev {
		return shaped, nil
	}

	if !testing {
		next := a.builder.Build(obs)
		err := a.model.Learn(a.prevState, a.prevAction, shaped, next, done)
		if err != nil {
			return 0, err
		}
	}
	a.hasPrev = false
	return shaped, nil
}

// EndEpisode resets per-episode state in the reward builder and, when
// learning, advances the model's per-episode schedules. Evaluation
// episodes leave the model untouched.
func (a *Agent) EndEpisode(testing bool) {
	a.prevState = nil
	a.hasPrev = false
	a.rewards.Reset()
	if !testing {
		a.model.EndEpisode()
	}
}
