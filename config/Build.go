package config

import (
	"fmt"

	"github.com/thuthu-c/urnai-tools/agents"
	"github.com/thuthu-c/urnai-tools/agents/rewards"
	"github.com/thuthu-c/urnai-tools/envs/gridcollect"
	"github.com/thuthu-c/urnai-tools/models"
	"github.com/thuthu-c/urnai-tools/models/dql"
	"github.com/thuthu-c/urnai-tools/models/qtable"
	"github.com/thuthu-c/urnai-tools/trainer"
	"go.uber.org/zap"
)

// Build assembles the environment, agent, and trainer the configuration
// describes.
func (c *Config) Build(logger *zap.Logger) (*trainer.Trainer, *agents.Agent, error) {
	env, err := gridcollect.NewEnv(c.Environment.Width, c.Environment.Height,
		c.Environment.Items, c.Environment.MaxSteps, c.Seed)
	if err != nil {
		return nil, nil, err
	}

	wrapper := gridcollect.NewWrapper()
	builder := gridcollect.NewBuilder(c.Environment.Width, c.Environment.Height)

	var model models.Learner
	switch c.Model.Kind {
	case "dql":
		model, err = dql.New(wrapper, builder, dql.Config{
			Gamma:              c.Model.Gamma,
			EpsilonStart:       c.Model.EpsilonStart,
			EpsilonMin:         c.Model.EpsilonMin,
			EpsilonDecay:       c.Model.EpsilonDecay,
			EpsilonLinearDecay: c.Model.EpsilonLinearDecay,
			DecayPerEpisode:    c.Model.PerEpisodeEpsilonDecay,
			UseMemory:          c.Model.UseMemory,
			MemoryMaxLen:       c.Model.MemoryMaxLen,
			BatchSize:          c.Model.BatchSize,
			MinMemorySize:      c.Model.MinMemorySize,
			Backend:            c.Model.Backend,
			LearningRate:       c.Model.LearningRate,
			HiddenSizes:        c.Model.HiddenSizes,
		}, c.Seed)
	case "qtable":
		model, err = qtable.New(wrapper, builder, qtable.Config{
			Gamma:        c.Model.Gamma,
			AlphaStart:   c.Model.AlphaStart,
			AlphaMin:     c.Model.AlphaMin,
			AlphaDecay:   c.Model.AlphaDecay,
			EpsilonStart: c.Model.EpsilonStart,
			EpsilonMin:   c.Model.EpsilonMin,
			EpsilonDecay: c.Model.EpsilonDecay,
		}, c.Seed)
	default:
		return nil, nil, fmt.Errorf("config: unknown model kind %q",
			c.Model.Kind)
	}
	if err != nil {
		return nil, nil, err
	}

	var rewarder rewards.Builder
	switch c.Reward.Kind {
	case "pure":
		rewarder = rewards.Pure{}
	case "sparse":
		rewarder = rewards.Sparse{Amount: c.Reward.Amount}
	case "collect":
		rewarder = gridcollect.NewCollectReward(c.Environment.Items)
	default:
		return nil, nil, fmt.Errorf("config: unknown reward kind %q",
			c.Reward.Kind)
	}

	agent := agents.New(model, wrapper, builder, rewarder)
	tr, err := trainer.New(env, agent, logger, trainer.Config{
		Episodes:       c.Training.Episodes,
		MaxSteps:       c.Training.MaxSteps,
		SaveEvery:      c.Training.SaveEvery,
		CheckpointPath: c.Training.CheckpointPath,
		ShowProgress:   c.Training.ShowProgress,
	})
	if err != nil {
		return nil, nil, err
	}
	return tr, agent, nil
}
