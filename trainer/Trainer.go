// Package trainer runs agents against environments for a fixed number
// of episodes, tracking returns and checkpointing the model as it goes.
package trainer

import (
	"fmt"

	"github.com/gosuri/uilive"
	"github.com/thuthu-c/urnai-tools/agents"
	"github.com/thuthu-c/urnai-tools/envs"
	"go.uber.org/zap"
)

// window is the number of recent episodes averaged for progress output.
const window = 50

// Config controls a training or evaluation run.
type Config struct {
	// Episodes is the number of episodes to run.
	Episodes int

	// MaxSteps caps the steps of a single episode. Zero leaves episode
	// length to the environment.
	MaxSteps int

	// SaveEvery checkpoints the model every SaveEvery training
	// episodes. Zero disables checkpointing.
	SaveEvery int

	// CheckpointPath is where checkpoints are written.
	CheckpointPath string

	// ShowProgress enables the live per-episode terminal line.
	ShowProgress bool
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	if c.Episodes < 1 {
		return fmt.Errorf("trainer: episode count must be positive, got %v",
			c.Episodes)
	}
	if c.SaveEvery > 0 && c.CheckpointPath == "" {
		return fmt.Errorf("trainer: checkpointing enabled without a path")
	}
	return nil
}

// explorer is satisfied by models that expose their exploration rate,
// which the progress line then includes.
type explorer interface {
	Epsilon() float64
}

// Trainer owns one agent-environment pairing.
type Trainer struct {
	env   envs.Environment
	agent *agents.Agent
	log   *zap.Logger
	cfg   Config
}

// New returns a Trainer for the agent-environment pairing.
func New(env envs.Environment, agent *agents.Agent, logger *zap.Logger,
	cfg Config) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{env: env, agent: agent, log: logger, cfg: cfg}, nil
}

// Close releases the underlying environment. The Trainer owns the
// environment it was constructed with.
func (t *Trainer) Close() error {
	return t.env.Close()
}

// Train runs cfg.Episodes episodes of learning, checkpointing along the
// way, and returns the per-episode statistics.
func (t *Trainer) Train() (*Tracker, error) {
	return t.run(t.cfg.Episodes, false)
}

// Play runs episodes of greedy evaluation without learning or
// checkpointing.
func (t *Trainer) Play(episodes int) (*Tracker, error) {
	if episodes < 1 {
		return nil, fmt.Errorf("trainer: episode count must be positive, "+
			"got %v", episodes)
	}
	return t.run(episodes, true)
}

func (t *Trainer) run(episodes int, testing bool) (*Tracker, error) {
	obs, err := t.env.Start()
	if err != nil {
		return nil, fmt.Errorf("trainer: could not start environment: %v", err)
	}

	var progress *uilive.Writer
	if t.cfg.ShowProgress {
		progress = uilive.New()
		progress.Start()
		defer progress.Stop()
	}

	tracker := NewTracker(episodes)
	for ep := 0; ep < episodes; ep++ {
		if ep > 0 {
			if obs, err = t.env.Reset(); err != nil {
				return nil, fmt.Errorf("trainer: could not reset "+
					"environment: %v", err)
			}
		}

		episodeReturn, steps, err := t.episode(obs, testing)
		if err != nil {
			return nil, err
		}
		t.agent.EndEpisode(testing)
		tracker.Record(episodeReturn, steps)

		if progress != nil {
			t.report(progress, tracker, ep, episodes)
		}

		if !testing && t.cfg.SaveEvery > 0 && (ep+1)%t.cfg.SaveEvery == 0 {
			if err := t.agent.Model().Save(t.cfg.CheckpointPath); err != nil {
				return nil, fmt.Errorf("trainer: checkpoint failed: %v", err)
			}
			t.log.Info("checkpoint written",
				zap.String("path", t.cfg.CheckpointPath),
				zap.Int("episode", ep+1),
			)
		}
	}

	t.log.Info("run complete",
		zap.Int("episodes", episodes),
		zap.Bool("testing", testing),
		zap.Float64("meanReturn", tracker.MeanReturn(window)),
	)
	return tracker, nil
}

// episode plays out one episode and returns its shaped return and step
// count.
func (t *Trainer) episode(obs envs.Observation, testing bool) (float64, int, error) {
	episodeReturn := 0.0
	steps := 0
	for t.cfg.MaxSteps == 0 || steps < t.cfg.MaxSteps {
		action, err := t.agent.Act(obs, testing)
		if err != nil {
			return 0, 0, fmt.Errorf("trainer: %v", err)
		}

		next, raw, done, err := t.env.Step(action)
		if err != nil {
			return 0, 0, fmt.Errorf("trainer: %v", err)
		}

		shaped, err := t.agent.Observe(next, raw, done, testing)
		if err != nil {
			return 0, 0, fmt.Errorf("trainer: %v", err)
		}

		episodeReturn += shaped
		steps++
		obs = next
		if done {
			break
		}
	}
	return episodeReturn, steps, nil
}

// report rewrites the live progress line for a finished episode.
func (t *Trainer) report(progress *uilive.Writer, tracker *Tracker,
	ep, episodes int) {
	line := fmt.Sprintf("episode %v/%v\treturn %.2f\tmean(%v) %.2f",
		ep+1, episodes, tracker.Returns[ep], window,
		tracker.MeanReturn(window))
	if e, ok := t.agent.Model().(explorer); ok {
		line += fmt.Sprintf("\tepsilon %.4f", e.Epsilon())
	}
	fmt.Fprintln(progress, line)
}
