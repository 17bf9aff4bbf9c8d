// Package config loads run configuration from yaml and assembles the
// environment, agent, and trainer it describes. Values omitted from
// the file keep their defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment configures the grid collecting task.
type Environment struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	Items    int `yaml:"items"`
	MaxSteps int `yaml:"max_steps"`
}

// Model selects and parameterizes the learning algorithm.
type Model struct {
	// Kind selects the algorithm, "dql" or "qtable".
	Kind string `yaml:"kind"`

	// Backend is the value-function registry tag for dql.
	Backend string `yaml:"backend"`

	Gamma        float64 `yaml:"gamma"`
	EpsilonStart float64 `yaml:"epsilon_start"`
	EpsilonMin   float64 `yaml:"epsilon_min"`
	EpsilonDecay float64 `yaml:"epsilon_decay"`

	// EpsilonLinearDecay subtracts epsilon_decay per decay event
	// instead of multiplying by it.
	EpsilonLinearDecay bool `yaml:"epsilon_linear_decay"`

	// PerEpisodeEpsilonDecay decays epsilon at episode boundaries
	// instead of on every learn call.
	PerEpisodeEpsilonDecay bool `yaml:"per_episode_epsilon_decay"`

	LearningRate float64 `yaml:"learning_rate"`
	HiddenSizes  []int   `yaml:"hidden_sizes"`

	// UseMemory enables experience replay for dql; disabling it
	// updates on every transition as it arrives.
	UseMemory     bool `yaml:"use_memory"`
	MemoryMaxLen  int  `yaml:"memory_max_len"`
	BatchSize     int  `yaml:"batch_size"`
	MinMemorySize int  `yaml:"min_memory_size"`

	// AlphaStart, AlphaMin and AlphaDecay parameterize the qtable step
	// size schedule.
	AlphaStart float64 `yaml:"alpha_start"`
	AlphaMin   float64 `yaml:"alpha_min"`
	AlphaDecay float64 `yaml:"alpha_decay"`
}

// Reward selects the reward shaping, "pure", "sparse", or "collect".
type Reward struct {
	Kind   string  `yaml:"kind"`
	Amount float64 `yaml:"amount"`
}

// Training configures the run itself.
type Training struct {
	Episodes       int    `yaml:"episodes"`
	MaxSteps       int    `yaml:"max_steps"`
	SaveEvery      int    `yaml:"save_every"`
	CheckpointPath string `yaml:"checkpoint_path"`
	ShowProgress   bool   `yaml:"show_progress"`
}

// Config is the root of the yaml file.
type Config struct {
	Seed        int64       `yaml:"seed"`
	Environment Environment `yaml:"environment"`
	Model       Model       `yaml:"model"`
	Reward      Reward      `yaml:"reward"`
	Training    Training    `yaml:"training"`
}

// DefaultConfig returns a runnable configuration: a dql learner with an
// mlp backend on a 5x5 grid.
func DefaultConfig() *Config {
	return &Config{
		Seed: 1,
		Environment: Environment{
			Width:    5,
			Height:   5,
			Items:    3,
			MaxSteps: 200,
		},
		Model: Model{
			Kind:          "dql",
			Backend:       "mlp",
			Gamma:         0.99,
			EpsilonStart:  1.0,
			EpsilonMin:    0.005,
			EpsilonDecay:  0.99995,
			LearningRate:  0.001,
			HiddenSizes:   []int{50, 50},
			UseMemory:     true,
			MemoryMaxLen:  50000,
			BatchSize:     32,
			MinMemorySize: 2000,
			AlphaStart:    0.1,
			AlphaMin:      0.01,
			AlphaDecay:    0.995,
		},
		Reward: Reward{Kind: "pure"},
		Training: Training{
			Episodes:       1000,
			SaveEvery:      100,
			CheckpointPath: "urnai-model.bin",
			ShowProgress:   true,
		},
	}
}

// Load reads a yaml file over the defaults, so partial files only
// override the keys they mention.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: could not parse %v: %v", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the cross-cutting selections; the component configs
// validate their own numeric ranges at construction.
func (c *Config) Validate() error {
	switch c.Model.Kind {
	case "dql", "qtable":
	default:
		return fmt.Errorf("config: unknown model kind %q", c.Model.Kind)
	}
	switch c.Reward.Kind {
	case "pure", "sparse", "collect":
	default:
		return fmt.Errorf("config: unknown reward kind %q", c.Reward.Kind)
	}
	return nil
}
