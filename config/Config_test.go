package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "github.com/thuthu-c/urnai-tools/backend/linear"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultConfigValidates(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadMergesPartialFile(t *testing.T) {
	path := writeFile(t, `
model:
  kind: qtable
training:
  episodes: 5
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "qtable", c.Model.Kind)
	assert.Equal(t, 5, c.Training.Episodes)

	// Untouched keys keep their defaults
	assert.Equal(t, DefaultConfig().Environment, c.Environment)
	assert.Equal(t, DefaultConfig().Model.Gamma, c.Model.Gamma)
}

func TestLoadEpsilonAndMemoryKeys(t *testing.T) {
	path := writeFile(t, `
model:
  use_memory: false
  epsilon_linear_decay: true
  per_episode_epsilon_decay: true
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.False(t, c.Model.UseMemory)
	assert.True(t, c.Model.EpsilonLinearDecay)
	assert.True(t, c.Model.PerEpisodeEpsilonDecay)
	assert.True(t, DefaultConfig().Model.UseMemory)

	// The no-memory path must be reachable end to end
	c.Model.Backend = "linear"
	c.Training.ShowProgress = false
	_, _, err = c.Build(zap.NewNop())
	require.NoError(t, err)
}

func TestLoadRejectsUnknownKinds(t *testing.T) {
	_, err := Load(writeFile(t, "model:\n  kind: sarsa\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "reward:\n  kind: shaped\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestBuildQTable(t *testing.T) {
	c := DefaultConfig()
	c.Model.Kind = "qtable"
	c.Training.ShowProgress = false

	tr, agent, err := c.Build(zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, tr)
	assert.NotNil(t, agent.Model())
}

func TestBuildDQLWithLinearBackend(t *testing.T) {
	c := DefaultConfig()
	c.Model.Backend = "linear"
	c.Training.ShowProgress = false

	tr, agent, err := c.Build(zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, tr)
	assert.NotNil(t, agent.Model())
}

func TestBuildRewardKinds(t *testing.T) {
	for _, kind := range []string{"pure", "sparse", "collect"} {
		c := DefaultConfig()
		c.Model.Kind = "qtable"
		c.Reward.Kind = kind
		c.Reward.Amount = 10

		_, _, err := c.Build(zap.NewNop())
		require.NoError(t, err, kind)
	}
}
