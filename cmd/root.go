// Package cmd implements the command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thuthu-c/urnai-tools/config"

	// Registered value-function backends
	_ "github.com/thuthu-c/urnai-tools/backend/linear"
	_ "github.com/thuthu-c/urnai-tools/backend/mlp"
)

var (
	configPath string
	seed       int64
)

var rootCmd = &cobra.Command{
	Use:           "urnai",
	Short:         "Train and evaluate reinforcement learning agents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a yaml configuration file")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0,
		"override the configured random seed")
	rootCmd.AddCommand(trainCmd, playCmd)
}

// Execute runs the command line interface.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the run configuration from the flags.
func loadConfig() (*config.Config, error) {
	c := config.DefaultConfig()
	if configPath != "" {
		var err error
		if c, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	if seed != 0 {
		c.Seed = seed
	}
	return c, nil
}

// newLogger builds the process logger.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("cmd: could not build logger: %v", err)
	}
	return logger, nil
}
