package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train an agent and checkpoint the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		tr, agent, err := c.Build(logger)
		if err != nil {
			return err
		}
		defer tr.Close()

		tracker, err := tr.Train()
		if err != nil {
			return err
		}

		if path := c.Training.CheckpointPath; path != "" {
			if err := agent.Model().Save(path); err != nil {
				return err
			}
			if err := tracker.Save(path + ".run"); err != nil {
				return err
			}
			logger.Info("final model written", zap.String("path", path))
		}
		return nil
	},
}
