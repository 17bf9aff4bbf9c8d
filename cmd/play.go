package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var playEpisodes int

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Evaluate a trained model greedily, without learning",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if c.Training.CheckpointPath == "" {
			return fmt.Errorf("play: no checkpoint path configured")
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

		if err := agent.Model().Load(c.Training.CheckpointPath); err != nil {
			return err
		}

		tracker, err := tr.Play(playEpisodes)
		if err != nil {
			return err
		}
		logger.Info("evaluation complete",
			zap.Int("episodes", tracker.Episodes()),
			zap.Float64("meanReturn", tracker.MeanReturn(tracker.Episodes())),
		)
		return nil
	},
}

func init() {
	playCmd.Flags().IntVar(&playEpisodes, "episodes", 10,
		"number of evaluation episodes")
}
