package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var sleepCmd = &cobra.Command{
	Use:   "sleep <file>",
	Short: "Classify the sleep disorder of the sleep health dataset with knn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		result, err := p.Sleep(args[0])
		if err != nil {
			return err
		}
		log.Info().
			Int("rows", result.Rows).
			Float64("accuracy", result.Evaluation.Accuracy).
			Msg("sleep run complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sleepCmd)
}
