package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var oasisCmd = &cobra.Command{
	Use:   "oasis <file>",
	Short: "Classify the dementia group of the OASIS dataset with a random forest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		result, err := p.Oasis(args[0])
		if err != nil {
			return err
		}
		log.Info().
			Int("rows", result.Rows).
			Float64("accuracy", result.Evaluation.Accuracy).
			Msg("oasis run complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(oasisCmd)
}
