package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var wineK int

var wineCmd = &cobra.Command{
	Use:   "wine <file>",
	Short: "Cluster the wine quality dataset and render the elbow curve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		result, err := p.Wine(args[0], wineK)
		if err != nil {
			return err
		}
		log.Info().
			Int("rows", result.Rows).
			Int("k", result.Chosen.K).
			Float64("inertia", result.Chosen.Inertia).
			Msg("wine run complete")
		return nil
	},
}

func init() {
	wineCmd.Flags().IntVar(&wineK, "k", 3, "cluster count for the scatter and hierarchy views")
	rootCmd.AddCommand(wineCmd)
}
