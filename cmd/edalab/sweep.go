package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var sweepColumns []string

var sweepCmd = &cobra.Command{
	Use:   "sweep <file>",
	Short: "Run the elbow sweep over the numeric columns of any csv",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		result, err := p.SweepCSV(args[0], sweepColumns)
		if err != nil {
			return err
		}
		log.Info().
			Int("rows", result.Rows).
			Int("max_k", len(result.Inertias)).
			Msg("sweep complete")
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringSliceVar(&sweepColumns, "columns", nil, "numeric columns to sweep over")
	_ = sweepCmd.MarkFlagRequired("columns")
	rootCmd.AddCommand(sweepCmd)
}
