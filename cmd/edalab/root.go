package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cfgpkg "github.com/edalab/edalab/internal/config"
	"github.com/edalab/edalab/internal/metrics"
	"github.com/edalab/edalab/internal/pipeline"
	"github.com/edalab/edalab/internal/report"
	"github.com/edalab/edalab/internal/storage"
	jsonblob "github.com/edalab/edalab/internal/storage/file/json"
)

var (
	cfgFile     string
	outDir      string
	metricsAddr string
	noArchive   bool

	cfg *cfgpkg.Config
)

var rootCmd = &cobra.Command{
	Use:   "edalab",
	Short: "Exploratory analysis runs over the wine, oasis and sleep datasets",
	Long: `edalab runs batch exploratory analyses: each dataset goes through
load, clean, prepare, fit and report, writing charts to the output
directory and summary tables to the console.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "chart output directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "expose prometheus metrics on this address")
	rootCmd.PersistentFlags().BoolVar(&noArchive, "no-archive", false, "skip archiving run results")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil && c.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}
	if outDir != "" {
		c.OutDir = outDir
	}
	if metricsAddr != "" {
		c.MetricsAddr = metricsAddr
	}
	cfg = c
}

// newPipeline wires a pipeline from the resolved configuration.
func newPipeline() (*pipeline.Pipeline, error) {
	reporter, err := report.New(cfg.OutDir, os.Stdout)
	if err != nil {
		return nil, err
	}

	var archive storage.Persistence = storage.NewVoidStorage()
	if !noArchive {
		archive = jsonblob.NewJsonBlob("runs").WithPath(cfg.ArchiveDir)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
			if err := http.ListenAndServe(cfg.MetricsAddr, metrics.Handler()); err != nil {
				log.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	return pipeline.New(cfg, reporter, archive), nil
}
