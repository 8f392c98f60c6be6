// Package report renders the outcome of a run: chart images on disk
// and summary tables on the console.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"

	"github.com/edalab/edalab/internal/classify"
	"github.com/edalab/edalab/internal/describe"
)

// Reporter writes chart files under one output directory and tables to
// a console writer.
type Reporter struct {
	outDir  string
	console io.Writer
}

// New creates a reporter rooted at outDir.
func New(outDir string, console io.Writer) (*Reporter, error) {
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not create output dir %s: %w", outDir, err)
	}
	if console == nil {
		console = os.Stdout
	}
	return &Reporter{outDir: outDir, console: console}, nil
}

// OutDir returns the directory charts are written to.
func (r *Reporter) OutDir() string {
	return r.outDir
}

func (r *Reporter) path(name string) string {
	return filepath.Join(r.outDir, name)
}

// ElbowConsole prints the inertia curve as an ascii chart, the quick
// look before opening the rendered image.
func (r *Reporter) ElbowConsole(inertias []float64) {
	if len(inertias) == 0 {
		return
	}
	chart := asciigraph.Plot(inertias,
		asciigraph.Height(12),
		asciigraph.Caption("total inertia by cluster count (k=1 left)"),
	)
	fmt.Fprintln(r.console, chart)
}

// SummaryTable prints one row of descriptive statistics per column.
func (r *Reporter) SummaryTable(names []string, summaries []describe.Summary) {
	table := tablewriter.NewWriter(r.console)
	table.SetHeader([]string{"column", "count", "mean", "stdev", "min", "median", "max", "skew"})
	for i, s := range summaries {
		table.Append([]string{
			names[i],
			strconv.Itoa(s.Count),
			fmt.Sprintf("%.3f", s.Mean),
			fmt.Sprintf("%.3f", s.StDev),
			fmt.Sprintf("%.3f", s.Min),
			fmt.Sprintf("%.3f", s.Median),
			fmt.Sprintf("%.3f", s.Max),
			fmt.Sprintf("%.3f", s.Skewness),
		})
	}
	table.Render()
}

// ConfusionTable prints the held-out confusion counts and accuracy.
func (r *Reporter) ConfusionTable(eval classify.Evaluation) {
	header := append([]string{"true \\ predicted"}, eval.Classes...)
	table := tablewriter.NewWriter(r.console)
	table.SetHeader(header)
	for _, truth := range eval.Classes {
		row := []string{truth}
		for _, predicted := range eval.Classes {
			row = append(row, strconv.Itoa(eval.Confusion[truth][predicted]))
		}
		table.Append(row)
	}
	table.Render()
	fmt.Fprintf(r.console, "%s accuracy: %.4f (%d/%d)\n", eval.Model, eval.Accuracy, eval.Correct, eval.Total)
}

// ClusterSizes prints the member count and dispersion of each cluster.
func (r *Reporter) ClusterSizes(labels []int, clusterSS []float64) {
	counts := make([]int, len(clusterSS))
	for _, l := range labels {
		counts[l]++
	}
	table := tablewriter.NewWriter(r.console)
	table.SetHeader([]string{"cluster", "size", "within-ss"})
	for c := range clusterSS {
		table.Append([]string{
			strconv.Itoa(c),
			strconv.Itoa(counts[c]),
			fmt.Sprintf("%.3f", clusterSS[c]),
		})
	}
	table.Render()
}

func (r *Reporter) saved(kind, path string) {
	log.Info().Str("kind", kind).Str("path", path).Msg("wrote chart")
}
