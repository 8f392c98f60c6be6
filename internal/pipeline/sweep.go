package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/edalab/edalab/internal/cluster"
	"github.com/edalab/edalab/internal/frame"
	"github.com/edalab/edalab/internal/metrics"
	"github.com/edalab/edalab/internal/scale"
	"github.com/edalab/edalab/internal/storage"
)

// SweepResult is the outcome of a generic elbow sweep.
type SweepResult struct {
	Rows     int
	Columns  []string
	Sweep    []cluster.Partition
	Inertias []float64
}

// SweepCSV runs the elbow sweep on any delimited file: the named
// columns are cleaned, min-max scaled and swept over [1, MaxK].
// Column names are matched after normalization, so "Sleep Duration"
// and "sleep_duration" both work.
func (p *Pipeline) SweepCSV(path string, columns []string) (SweepResult, error) {
	var result SweepResult
	if len(columns) == 0 {
		return result, &StageError{Stage: StageLoad,
			Err: fmt.Errorf("no columns requested: %w", frame.SchemaErr)}
	}

	decls := make([]frame.Column, len(columns))
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = frame.NormalizeName(c)
		decls[i] = frame.Column{Name: names[i], Kind: frame.Numeric, Required: true}
	}
	schema := frame.Schema{Dataset: "sweep", Columns: decls}

	var raw, cleaned frame.Table
	var x *mat.Dense

	if err := p.stage("sweep", StageLoad, func() error {
		var err error
		raw, err = frame.Load(path, schema)
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("sweep", StageClean, func() error {
		var err error
		cleaned, err = frame.Clean(raw)
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("sweep", StagePrepare, func() error {
		m, err := cleaned.Matrix(names...)
		if err != nil {
			return err
		}
		reduced, kept := scale.DropConstant(m)
		if reduced == nil {
			return fmt.Errorf("all columns are constant: %w", frame.DataQualityErr)
		}
		result.Columns = make([]string, len(kept))
		for i, j := range kept {
			result.Columns[i] = names[j]
		}
		x, err = scale.NewMinMax().FitTransform(reduced)
		return err
	}); err != nil {
		return result, err
	}

	maxK := p.cfg.Sweep.MaxK
	if rows := cleaned.Rows(); maxK > rows {
		maxK = rows
	}

	if err := p.stage("sweep", StageFit, func() error {
		sweep, err := cluster.Sweep(x, maxK, cluster.Config{
			MaxIterations: p.cfg.Sweep.Iterations,
			Tolerance:     p.cfg.Sweep.Tolerance,
			Seed:          p.cfg.Sweep.Seed,
			Restarts:      p.cfg.Sweep.Restarts,
			Workers:       p.cfg.Sweep.Workers,
		})
		if err != nil {
			return err
		}
		result.Sweep = sweep
		result.Inertias = cluster.Inertias(sweep)
		metrics.Observer.Fit("sweep", "kmeans")
		return nil
	}); err != nil {
		return result, err
	}

	if err := p.stage("sweep", StageReport, func() error {
		p.reporter.ElbowConsole(result.Inertias)
		if _, err := p.reporter.ElbowChart(result.Inertias, "sweep_elbow.png"); err != nil {
			return err
		}
		return p.archive.Store(storage.Key{Dataset: "sweep", Label: "sweep"}, result.Sweep)
	}); err != nil {
		return result, err
	}

	result.Rows = cleaned.Rows()
	return result, nil
}
