package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/edalab/edalab/internal/cluster"
	"github.com/edalab/edalab/internal/describe"
	"github.com/edalab/edalab/internal/frame"
	"github.com/edalab/edalab/internal/metrics"
	"github.com/edalab/edalab/internal/scale"
	"github.com/edalab/edalab/internal/storage"
)

// WineSchema declares the physicochemical wine quality table.
func WineSchema() frame.Schema {
	numeric := func(name string) frame.Column {
		return frame.Column{Name: name, Kind: frame.Numeric, Required: true}
	}
	return frame.Schema{
		Dataset: "wine",
		Columns: []frame.Column{
			numeric("fixed_acidity"),
			numeric("volatile_acidity"),
			numeric("citric_acid"),
			numeric("residual_sugar"),
			numeric("chlorides"),
			numeric("free_sulfur_dioxide"),
			numeric("total_sulfur_dioxide"),
			numeric("density"),
			numeric("ph"),
			numeric("sulphates"),
			numeric("alcohol"),
			numeric("quality"),
		},
	}
}

// WineResult is the outcome of a wine clustering run.
type WineResult struct {
	Rows      int
	Columns   []string
	Sweep     []cluster.Partition
	Chosen    cluster.Partition
	Hierarchy cluster.Partition
	// AlcoholQualityRho is the Spearman rank correlation between the
	// alcohol and quality columns, with its two-tailed p-value.
	AlcoholQualityRho float64
	AlcoholQualityP   float64
}

// Wine runs the wine quality analysis: descriptive statistics over the
// physicochemical columns, a k-means sweep for the elbow curve and an
// agglomerative view cut at the chosen cluster count.
func (p *Pipeline) Wine(path string, chosenK int) (WineResult, error) {
	var result WineResult
	var raw, cleaned frame.Table
	var x *mat.Dense
	var names []string

	if err := p.stage("wine", StageLoad, func() error {
		var err error
		raw, err = frame.Load(path, WineSchema())
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("wine", StageClean, func() error {
		var err error
		cleaned, err = frame.Clean(raw)
		return err
	}); err != nil {
		return result, err
	}

	if err := p.stage("wine", StagePrepare, func() error {
		all := cleaned.NumericNames()
		m, err := cleaned.Matrix(all...)
		if err != nil {
			return err
		}
		reduced, kept := scale.DropConstant(m)
		if reduced == nil {
			return fmt.Errorf("all columns are constant: %w", frame.DataQualityErr)
		}
		if len(kept) < len(all) {
			log.Info().Int("dropped", len(all)-len(kept)).Msg("dropped zero-variance columns")
		}
		names = make([]string, len(kept))
		for i, j := range kept {
			names[i] = all[j]
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
	if chosenK < 1 || chosenK > maxK {
		return result, &StageError{Stage: StageFit,
			Err: fmt.Errorf("chosen k=%d outside sweep range [1,%d]: %w", chosenK, maxK, cluster.ConfigurationErr)}
	}

	if err := p.stage("wine", StageFit, func() error {
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
		hier, err := cluster.Agglomerative(x, chosenK)
		if err != nil {
			return err
		}
		result.Sweep = sweep
		result.Chosen = sweep[chosenK-1]
		result.Hierarchy = hier
		metrics.Observer.Fit("wine", "kmeans")
		metrics.Observer.Fit("wine", "agglomerative")
		return nil
	}); err != nil {
		return result, err
	}

	if err := p.stage("wine", StageReport, func() error {
		summaries := make([]describe.Summary, 0, len(names))
		for _, name := range names {
			values, err := cleaned.Numeric(name)
			if err != nil {
				return err
			}
			s, err := describe.Describe(values)
			if err != nil {
				return err
			}
			summaries = append(summaries, s)
			if _, err := p.reporter.Histogram(values, name, fmt.Sprintf("wine_%s_hist.png", name)); err != nil {
				return err
			}
		}
		p.reporter.SummaryTable(names, summaries)

		m, err := cleaned.Matrix(names...)
		if err != nil {
			return err
		}
		corr, err := describe.CorrelationMatrix(m)
		if err != nil {
			return err
		}
		if _, err := p.reporter.CorrelationHeat(corr, "wine_corr.png"); err != nil {
			return err
		}

		alcohol, err := cleaned.Numeric("alcohol")
		if err != nil {
			return err
		}
		quality, err := cleaned.Numeric("quality")
		if err != nil {
			return err
		}
		result.AlcoholQualityRho, result.AlcoholQualityP, err = describe.Spearman(alcohol, quality)
		if err != nil {
			return err
		}
		log.Info().
			Float64("rho", result.AlcoholQualityRho).
			Float64("p", result.AlcoholQualityP).
			Msg("rank correlation of alcohol and quality")

		inertias := cluster.Inertias(result.Sweep)
		p.reporter.ElbowConsole(inertias)
		if _, err := p.reporter.ElbowChart(inertias, "wine_elbow.png"); err != nil {
			return err
		}
		if len(names) > 1 {
			if _, err := p.reporter.ClusterScatter(x, result.Chosen.Labels, chosenK, 0, 1,
				names[0], names[1], "wine_clusters.png"); err != nil {
				return err
			}
		}
		p.reporter.ClusterSizes(result.Chosen.Labels, result.Chosen.ClusterSS)

		if err := p.archive.Store(storage.Key{Dataset: "wine", Label: "sweep"}, result.Sweep); err != nil {
			return err
		}
		return p.archive.Store(storage.Key{Dataset: "wine", Label: "partition"}, result.Chosen)
	}); err != nil {
		return result, err
	}

	result.Rows = cleaned.Rows()
	result.Columns = names
	return result, nil
}
