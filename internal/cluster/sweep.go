package cluster

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sweep fits a partition for every cluster count in [1, maxK] so the
// caller can pick k from the elbow of the inertia curve. Results come
// back ordered by k. Total inertia is non-increasing in k: a fit that
// lands above its k-1 neighbour is refitted from that neighbour's
// centroids plus one extra point, a start Lloyd can only improve on.
//
// Fits that hit the iteration cap are kept with Converged=false and
// logged, the sweep itself still succeeds. Each k is fitted under the
// same base seed, so a sweep is reproducible whether it runs serially
// or across workers.
func Sweep(x mat.Matrix, maxK int, cfg Config) ([]Partition, error) {
	cfg = cfg.withDefaults()
	n, d := x.Dims()
	if maxK < 1 || maxK > n {
		return nil, fmt.Errorf("sweep bound K=%d outside [1,%d]: %w", maxK, n, ConfigurationErr)
	}
	if d < 1 {
		return nil, fmt.Errorf("matrix has no columns: %w", ConfigurationErr)
	}

	results := make([]Partition, maxK)

	fit := func(k int) error {
		p, err := Fit(x, k, cfg)
		if err != nil && !errors.Is(err, ConvergenceErr) {
			return err
		}
		if err != nil {
			log.Warn().
				Int("k", k).
				Int("iterations", p.Iterations).
				Msg("fit stopped at iteration cap, keeping best result")
		}
		results[k-1] = p
		return nil
	}

	if cfg.Workers > 1 {
		// each k is independent, ordering is restored by the results index
		var g errgroup.Group
		g.SetLimit(cfg.Workers)
		for k := 1; k <= maxK; k++ {
			k := k
			g.Go(func() error {
				return fit(k)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for k := 1; k <= maxK; k++ {
			if err := fit(k); err != nil {
				return nil, err
			}
		}
	}

	// independent Lloyd starts can leave a local optimum for k above
	// the k-1 result. Refitting such a k from the k-1 centroids plus
	// the row farthest from its assigned centroid starts at or below
	// the k-1 inertia, and no assign or recompute step moves it up, so
	// the curve cannot invert.
	rows := matRows(x)
	for k := 2; k <= maxK; k++ {
		prev := results[k-2]
		if results[k-1].Inertia <= prev.Inertia {
			continue
		}
		warm := lloyd(rows, warmStart(rows, prev), cfg)
		if !warm.Converged {
			log.Warn().
				Int("k", k).
				Int("iterations", warm.Iterations).
				Msg("warm refit stopped at iteration cap, keeping best result")
		}
		log.Debug().
			Int("k", k).
			Float64("cold_inertia", results[k-1].Inertia).
			Float64("warm_inertia", warm.Inertia).
			Msg("refitted from the k-1 centroids")
		results[k-1] = warm
	}

	log.Info().
		Int("max_k", maxK).
		Int("rows", n).
		Float64("inertia_k1", results[0].Inertia).
		Float64("inertia_kmax", results[maxK-1].Inertia).
		Msg("completed cluster sweep")

	return results, nil
}

// warmStart builds a k+1 centroid set from a k partition: its centroids
// plus the row farthest from its assigned one, ties to the lowest row
// index.
func warmStart(rows [][]float64, p Partition) [][]float64 {
	centroids := make([][]float64, 0, p.K+1)
	for _, c := range p.Centroids {
		centroids = append(centroids, clone(c))
	}
	farthest := 0
	farthestDist := -1.0
	for i, row := range rows {
		d := floats.Distance(row, p.Centroids[p.Labels[i]], 2)
		if d > farthestDist {
			farthestDist = d
			farthest = i
		}
	}
	return append(centroids, clone(rows[farthest]))
}

// Inertias projects a sweep result onto its inertia curve, indexed by k-1.
func Inertias(results []Partition) []float64 {
	out := make([]float64, len(results))
	for i, p := range results {
		out[i] = p.Inertia
	}
	return out
}
