// Package cluster implements the partition-clustering layer of a run:
// a seeded k-means fit, the elbow sweep over candidate cluster counts
// and an agglomerative hierarchy for a second clustering view.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ConfigurationErr marks an unusable cluster-count range or fit setup.
	ConfigurationErr = errors.New("invalid clustering configuration")
	// ConvergenceErr marks a fit that hit the iteration cap before
	// stabilising. It is non-fatal: the best result so far is returned
	// alongside it.
	ConvergenceErr = errors.New("iteration cap reached before convergence")
)

// Config drives a k-means fit.
type Config struct {
	// MaxIterations caps the assign/recompute loop of a single start.
	MaxIterations int
	// Tolerance stops a fit once no centroid moved further than this.
	Tolerance float64
	// Seed fixes centroid initialisation. The same seed on the same
	// matrix reproduces assignments and inertia exactly.
	Seed int64
	// Restarts is the number of independent seeded initialisations per
	// fit, the best inertia wins.
	Restarts int
	// Workers bounds sweep parallelism. Values below 2 keep the sweep serial.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.MaxIterations == 0 {
		c.MaxIterations = 100
	}
	if c.Restarts == 0 {
		c.Restarts = 5
	}
	return c
}

// Partition is the outcome of one k-means fit: a total assignment of
// rows to k clusters plus the within-cluster dispersion record.
// Labels are opaque identifiers 0..k-1 and are not stable across
// different k.
type Partition struct {
	K          int         `json:"k"`
	Labels     []int       `json:"labels"`
	Centroids  [][]float64 `json:"centroids"`
	ClusterSS  []float64   `json:"cluster_ss"`
	Inertia    float64     `json:"inertia"`
	Iterations int         `json:"iterations"`
	Converged  bool        `json:"converged"`
}

// Fit partitions the rows of x into k clusters with seeded Lloyd iteration.
// On a hit iteration cap the best available partition is returned together
// with a ConvergenceErr, callers may keep the result.
func Fit(x mat.Matrix, k int, cfg Config) (Partition, error) {
	cfg = cfg.withDefaults()
	n, d := x.Dims()
	if k < 1 || k > n {
		return Partition{}, fmt.Errorf("k=%d outside [1,%d]: %w", k, n, ConfigurationErr)
	}
	if d < 1 {
		return Partition{}, fmt.Errorf("matrix has no columns: %w", ConfigurationErr)
	}
	if cfg.MaxIterations < 1 || cfg.Restarts < 1 {
		return Partition{}, fmt.Errorf("iterations=%d restarts=%d: %w", cfg.MaxIterations, cfg.Restarts, ConfigurationErr)
	}

	rows := matRows(x)

	best := Partition{Inertia: math.Inf(1)}
	for restart := 0; restart < cfg.Restarts; restart++ {
		rnd := rand.New(rand.NewSource(cfg.Seed + int64(restart)))
		p := lloyd(rows, seedCentroids(rows, k, rnd), cfg)
		if p.Inertia < best.Inertia {
			best = p
		}
	}

	if !best.Converged {
		return best, fmt.Errorf("k=%d after %d iterations: %w", k, best.Iterations, ConvergenceErr)
	}
	return best, nil
}

// matRows copies a matrix into its row slices.
func matRows(x mat.Matrix) [][]float64 {
	n, _ := x.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = mat.Row(nil, i, x)
	}
	return rows
}

// lloyd iterates from the given initial centroids to convergence or the
// iteration cap. The centroid slices are taken over and mutated.
func lloyd(rows [][]float64, centroids [][]float64, cfg Config) Partition {
	k := len(centroids)
	labels := make([]int, len(rows))
	for i := range labels {
		labels[i] = -1
	}

	converged := false
	iterations := 0
	for iterations < cfg.MaxIterations {
		iterations++

		changes := assign(rows, centroids, labels)

		moved := recompute(rows, labels, centroids)

		if empties := emptyClusters(labels, k); len(empties) > 0 {
			reseedEmpty(rows, labels, centroids, empties)
			continue
		}

		if changes == 0 || moved <= cfg.Tolerance {
			converged = true
			break
		}
	}

	// settle the final assignment against the final centroids
	assign(rows, centroids, labels)
	clusterSS := make([]float64, k)
	for i, row := range rows {
		dist := floats.Distance(row, centroids[labels[i]], 2)
		clusterSS[labels[i]] += dist * dist
	}

	return Partition{
		K:          k,
		Labels:     labels,
		Centroids:  centroids,
		ClusterSS:  clusterSS,
		Inertia:    floats.Sum(clusterSS),
		Iterations: iterations,
		Converged:  converged,
	}
}

// seedCentroids places k initial centroids on distinct rows with the
// k-means++ weighting under the given seeded source.
func seedCentroids(rows [][]float64, k int, rnd *rand.Rand) [][]float64 {
	n := len(rows)
	centroids := make([][]float64, 0, k)
	taken := make(map[int]bool, k)

	first := rnd.Intn(n)
	centroids = append(centroids, clone(rows[first]))
	taken[first] = true

	dist2 := make([]float64, n)
	for len(centroids) < k {
		total := 0.0
		for i, row := range rows {
			if taken[i] {
				dist2[i] = 0
				continue
			}
			nearest := math.Inf(1)
			for _, c := range centroids {
				d := floats.Distance(row, c, 2)
				if d*d < nearest {
					nearest = d * d
				}
			}
			dist2[i] = nearest
			total += nearest
		}

		next := -1
		if total > 0 {
			target := rnd.Float64() * total
			acc := 0.0
			for i := 0; i < n; i++ {
				acc += dist2[i]
				if acc >= target && !taken[i] {
					next = i
					break
				}
			}
		}
		if next < 0 {
			// duplicate-heavy input: fall back to the first untaken row
			for i := 0; i < n; i++ {
				if !taken[i] {
					next = i
					break
				}
			}
		}
		centroids = append(centroids, clone(rows[next]))
		taken[next] = true
	}
	return centroids
}

// assign labels every row with its nearest centroid and returns the
// number of rows that changed cluster. Ties break to the lowest
// centroid index.
func assign(rows [][]float64, centroids [][]float64, labels []int) int {
	changes := 0
	for i, row := range rows {
		bestLabel := 0
		bestDist := math.Inf(1)
		for c, centroid := range centroids {
			d := floats.Distance(row, centroid, 2)
			if d < bestDist {
				bestDist = d
				bestLabel = c
			}
		}
		if labels[i] != bestLabel {
			labels[i] = bestLabel
			changes++
		}
	}
	return changes
}

// recompute moves every centroid to the mean of its members and returns
// the largest centroid shift.
func recompute(rows [][]float64, labels []int, centroids [][]float64) float64 {
	k := len(centroids)
	d := len(centroids[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := 0; c < k; c++ {
		sums[c] = make([]float64, d)
	}
	for i, row := range rows {
		floats.Add(sums[labels[i]], row)
		counts[labels[i]]++
	}

	moved := 0.0
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			// left in place, reseedEmpty takes over
			continue
		}
		next := sums[c]
		floats.Scale(1/float64(counts[c]), next)
		if shift := floats.Distance(centroids[c], next, 2); shift > moved {
			moved = shift
		}
		centroids[c] = next
	}
	return moved
}

// emptyClusters returns the cluster ids with no member, ascending.
func emptyClusters(labels []int, k int) []int {
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	empties := make([]int, 0)
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			empties = append(empties, c)
		}
	}
	return empties
}

// reseedEmpty moves every empty centroid onto the row farthest from its
// currently assigned centroid. Ties break to the lowest row index, so
// the repair is deterministic.
func reseedEmpty(rows [][]float64, labels []int, centroids [][]float64, empties []int) {
	for _, c := range empties {
		farthest := -1
		farthestDist := -1.0
		for i, row := range rows {
			if labels[i] == c {
				continue
			}
			d := floats.Distance(row, centroids[labels[i]], 2)
			if d > farthestDist {
				farthestDist = d
				farthest = i
			}
		}
		if farthest < 0 {
			continue
		}
		centroids[c] = clone(rows[farthest])
		labels[farthest] = c
	}
}

func clone(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}
