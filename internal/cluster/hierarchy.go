package cluster

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Agglomerative builds a bottom-up hierarchy with average linkage and
// cuts it at k clusters. It is the second clustering view of the wine
// analysis, output shape matches a k-means Partition so reporting can
// treat both the same.
func Agglomerative(x mat.Matrix, k int) (Partition, error) {
	n, d := x.Dims()
	if k < 1 || k > n {
		return Partition{}, fmt.Errorf("k=%d outside [1,%d]: %w", k, n, ConfigurationErr)
	}
	if d < 1 {
		return Partition{}, fmt.Errorf("matrix has no columns: %w", ConfigurationErr)
	}

	rows := matRows(x)

	// pairwise point distances, computed once
	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			d := floats.Distance(rows[i], rows[j], 2)
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	clusters := make([][]int, n)
	for i := 0; i < n; i++ {
		clusters[i] = []int{i}
	}

	linkage := func(a, b []int) float64 {
		sum := 0.0
		for _, i := range a {
			for _, j := range b {
				sum += dist[i][j]
			}
		}
		return sum / float64(len(a)*len(b))
	}

	for len(clusters) > k {
		bestA, bestB := 0, 1
		bestDist := math.Inf(1)
		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				if d := linkage(clusters[a], clusters[b]); d < bestDist {
					bestDist = d
					bestA, bestB = a, b
				}
			}
		}
		merged := append(append([]int{}, clusters[bestA]...), clusters[bestB]...)
		sort.Ints(merged)
		next := make([][]int, 0, len(clusters)-1)
		for i, c := range clusters {
			if i != bestA && i != bestB {
				next = append(next, c)
			}
		}
		clusters = append(next, merged)
	}

	// stable labels: clusters ordered by their smallest member index
	sort.Slice(clusters, func(a, b int) bool {
		return clusters[a][0] < clusters[b][0]
	})

	labels := make([]int, n)
	centroids := make([][]float64, k)
	clusterSS := make([]float64, k)
	for c, members := range clusters {
		centroid := make([]float64, d)
		for _, i := range members {
			labels[i] = c
			floats.Add(centroid, rows[i])
		}
		floats.Scale(1/float64(len(members)), centroid)
		centroids[c] = centroid
		for _, i := range members {
			dd := floats.Distance(rows[i], centroid, 2)
			clusterSS[c] += dd * dd
		}
	}

	return Partition{
		K:          k,
		Labels:     labels,
		Centroids:  centroids,
		ClusterSS:  clusterSS,
		Inertia:    floats.Sum(clusterSS),
		Converged:  true,
		Iterations: n - k,
	}, nil
}
