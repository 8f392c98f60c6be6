package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSweep_ElbowScenario(t *testing.T) {
	results, err := Sweep(twoBlobs(), 3, Config{Seed: 42})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, p := range results {
		assert.Equal(t, i+1, p.K)
		assert.Len(t, p.Labels, 6)
	}

	inertia := Inertias(results)
	// the elbow is at k=2: a huge drop from 1 to 2, a small one from 2 to 3
	drop12 := inertia[0] - inertia[1]
	drop23 := inertia[1] - inertia[2]
	assert.Greater(t, drop12, 100*drop23)
	assert.Less(t, inertia[1], inertia[0]/100)
}

func TestSweep_NonIncreasingInertia(t *testing.T) {
	x := mat.NewDense(12, 2, []float64{
		0, 0, 0.5, 0.5, 1, 0, 0, 1,
		10, 10, 10.5, 10.5, 11, 10, 10, 11,
		20, 0, 20.5, 0.5, 21, 0, 20, 1,
	})

	results, err := Sweep(x, 6, Config{Seed: 11, Restarts: 20})
	require.NoError(t, err)

	inertia := Inertias(results)
	for k := 0; k < len(inertia)-1; k++ {
		assert.GreaterOrEqual(t, inertia[k], inertia[k+1],
			"inertia must not increase from k=%d to k=%d", k+1, k+2)
	}
}

func TestSweep_MonotonicUnderSingleRestart(t *testing.T) {
	// unstructured points and a single Lloyd start per k are the worst
	// case for the inertia curve: local optima would invert it without
	// the warm refit
	for seed := int64(0); seed < 8; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		data := make([]float64, 24)
		for i := range data {
			data[i] = rnd.Float64() * 10
		}
		x := mat.NewDense(12, 2, data)

		results, err := Sweep(x, 6, Config{Seed: seed, Restarts: 1})
		require.NoError(t, err)

		inertia := Inertias(results)
		for k := 0; k < len(inertia)-1; k++ {
			assert.GreaterOrEqual(t, inertia[k], inertia[k+1],
				"seed %d: inertia increased from k=%d to k=%d", seed, k+1, k+2)
		}
	}
}

func TestSweep_ParallelMatchesSerial(t *testing.T) {
	x := twoBlobs()

	serial, err := Sweep(x, 4, Config{Seed: 99})
	require.NoError(t, err)
	parallel, err := Sweep(x, 4, Config{Seed: 99, Workers: 4})
	require.NoError(t, err)

	for k := range serial {
		assert.Equal(t, serial[k].Labels, parallel[k].Labels)
		assert.Equal(t, serial[k].Inertia, parallel[k].Inertia)
	}
}

func TestSweep_BoundBeyondRows(t *testing.T) {
	x := mat.NewDense(10, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	_, err := Sweep(x, 20, Config{Seed: 1})
	assert.ErrorIs(t, err, ConfigurationErr)

	_, err = Sweep(x, 0, Config{Seed: 1})
	assert.ErrorIs(t, err, ConfigurationErr)
}

func TestAgglomerative_TwoBlobs(t *testing.T) {
	p, err := Agglomerative(twoBlobs(), 2)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, p.Labels)
	assert.True(t, p.Converged)
	assert.InDelta(t, p.Inertia, p.ClusterSS[0]+p.ClusterSS[1], 1e-12)
}

func TestAgglomerative_DegenerateCuts(t *testing.T) {
	x := twoBlobs()

	all, err := Agglomerative(x, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, all.Labels)

	each, err := Agglomerative(x, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, each.Labels)
	assert.InDelta(t, 0.0, each.Inertia, 1e-12)

	_, err = Agglomerative(x, 7)
	assert.ErrorIs(t, err, ConfigurationErr)
}
