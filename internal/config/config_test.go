package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "out", c.OutDir)
	assert.Equal(t, 10, c.Sweep.MaxK)
	assert.Equal(t, 25, c.Sweep.Restarts)
	assert.Equal(t, 0.75, c.Split.Fraction)
	assert.Equal(t, 500, c.Forest.Trees)
	assert.Equal(t, 5, c.KNN.Neighbors)
	assert.Equal(t, 140.0, c.BloodPressure.HighSystolic)
	assert.Equal(t, 90.0, c.BloodPressure.HighDiastolic)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("out_dir: charts\nsweep:\n  max_k: 15\n  seed: 42\nknn:\n  neighbors: 7\n")
	require.NoError(t, os.WriteFile(path, body, 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "charts", c.OutDir)
	assert.Equal(t, 15, c.Sweep.MaxK)
	assert.Equal(t, int64(42), c.Sweep.Seed)
	assert.Equal(t, 7, c.KNN.Neighbors)
	// untouched keys keep their defaults
	assert.Equal(t, 0.75, c.Split.Fraction)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
