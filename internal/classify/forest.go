package classify

import (
	"fmt"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
)

// Forest classifies with an ensemble of decision trees.
// It adapts the in-memory random-forest engine to the Classifier boundary.
type Forest struct {
	trees   int
	columns []string
	classes []string
	forest  *randomforest.Forest
}

// NewForest creates an untrained forest of the given size.
func NewForest(trees int) *Forest {
	return &Forest{trees: trees}
}

func (f *Forest) Name() string {
	return "random-forest"
}

// Fit trains the forest on the training partition.
func (f *Forest) Fit(train Dataset) error {
	if train.Len() == 0 {
		return fmt.Errorf("empty training partition: %w", ConfigurationErr)
	}
	if f.trees < 1 {
		return fmt.Errorf("forest of %d trees: %w", f.trees, ConfigurationErr)
	}

	y := make([]int, train.Len())
	for i, label := range train.Labels {
		code, err := train.ClassIndex(label)
		if err != nil {
			return err
		}
		y[i] = code
	}

	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: train.Features, Class: y}
	forest.Train(f.trees)

	f.forest = forest
	f.columns = train.Columns
	f.classes = train.Classes

	log.Info().
		Int("trees", f.trees).
		Int("rows", train.Len()).
		Int("features", len(train.Columns)).
		Msg("trained random forest")

	return nil
}

// FeatureImportance exposes the per-feature importance of the trained forest.
func (f *Forest) FeatureImportance() ([]float64, error) {
	if f.forest == nil {
		return nil, fmt.Errorf("forest not trained: %w", ConfigurationErr)
	}
	return f.forest.FeatureImportance, nil
}

// Predict votes each row through the forest.
func (f *Forest) Predict(rows [][]float64) ([]string, error) {
	if f.forest == nil {
		return nil, fmt.Errorf("forest not trained: %w", ConfigurationErr)
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		if len(row) != len(f.columns) {
			return nil, fmt.Errorf("row %d has %d features, trained on %d: %w",
				i, len(row), len(f.columns), SchemaMismatchErr)
		}
		votes := f.forest.Vote(row)
		best := 0
		for c := 1; c < len(votes); c++ {
			if votes[c] > votes[best] {
				best = c
			}
		}
		if best >= len(f.classes) {
			return nil, fmt.Errorf("vote index %d beyond class vocabulary: %w", best, SchemaMismatchErr)
		}
		out[i] = f.classes[best]
	}
	return out, nil
}
