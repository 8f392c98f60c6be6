// Package classify wraps the supervised-learning step of a run: a
// seeded train/test split, thin adapters over external classification
// engines and the held-out evaluation.
package classify

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/edalab/edalab/internal/frame"
)

var (
	// ConfigurationErr marks an unusable split or fit setup.
	ConfigurationErr = errors.New("invalid classification configuration")
	// SchemaMismatchErr marks predict-time rows that do not match the
	// schema the model was trained on.
	SchemaMismatchErr = errors.New("schema mismatch between train and predict data")
)

// Dataset is a labeled feature matrix with a stable class vocabulary.
type Dataset struct {
	// Columns names the feature columns, in order.
	Columns []string
	// Classes is the stable label vocabulary; class codes are indexes
	// into it and never depend on the order labels appear in the data.
	Classes []string
	// Features holds one row per observation.
	Features [][]float64
	// Labels holds the true class of each row.
	Labels []string
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.Features)
}

// ClassIndex resolves a label to its stable code.
func (d Dataset) ClassIndex(label string) (int, error) {
	for i, c := range d.Classes {
		if c == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("label %q not in class vocabulary %v: %w", label, d.Classes, SchemaMismatchErr)
}

// FromTable builds a labeled dataset from a cleaned table.
// The target column must be categorical or ordinal with a declared
// vocabulary, which becomes the class vocabulary.
func FromTable(t frame.Table, target string, features ...string) (Dataset, error) {
	decl, ok := t.Schema.Column(target)
	if !ok {
		return Dataset{}, fmt.Errorf("unknown target column %s: %w", target, ConfigurationErr)
	}
	if decl.Kind == frame.Numeric || len(decl.Vocabulary) == 0 {
		return Dataset{}, fmt.Errorf("target column %s has no class vocabulary: %w", target, ConfigurationErr)
	}
	if len(features) == 0 {
		return Dataset{}, fmt.Errorf("no feature columns: %w", ConfigurationErr)
	}

	labels, err := t.Strings(target)
	if err != nil {
		return Dataset{}, err
	}
	m, err := t.Matrix(features...)
	if err != nil {
		return Dataset{}, err
	}

	n, c := m.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = m.At(i, j)
		}
		rows[i] = row
	}

	return Dataset{
		Columns:  append([]string(nil), features...),
		Classes:  append([]string(nil), decl.Vocabulary...),
		Features: rows,
		Labels:   labels,
	}, nil
}

// Split partitions a dataset into train and test rows under a fixed seed.
// fraction is the share of rows that go to training.
func Split(d Dataset, fraction float64, seed int64) (train, test Dataset, err error) {
	if fraction <= 0 || fraction >= 1 {
		return Dataset{}, Dataset{}, fmt.Errorf("train fraction %f outside (0,1): %w", fraction, ConfigurationErr)
	}
	n := d.Len()
	nTrain := int(float64(n) * fraction)
	if nTrain < 1 || n-nTrain < 1 {
		return Dataset{}, Dataset{}, fmt.Errorf("split of %d rows at %.2f leaves an empty partition: %w", n, fraction, ConfigurationErr)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	pick := func(idx []int) Dataset {
		out := Dataset{
			Columns:  d.Columns,
			Classes:  d.Classes,
			Features: make([][]float64, 0, len(idx)),
			Labels:   make([]string, 0, len(idx)),
		}
		for _, i := range idx {
			out.Features = append(out.Features, d.Features[i])
			out.Labels = append(out.Labels, d.Labels[i])
		}
		return out
	}

	return pick(perm[:nTrain]), pick(perm[nTrain:]), nil
}
