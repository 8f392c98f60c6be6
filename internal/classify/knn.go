package classify

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/knn"
)

// KNN classifies by distance-based neighbor voting.
// The engine works on its own instance grids, so in-memory rows are
// round-tripped through a scratch CSV before fitting and predicting.
type KNN struct {
	neighbors int
	distance  string
	scratch   string
	cls       *knn.KNNClassifier
	columns   []string
	// labelSeq is the distinct training labels in first-seen order,
	// the order the scratch CSV presented them to the engine.
	labelSeq []string
}

// NewKNN creates an untrained classifier voting over the given number
// of euclidean nearest neighbors.
func NewKNN(neighbors int) *KNN {
	return &KNN{
		neighbors: neighbors,
		distance:  "euclidean",
		scratch:   os.TempDir(),
	}
}

// WithScratchDir redirects the CSV round trip, mostly for tests.
func (k *KNN) WithScratchDir(dir string) *KNN {
	k.scratch = dir
	return k
}

func (k *KNN) Name() string {
	return "knn"
}

// Fit trains the neighbor index on the training partition.
func (k *KNN) Fit(train Dataset) error {
	if train.Len() == 0 {
		return fmt.Errorf("empty training partition: %w", ConfigurationErr)
	}
	if k.neighbors < 1 || k.neighbors > train.Len() {
		return fmt.Errorf("%d neighbors for %d rows: %w", k.neighbors, train.Len(), ConfigurationErr)
	}

	fn, err := k.toInstanceFile("knn_train", train.Features, train.Labels)
	if err != nil {
		return err
	}
	defer os.Remove(fn)

	raw, err := base.ParseCSVToInstances(fn, false)
	if err != nil {
		return fmt.Errorf("could not read training instances: %w", err)
	}

	cls := knn.NewKnnClassifier(k.distance, "linear", k.neighbors)
	if err := cls.Fit(raw); err != nil {
		log.Error().Err(err).Msg("could not train knn model")
		return fmt.Errorf("could not fit knn: %w", err)
	}

	seq := make([]string, 0, len(train.Classes))
	seen := make(map[string]bool, len(train.Classes))
	for _, label := range train.Labels {
		if !seen[label] {
			seen[label] = true
			seq = append(seq, label)
		}
	}

	k.cls = cls
	k.columns = train.Columns
	k.labelSeq = seq
	return nil
}

// Predict votes each row through the fitted neighbor index.
func (k *KNN) Predict(rows [][]float64) ([]string, error) {
	if k.cls == nil {
		return nil, fmt.Errorf("knn not trained: %w", ConfigurationErr)
	}
	for i, row := range rows {
		if len(row) != len(k.columns) {
			return nil, fmt.Errorf("row %d has %d features, trained on %d: %w",
				i, len(row), len(k.columns), SchemaMismatchErr)
		}
	}
	if len(rows) == 0 {
		return []string{}, nil
	}

	// the parser rebuilds the class attribute from the cells it sees,
	// and the engine rejects grids whose class value set differs from
	// the training one. Cycling through the training labels in their
	// first-seen order reproduces that value set; when there are fewer
	// rows than labels, repeated rows pad the file and their votes are
	// discarded.
	n := len(rows)
	total := n
	if total < len(k.labelSeq) {
		total = len(k.labelSeq)
	}
	padded := make([][]float64, total)
	placeholder := make([]string, total)
	for i := 0; i < total; i++ {
		padded[i] = rows[i%n]
		placeholder[i] = k.labelSeq[i%len(k.labelSeq)]
	}

	fn, err := k.toInstanceFile("knn_predict", padded, placeholder)
	if err != nil {
		return nil, err
	}
	defer os.Remove(fn)

	instances, err := base.ParseCSVToInstances(fn, false)
	if err != nil {
		return nil, fmt.Errorf("could not read prediction instances: %w", err)
	}

	predictions, err := k.cls.Predict(instances)
	if err != nil {
		log.Error().Err(err).Msg("could not predict on knn model")
		return nil, fmt.Errorf("could not predict with knn: %w", err)
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = base.GetClass(predictions, i)
	}
	return out, nil
}

// toInstanceFile writes rows and labels as a headerless CSV the
// instance parser understands, the label last.
func (k *KNN) toInstanceFile(description string, rows [][]float64, labels []string) (string, error) {
	file, err := os.CreateTemp(k.scratch, fmt.Sprintf("%s_*.csv", description))
	if err != nil {
		return "", fmt.Errorf("could not open scratch file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	for i, row := range rows {
		lw := new(strings.Builder)
		for _, v := range row {
			lw.WriteString(fmt.Sprintf("%.6f,", v))
		}
		lw.WriteString(labels[i])
		if _, err := writer.WriteString(lw.String() + "\n"); err != nil {
			return "", fmt.Errorf("could not write instance row: %w", err)
		}
	}
	return file.Name(), nil
}
