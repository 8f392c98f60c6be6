package classify

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Evaluation is the held-out performance record of one classifier.
type Evaluation struct {
	Model    string   `json:"model"`
	Total    int      `json:"total"`
	Correct  int      `json:"correct"`
	Accuracy float64  `json:"accuracy"`
	Classes  []string `json:"classes"`
	// Confusion counts true label against predicted label.
	Confusion map[string]map[string]int `json:"confusion"`
}

// Evaluate predicts the held-out partition and scores the result.
// Accuracy is the share of rows whose predicted label equals the true one.
func Evaluate(c Classifier, test Dataset) (Evaluation, error) {
	if test.Len() == 0 {
		return Evaluation{}, fmt.Errorf("empty test partition: %w", ConfigurationErr)
	}

	predicted, err := c.Predict(test.Features)
	if err != nil {
		return Evaluation{}, err
	}
	if len(predicted) != test.Len() {
		return Evaluation{}, fmt.Errorf("%d predictions for %d rows: %w", len(predicted), test.Len(), SchemaMismatchErr)
	}

	confusion := make(map[string]map[string]int, len(test.Classes))
	for _, truth := range test.Classes {
		confusion[truth] = make(map[string]int, len(test.Classes))
	}

	correct := 0
	for i, truth := range test.Labels {
		if _, ok := confusion[truth]; !ok {
			return Evaluation{}, fmt.Errorf("true label %q not in class vocabulary: %w", truth, SchemaMismatchErr)
		}
		confusion[truth][predicted[i]]++
		if predicted[i] == truth {
			correct++
		}
	}

	eval := Evaluation{
		Model:     c.Name(),
		Total:     test.Len(),
		Correct:   correct,
		Accuracy:  float64(correct) / float64(test.Len()),
		Classes:   test.Classes,
		Confusion: confusion,
	}

	log.Info().
		Str("model", c.Name()).
		Int("total", eval.Total).
		Float64("accuracy", eval.Accuracy).
		Msg("evaluated classifier")

	return eval, nil
}
