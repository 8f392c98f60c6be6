package classify

// Classifier is the narrow boundary to an external classification
// engine: fit once on a labeled dataset, then predict labels for rows
// with the same feature schema.
type Classifier interface {
	Name() string
	Fit(train Dataset) error
	Predict(rows [][]float64) ([]string, error)
}
