// Package describe computes the descriptive layer of a run: per-column
// summaries, correlation matrices and rank-based group comparisons.
package describe

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Summary is the descriptive profile of one numeric column.
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StDev    float64 `json:"stdev"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// Describe profiles a single column of values.
func Describe(values []float64) (Summary, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return Summary{}, fmt.Errorf("could not summarise column: %w", err)
	}
	stdev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return Summary{}, fmt.Errorf("could not summarise column: %w", err)
	}
	min, err := stats.Min(values)
	if err != nil {
		return Summary{}, fmt.Errorf("could not summarise column: %w", err)
	}
	max, err := stats.Max(values)
	if err != nil {
		return Summary{}, fmt.Errorf("could not summarise column: %w", err)
	}
	median, err := stats.Median(values)
	if err != nil {
		return Summary{}, fmt.Errorf("could not summarise column: %w", err)
	}
	q25, err := stats.Percentile(values, 25)
	if err != nil {
		return Summary{}, fmt.Errorf("could not summarise column: %w", err)
	}
	q75, err := stats.Percentile(values, 75)
	if err != nil {
		return Summary{}, fmt.Errorf("could not summarise column: %w", err)
	}

	return Summary{
		Count:    len(values),
		Mean:     mean,
		StDev:    stdev,
		Min:      min,
		Q25:      q25,
		Median:   median,
		Q75:      q75,
		Max:      max,
		Skewness: skewness(values, mean, stdev),
	}, nil
}

// skewness is the adjusted Fisher-Pearson coefficient.
func skewness(values []float64, mean, stdev float64) float64 {
	n := float64(len(values))
	if n < 3 || stdev == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := (v - mean) / stdev
		sum += d * d * d
	}
	return (sum / n) * math.Sqrt(n*(n-1)) / (n - 2)
}
