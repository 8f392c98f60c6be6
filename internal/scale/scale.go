// Package scale prepares numeric model input: it normalizes each column
// over its own range and strips columns that carry no distance
// information. Scalers are fitted once and can then transform any
// matrix with the same width.
package scale

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/edalab/edalab/internal/buffer"
)

// SchemaErr marks transform input whose width differs from the fitted one.
var SchemaErr = errors.New("matrix width does not match fitted scaler")

// Transformer fits scaling parameters on one matrix and applies them to others.
type Transformer interface {
	Fit(x mat.Matrix) error
	Transform(x mat.Matrix) (*mat.Dense, error)
	FitTransform(x mat.Matrix) (*mat.Dense, error)
}

func columnStats(x mat.Matrix) *buffer.StatsCollector {
	r, c := x.Dims()
	sc := buffer.NewStatsCollector(c)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			row[j] = x.At(i, j)
		}
		sc.Push(row...)
	}
	return sc
}

// MinMax scales every column linearly onto [0,1].
// Constant columns map to 0.
type MinMax struct {
	min, span []float64
}

// NewMinMax creates an unfitted min-max scaler.
func NewMinMax() *MinMax {
	return &MinMax{}
}

func (s *MinMax) Fit(x mat.Matrix) error {
	stats := columnStats(x).Stats()
	s.min = make([]float64, len(stats))
	s.span = make([]float64, len(stats))
	for j, st := range stats {
		s.min[j] = st.Min()
		s.span[j] = st.Range()
	}
	return nil
}

func (s *MinMax) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s.min == nil {
		return nil, fmt.Errorf("min-max scaler not fitted: %w", SchemaErr)
	}
	r, c := x.Dims()
	if c != len(s.min) {
		return nil, fmt.Errorf("min-max scaler fitted on %d columns, got %d: %w", len(s.min), c, SchemaErr)
	}
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if s.span[j] == 0 {
				out.Set(i, j, 0)
				continue
			}
			out.Set(i, j, (x.At(i, j)-s.min[j])/s.span[j])
		}
	}
	return out, nil
}

func (s *MinMax) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// ZScore centers every column on its mean and divides by its standard
// deviation. Constant columns map to 0.
type ZScore struct {
	mean, stdev []float64
}

// NewZScore creates an unfitted z-score scaler.
func NewZScore() *ZScore {
	return &ZScore{}
}

func (s *ZScore) Fit(x mat.Matrix) error {
	stats := columnStats(x).Stats()
	s.mean = make([]float64, len(stats))
	s.stdev = make([]float64, len(stats))
	for j, st := range stats {
		s.mean[j] = st.Avg()
		s.stdev[j] = st.SampleStDev()
	}
	return nil
}

func (s *ZScore) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s.mean == nil {
		return nil, fmt.Errorf("z-score scaler not fitted: %w", SchemaErr)
	}
	r, c := x.Dims()
	if c != len(s.mean) {
		return nil, fmt.Errorf("z-score scaler fitted on %d columns, got %d: %w", len(s.mean), c, SchemaErr)
	}
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if s.stdev[j] == 0 {
				out.Set(i, j, 0)
				continue
			}
			out.Set(i, j, (x.At(i, j)-s.mean[j])/s.stdev[j])
		}
	}
	return out, nil
}

func (s *ZScore) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// DropConstant removes zero-variance columns.
// It returns the reduced matrix and the indexes of the kept columns,
// so callers can keep their column names aligned.
func DropConstant(x mat.Matrix) (*mat.Dense, []int) {
	r, c := x.Dims()
	stats := columnStats(x).Stats()
	kept := make([]int, 0, c)
	for j, st := range stats {
		if st.Range() != 0 {
			kept = append(kept, j)
		}
	}
	if len(kept) == 0 {
		// mat.NewDense cannot represent a zero-width matrix
		return nil, kept
	}
	out := mat.NewDense(r, len(kept), nil)
	for i := 0; i < r; i++ {
		for jj, j := range kept {
			out.Set(i, jj, x.At(i, j))
		}
	}
	return out, kept
}
