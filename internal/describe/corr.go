package describe

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DimensionErr marks correlation input of unusable shape.
var DimensionErr = errors.New("invalid correlation input")

// CorrelationMatrix computes the Pearson correlation of every column pair.
func CorrelationMatrix(x mat.Matrix) (*mat.SymDense, error) {
	r, c := x.Dims()
	if r < 2 || c < 1 {
		return nil, fmt.Errorf("%dx%d matrix: %w", r, c, DimensionErr)
	}
	cols := make([][]float64, c)
	for j := 0; j < c; j++ {
		cols[j] = mat.Col(nil, j, x)
	}
	out := mat.NewSymDense(c, nil)
	for i := 0; i < c; i++ {
		out.SetSym(i, i, 1)
		for j := i + 1; j < c; j++ {
			out.SetSym(i, j, stat.Correlation(cols[i], cols[j], nil))
		}
	}
	return out, nil
}

// Spearman computes the rank correlation of two columns together with a
// two-tailed p-value from the t approximation.
func Spearman(x, y []float64) (rho, p float64, err error) {
	if len(x) != len(y) || len(x) < 3 {
		return 0, 1, fmt.Errorf("%d vs %d values: %w", len(x), len(y), DimensionErr)
	}
	rho = stat.Correlation(ranks(x), ranks(y), nil)
	if math.IsNaN(rho) {
		// a constant column has no ranks to correlate
		return 0, 1, nil
	}

	n := float64(len(x))
	if math.Abs(rho) >= 1 {
		return rho, 0, nil
	}
	t := rho * math.Sqrt((n-2)/(1-rho*rho))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}
	p = 2 * dist.CDF(-math.Abs(t))
	return rho, p, nil
}
