package describe

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ranks converts values to ranks, averaging over ties.
func ranks(values []float64) []float64 {
	n := len(values)
	type pair struct {
		value float64
		index int
	}
	pairs := make([]pair, n)
	for i, v := range values {
		pairs[i] = pair{value: v, index: i}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	out := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		avg := float64(i+1) + float64(j-i-1)/2
		for k := i; k < j; k++ {
			out[pairs[k].index] = avg
		}
		i = j
	}
	return out
}

// tieTerm is Σ(t³-t) over all tie groups of the combined sample.
func tieTerm(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	term := 0.0
	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		t := float64(j - i)
		term += t*t*t - t
		i = j
	}
	return term
}

// MannWhitney compares two independent groups with the rank-sum test.
// It returns the U statistic and a two-tailed p-value from the
// tie-corrected normal approximation.
func MannWhitney(x, y []float64) (u, p float64, err error) {
	n1, n2 := float64(len(x)), float64(len(y))
	if n1 == 0 || n2 == 0 {
		return 0, 1, fmt.Errorf("empty group: %w", DimensionErr)
	}
	combined := make([]float64, 0, len(x)+len(y))
	combined = append(combined, x...)
	combined = append(combined, y...)
	r := ranks(combined)

	r1 := 0.0
	for i := range x {
		r1 += r[i]
	}
	u1 := r1 - n1*(n1+1)/2
	u2 := n1*n2 - u1
	u = math.Min(u1, u2)

	n := n1 + n2
	variance := n1 * n2 / 12 * ((n + 1) - tieTerm(combined)/(n*(n-1)))
	if variance <= 0 {
		// all values tied, nothing to compare
		return u, 1, nil
	}
	z := (u - n1*n2/2) / math.Sqrt(variance)
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	p = 2 * norm.CDF(-math.Abs(z))
	if p > 1 {
		p = 1
	}
	return u, p, nil
}

// KruskalWallis compares k independent groups with the rank-based H test.
// The p-value uses the chi-squared approximation with k-1 degrees of freedom.
func KruskalWallis(groups ...[]float64) (h, p float64, err error) {
	if len(groups) < 2 {
		return 0, 1, fmt.Errorf("%d groups: %w", len(groups), DimensionErr)
	}
	total := 0
	for _, g := range groups {
		if len(g) == 0 {
			return 0, 1, fmt.Errorf("empty group: %w", DimensionErr)
		}
		total += len(g)
	}

	combined := make([]float64, 0, total)
	for _, g := range groups {
		combined = append(combined, g...)
	}
	r := ranks(combined)

	n := float64(total)
	h = 0
	offset := 0
	for _, g := range groups {
		sum := 0.0
		for i := range g {
			sum += r[offset+i]
		}
		h += sum * sum / float64(len(g))
		offset += len(g)
	}
	h = 12/(n*(n+1))*h - 3*(n+1)

	// tie correction
	correction := 1 - tieTerm(combined)/(n*n*n-n)
	if correction <= 0 {
		return 0, 1, nil
	}
	h /= correction

	dist := distuv.ChiSquared{K: float64(len(groups) - 1)}
	p = 1 - dist.CDF(h)
	return h, p, nil
}
