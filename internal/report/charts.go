package report

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ElbowChart renders the inertia curve of a sweep and returns the file path.
func (r *Reporter) ElbowChart(inertias []float64, name string) (string, error) {
	if len(inertias) == 0 {
		return "", fmt.Errorf("no inertia values to plot")
	}
	p := plot.New()
	p.Title.Text = "elbow curve"
	p.X.Label.Text = "cluster count k"
	p.Y.Label.Text = "total within-cluster sum of squares"

	xys := make(plotter.XYs, len(inertias))
	for i, v := range inertias {
		xys[i].X = float64(i + 1)
		xys[i].Y = v
	}
	if err := plotutil.AddLinePoints(p, "inertia", xys); err != nil {
		return "", fmt.Errorf("could not build elbow plot: %w", err)
	}

	path := r.path(name)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("could not save elbow plot: %w", err)
	}
	r.saved("elbow", path)
	return path, nil
}

// Histogram renders the distribution of one column.
func (r *Reporter) Histogram(values []float64, column, name string) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("no values to plot for %s", column)
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("distribution of %s", column)
	p.X.Label.Text = column

	hist, err := plotter.NewHist(plotter.Values(values), 20)
	if err != nil {
		return "", fmt.Errorf("could not build histogram for %s: %w", column, err)
	}
	p.Add(hist)

	path := r.path(name)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("could not save histogram for %s: %w", column, err)
	}
	r.saved("histogram", path)
	return path, nil
}

// ClusterScatter renders two feature columns colored by cluster label.
func (r *Reporter) ClusterScatter(x mat.Matrix, labels []int, k int, xCol, yCol int, xName, yName, name string) (string, error) {
	rows, cols := x.Dims()
	if xCol >= cols || yCol >= cols || rows != len(labels) {
		return "", fmt.Errorf("scatter input out of shape: %dx%d matrix, %d labels", rows, cols, len(labels))
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("clusters over %s / %s", xName, yName)
	p.X.Label.Text = xName
	p.Y.Label.Text = yName

	for c := 0; c < k; c++ {
		xys := make(plotter.XYs, 0)
		for i := 0; i < rows; i++ {
			if labels[i] != c {
				continue
			}
			xys = append(xys, plotter.XY{X: x.At(i, xCol), Y: x.At(i, yCol)})
		}
		if len(xys) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return "", fmt.Errorf("could not build scatter for cluster %d: %w", c, err)
		}
		scatter.GlyphStyle.Color = plotutil.Color(c)
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("cluster %d", c), scatter)
	}

	path := r.path(name)
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("could not save cluster scatter: %w", err)
	}
	r.saved("scatter", path)
	return path, nil
}

// corrGrid adapts a correlation matrix to the heat-map grid interface.
type corrGrid struct {
	m *mat.SymDense
}

func (g corrGrid) Dims() (int, int) {
	n := g.m.Symmetric()
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	return g.m.At(r, c)
}

func (g corrGrid) X(c int) float64 {
	return float64(c)
}

func (g corrGrid) Y(r int) float64 {
	return float64(r)
}

// CorrelationHeat renders the correlation matrix as a heat map.
func (r *Reporter) CorrelationHeat(corr *mat.SymDense, name string) (string, error) {
	if corr == nil || corr.Symmetric() == 0 {
		return "", fmt.Errorf("no correlation matrix to plot")
	}
	p := plot.New()
	p.Title.Text = "correlation matrix"

	heat := plotter.NewHeatMap(corrGrid{m: corr}, palette.Heat(12, 1))
	heat.Min = -1
	heat.Max = 1
	p.Add(heat)

	path := r.path(name)
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("could not save correlation heat map: %w", err)
	}
	r.saved("heatmap", path)
	return path, nil
}
