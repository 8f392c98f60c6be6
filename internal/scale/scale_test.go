package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMinMax(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		0, 10,
		5, 20,
		10, 30,
	})

	out, err := NewMinMax().FitTransform(x)
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.At(0, 0))
	assert.Equal(t, 0.5, out.At(1, 0))
	assert.Equal(t, 1.0, out.At(2, 0))
	assert.Equal(t, 0.0, out.At(0, 1))
	assert.Equal(t, 0.5, out.At(1, 1))
	assert.Equal(t, 1.0, out.At(2, 1))
}

func TestMinMax_ConstantColumn(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{
		7, 1,
		7, 3,
	})
	out, err := NewMinMax().FitTransform(x)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.At(0, 0))
	assert.Equal(t, 0.0, out.At(1, 0))
}

func TestZScore(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	out, err := NewZScore().FitTransform(x)
	require.NoError(t, err)

	// mean 2, sample stdev 1
	assert.InDelta(t, -1.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, out.At(1, 0), 1e-12)
	assert.InDelta(t, 1.0, out.At(2, 0), 1e-12)
}

func TestTransform_WidthMismatch(t *testing.T) {
	fitOn := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	applyTo := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	for _, s := range []Transformer{NewMinMax(), NewZScore()} {
		require.NoError(t, s.Fit(fitOn))
		_, err := s.Transform(applyTo)
		assert.ErrorIs(t, err, SchemaErr)
	}
}

func TestTransform_NotFitted(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{1})
	_, err := NewMinMax().Transform(x)
	assert.ErrorIs(t, err, SchemaErr)
	_, err = NewZScore().Transform(x)
	assert.ErrorIs(t, err, SchemaErr)
}

func TestDropConstant(t *testing.T) {
	x := mat.NewDense(3, 3, []float64{
		1, 5, 1,
		2, 5, 1,
		3, 5, 2,
	})
	out, kept := DropConstant(x)
	assert.Equal(t, []int{0, 2}, kept)
	_, c := out.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2.0, out.At(2, 1))

	flat, kept := DropConstant(mat.NewDense(2, 1, []float64{4, 4}))
	assert.Nil(t, flat)
	assert.Empty(t, kept)
}
