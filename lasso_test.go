// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// sparseRegression returns x (n x p) and y = 3*x0 - 2*x3 + small noise.
func sparseRegression(seed int64, n, p int) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	x := gaussianObs(rng, n, p)
	y := make([]float64, n)
	for i := range y {
		y[i] = 3*x.At(i, 0) - 2*x.At(i, 3) + 0.1*rng.NormFloat64()
	}
	return x, y
}

func TestLassoAlphaGrid(t *testing.T) {
	x, y := sparseRegression(20, 50, 5)
	alphas, err := LassoAlphaGrid(x, y, LassoOptions{})
	require.NoError(t, err)
	require.Len(t, alphas, 100)
	for k := 1; k < len(alphas); k++ {
		assert.Less(t, alphas[k], alphas[k-1])
	}
	assert.InDelta(t, 1e-3, alphas[99]/alphas[0], 1e-12)
}

func TestLassoPathStartsEmpty(t *testing.T) {
	x, y := sparseRegression(21, 50, 5)
	path, err := LassoPath(x, y, nil, LassoOptions{NAlphas: 20})
	require.NoError(t, err)
	require.Len(t, path.Coefs, 20)
	for _, c := range path.Coefs[0] {
		assert.InDelta(t, 0, c, 1e-10)
	}
	assert.GreaterOrEqual(t, len(nonZero(path.Coefs[19])), 2)
	assert.True(t, path.Converged)
}

func TestLassoCVRecoversSparseModel(t *testing.T) {
	x, y := sparseRegression(22, 200, 10)
	cv, err := LassoCV(x, y, LassoOptions{})
	require.NoError(t, err)
	require.Len(t, cv.Coef, 10)
	require.Len(t, cv.MeanMSE, 100)

	assert.InDelta(t, 3, cv.Coef[0], 0.2)
	assert.InDelta(t, -2, cv.Coef[3], 0.2)
	assert.Contains(t, nonZero(cv.Coef), 0)
	assert.Contains(t, nonZero(cv.Coef), 3)
	assert.Equal(t, cv.Path.Alphas[cv.AlphaIndex], cv.Alpha)

	row := mat.Row(nil, 7, x)
	assert.InDelta(t, y[7], cv.Predict(row), 0.5)
}

func TestLassoCVConstantResponse(t *testing.T) {
	x := gaussianObs(rand.New(rand.NewSource(23)), 30, 4)
	y := make([]float64, 30)
	for i := range y {
		y[i] = 2.5
	}
	cv, err := LassoCV(x, y, LassoOptions{NAlphas: 10})
	require.NoError(t, err)
	assert.Empty(t, nonZero(cv.Coef))
	assert.InDelta(t, 2.5, cv.Intercept, 1e-12)
}

func TestLassoErrors(t *testing.T) {
	x := gaussianObs(rand.New(rand.NewSource(24)), 10, 3)
	_, err := LassoCV(x, make([]float64, 9), LassoOptions{})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = LassoPath(nil, []float64{1}, nil, LassoOptions{})
	assert.ErrorIs(t, err, ErrNilInput)
}

func TestFoldBounds(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 3}, {3, 5}, {5, 7}}, foldBounds(7, 3))
	assert.Len(t, foldBounds(3, 5), 3)
}

func TestSoftThreshold(t *testing.T) {
	assert.Equal(t, 2.0, softThreshold(3, 1))
	assert.Equal(t, -2.0, softThreshold(-3, 1))
	assert.Equal(t, 0.0, softThreshold(0.5, 1))
	assert.False(t, math.Signbit(softThreshold(-0.5, 1)))
}
