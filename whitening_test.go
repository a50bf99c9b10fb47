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

func TestWhitenLengthAndSign(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	xObs := gaussianObs(rng, 80, 5)
	xInt := []float64{1, -2, 0.5, 3, -1}

	w, err := NewWhitener(xObs, WhiteningOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, w.Dim())
	assert.Zero(t, w.Shift())

	for _, perm := range []Permutation{{0, 1, 2, 3, 4}, {4, 3, 2, 1, 0}, {2, 0, 4, 1, 3}} {
		out, err := w.Whiten(xInt, perm)
		require.NoError(t, err)
		require.Len(t, out, 5)
		for _, v := range out {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.False(t, math.IsNaN(v))
		}
	}
}

func TestWhitenFirstVariableIsScaledDeviation(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	xObs := gaussianObs(rng, 60, 4)
	xInt := []float64{2, -1, 0.3, 4}
	mu, sd := columnMoments(xObs)

	for first := 0; first < 4; first++ {
		perm := Permutation{first}
		for j := 0; j < 4; j++ {
			if j != first {
				perm = append(perm, j)
			}
		}
		out, err := Whiten(xObs, xInt, perm, WhiteningOptions{})
		require.NoError(t, err)
		want := math.Abs(xInt[first]-mu[first]) / sd[first]
		assert.InDelta(t, want, out[first], 1e-9, "first variable %d", first)
	}
}

func TestWhitenIndependentDiagonal(t *testing.T) {
	// Two perfectly uncorrelated columns with unit sample variance
	xObs := mat.NewDense(4, 2, []float64{
		1, 1,
		1, -1,
		-1, 1,
		-1, -1,
	})
	scale := math.Sqrt(4.0 / 3.0)
	out, err := Whiten(xObs, []float64{2, -3}, Permutation{1, 0}, WhiteningOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 2/scale, out[0], 1e-9)
	assert.InDelta(t, 3/scale, out[1], 1e-9)
}

// duplicatedObs draws n x p standard normals and copies column 0 into
// column 1, so the sample covariance is singular along e0 - e1.
func duplicatedObs(seed int64, n, p int) *mat.Dense {
	xObs := gaussianObs(rand.New(rand.NewSource(seed)), n, p)
	xObs.SetCol(1, mat.Col(nil, 0, xObs))
	return xObs
}

func TestWhitenSingularAfterUniformRepair(t *testing.T) {
	xObs := duplicatedObs(7, 40, 10)
	offsets := make([]float64, 10)
	offsets[0], offsets[1] = 4, 4
	xInt := shiftedSample(xObs, offsets)
	identity := Permutation{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	// a uniform shift leaves e0 - e1 in the null space
	w, err := NewWhitener(xObs, WhiteningOptions{Repair: RepairUniform})
	require.NoError(t, err)
	assert.Positive(t, w.Shift())
	for _, perm := range []Permutation{identity, {9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, {1, 5, 0, 2, 3, 4, 6, 7, 8, 9}} {
		_, err = w.Whiten(xInt, perm)
		assert.ErrorIs(t, err, ErrNotPositiveDefinite, "permutation %v", perm)
	}

	// lifting the diagonal makes it usable
	out, err := Whiten(xObs, xInt, identity, WhiteningOptions{Repair: RepairDiagonal})
	require.NoError(t, err)
	assert.Len(t, out, 10)
}

func TestWhitenHighDimUsesShrinkage(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	xObs := gaussianObs(rng, 5, 12)
	xInt := make([]float64, 12)
	for j := range xInt {
		xInt[j] = rng.NormFloat64()
	}
	perm := make(Permutation, 12)
	for j := range perm {
		perm[j] = 11 - j
	}
	out, err := Whiten(xObs, xInt, perm, WhiteningOptions{})
	require.NoError(t, err)
	for _, v := range out {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestWhitenErrors(t *testing.T) {
	xObs := gaussianObs(rand.New(rand.NewSource(7)), 20, 3)
	w, err := NewWhitener(xObs, WhiteningOptions{})
	require.NoError(t, err)

	_, err = w.Whiten([]float64{1, 2}, Permutation{0, 1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = w.Whiten([]float64{1, 2, 3}, Permutation{0, 0, 2})
	assert.ErrorIs(t, err, ErrNotPermutation)

	_, err = NewWhitener(mat.NewDense(1, 3, nil), WhiteningOptions{})
	assert.ErrorIs(t, err, ErrTooFewSamples)
}

func TestEstimateCovarianceShrinkage(t *testing.T) {
	xObs := gaussianObs(rand.New(rand.NewSource(8)), 3, 4)
	cov := estimateCovariance(xObs, 0.1)

	// zero shrinkage leaves the biased empirical covariance
	sample := estimateCovariance(xObs, 0)
	biasedTrace := mat.Trace(sample)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.9 * sample.At(i, j)
			if i == j {
				want += 0.1 * biasedTrace / 4
			}
			assert.InDelta(t, want, cov.At(i, j), 1e-12)
		}
	}
}

func TestRepairCovariance(t *testing.T) {
	singular := func() *mat.SymDense {
		return mat.NewSymDense(2, []float64{1, 1, 1, 1})
	}

	cov := singular()
	shift, err := repairCovariance(cov, RepairDiagonal, 1e-6)
	require.NoError(t, err)
	assert.InDelta(t, 1e-6, shift, 1e-9)
	assert.InDelta(t, 1+shift, cov.At(0, 0), 1e-15)
	assert.Equal(t, 1.0, cov.At(0, 1))

	cov = singular()
	shift, err = repairCovariance(cov, RepairUniform, 1e-6)
	require.NoError(t, err)
	assert.InDelta(t, 1+shift, cov.At(0, 0), 1e-15)
	assert.InDelta(t, 1+shift, cov.At(0, 1), 1e-15)

	pd := mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1})
	shift, err = repairCovariance(pd, RepairUniform, 1e-6)
	require.NoError(t, err)
	assert.Zero(t, shift)
	assert.Equal(t, 2.0, pd.At(0, 0))
}

func TestPermuteSym(t *testing.T) {
	cov := mat.NewSymDense(3, []float64{
		1, 2, 3,
		2, 4, 5,
		3, 5, 6,
	})
	out := permuteSym(cov, Permutation{2, 0, 1})
	assert.Equal(t, 6.0, out.At(0, 0))
	assert.Equal(t, 3.0, out.At(0, 1))
	assert.Equal(t, 5.0, out.At(0, 2))
	assert.Equal(t, 1.0, out.At(1, 1))
	assert.Equal(t, 2.0, out.At(1, 2))
	assert.Equal(t, 4.0, out.At(2, 2))
}
