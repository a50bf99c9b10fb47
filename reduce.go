// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SelectColumns copies the given columns of m, in the given order.
func SelectColumns(m mat.Matrix, idx []int) *mat.Dense {
	r, _ := m.Dims()
	out := mat.NewDense(r, len(idx), nil)
	for k, j := range idx {
		for i := 0; i < r; i++ {
			out.Set(i, k, m.At(i, j))
		}
	}
	return out
}

func checkResponse(response int, xObs *mat.Dense, xInt []float64) error {
	if err := checkObservational(xObs); err != nil {
		return err
	}
	_, p := xObs.Dims()
	if len(xInt) != p {
		return fmt.Errorf("observational has %d variables, interventional %d: %w", p, len(xInt), ErrDimensionMismatch)
	}
	if response < 0 || response >= p {
		return fmt.Errorf("response %d with %d variables: %w", response, p, ErrIndexOutOfRange)
	}
	return nil
}

func newSubset(response int, indices []int, xObs *mat.Dense, xInt []float64) *Subset {
	reduced := make([]float64, len(indices))
	for k, j := range indices {
		reduced[k] = xInt[j]
	}
	return &Subset{
		Response:  response,
		Indices:   indices,
		Obs:       SelectColumns(xObs, indices),
		Int:       reduced,
		Converged: true,
	}
}

// ReduceDimension regresses the response column on all other columns with a
// cross-validated Lasso and keeps the predictors with non-zero coefficients.
// If cross-validation leaves fewer than two predictors, the path level whose
// support size is closest to n/2 is used instead. The response is appended
// last to the returned indices.
func ReduceDimension(response int, xObs *mat.Dense, xInt []float64, opts LassoOptions) (*Subset, error) {
	if err := checkResponse(response, xObs, xInt); err != nil {
		return nil, err
	}
	n, p := xObs.Dims()

	predictors := make([]int, 0, p-1)
	for j := 0; j < p; j++ {
		if j != response {
			predictors = append(predictors, j)
		}
	}
	if len(predictors) == 0 {
		return newSubset(response, []int{response}, xObs, xInt), nil
	}

	y := mat.Col(nil, response, xObs)
	cv, err := LassoCV(SelectColumns(xObs, predictors), y, opts)
	if err != nil {
		return nil, fmt.Errorf("lasso for response %d: %w", response, err)
	}

	beta := cv.Coef
	if len(nonZero(beta)) <= 1 {
		half := float64(n) / 2
		best, bestGap := 0, math.Inf(1)
		for k, coef := range cv.Path.Coefs {
			if gap := math.Abs(float64(len(nonZero(coef))) - half); gap < bestGap {
				best, bestGap = k, gap
			}
		}
		beta = cv.Path.Coefs[best]
	}

	indices := make([]int, 0, p)
	for _, k := range nonZero(beta) {
		indices = append(indices, predictors[k])
	}
	indices = append(indices, response)

	sub := newSubset(response, indices, xObs, xInt)
	sub.Converged = cv.Path.Converged
	return sub, nil
}

// ReduceByPrecision takes the predictors of the response from the non-zero
// entries of its column in a precision (or adjacency) matrix, skipping the
// diagonal. The response is appended last.
func ReduceByPrecision(response int, xObs *mat.Dense, xInt []float64, precision mat.Matrix) (*Subset, error) {
	if err := checkResponse(response, xObs, xInt); err != nil {
		return nil, err
	}
	if precision == nil {
		return nil, ErrNilInput
	}
	_, p := xObs.Dims()
	if r, c := precision.Dims(); r != p || c != p {
		return nil, fmt.Errorf("precision is %dx%d, want %dx%d: %w", r, c, p, p, ErrDimensionMismatch)
	}

	var indices []int
	for i := 0; i < p; i++ {
		if i != response && precision.At(i, response) != 0 {
			indices = append(indices, i)
		}
	}
	indices = append(indices, response)
	return newSubset(response, indices, xObs, xInt), nil
}
