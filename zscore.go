// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// columnMoments returns the mean and sample standard deviation (n-1) of every
// column of x.
func columnMoments(x mat.Matrix) (mu, sd []float64) {
	n, p := x.Dims()
	mu = make([]float64, p)
	sd = make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, x)
		mu[j], sd[j] = stat.MeanStdDev(col, nil)
	}
	return mu, sd
}

func checkObservational(xObs mat.Matrix) error {
	if xObs == nil {
		return ErrNilInput
	}
	n, p := xObs.Dims()
	if p == 0 {
		return ErrNilInput
	}
	if n < 2 {
		return fmt.Errorf("%d rows: %w", n, ErrTooFewSamples)
	}
	return nil
}

// ZScores computes the squared z-score of every variable of one interventional
// sample against the observational mean and sample standard deviation.
// A variable with zero observational spread yields NaN or +Inf.
func ZScores(xObs *mat.Dense, xInt []float64) ([]float64, error) {
	if err := checkObservational(xObs); err != nil {
		return nil, err
	}
	_, p := xObs.Dims()
	if len(xInt) != p {
		return nil, fmt.Errorf("observational has %d variables, interventional %d: %w",
			p, len(xInt), ErrDimensionMismatch)
	}

	mu, sd := columnMoments(xObs)
	z := make([]float64, p)
	for j := 0; j < p; j++ {
		d := (xInt[j] - mu[j]) / sd[j]
		z[j] = d * d
	}
	return z, nil
}

// ZScoreMatrix is ZScores applied to every row of an m x p interventional matrix.
func ZScoreMatrix(xObs, xInt *mat.Dense) (*mat.Dense, error) {
	if err := checkObservational(xObs); err != nil {
		return nil, err
	}
	if xInt == nil {
		return nil, ErrNilInput
	}
	_, p := xObs.Dims()
	m, pInt := xInt.Dims()
	if pInt != p {
		return nil, fmt.Errorf("observational has %d variables, interventional %d: %w",
			p, pInt, ErrDimensionMismatch)
	}

	mu, sd := columnMoments(xObs)
	out := mat.NewDense(m, p, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < p; j++ {
			d := (xInt.At(i, j) - mu[j]) / sd[j]
			out.Set(i, j, d*d)
		}
	}
	return out, nil
}
