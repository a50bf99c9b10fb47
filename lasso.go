// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Smallest alpha returned for a degenerate grid (y uncorrelated with every column)
const alphaResolution = 1e-15

func (o LassoOptions) withDefaults() LassoOptions {
	if o.NAlphas <= 0 {
		o.NAlphas = 100
	}
	if o.Eps <= 0 || o.Eps >= 1 {
		o.Eps = 1e-3
	}
	if o.Folds < 2 {
		o.Folds = 5
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 1000
	}
	if o.Tol <= 0 {
		o.Tol = 1e-4
	}
	return o
}

// centeredDesign holds the centered columns of a design matrix and response.
type centeredDesign struct {
	cols  [][]float64 // cols[j] is the centered j-th column
	colSq []float64   // squared norm of every centered column
	y     []float64   // centered response
	xMean []float64
	yMean float64
}

func newCenteredDesign(x mat.Matrix, y []float64) (*centeredDesign, error) {
	if x == nil || len(y) == 0 {
		return nil, ErrNilInput
	}
	n, p := x.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("design has %d rows, response %d: %w", n, len(y), ErrDimensionMismatch)
	}

	d := &centeredDesign{
		cols:  make([][]float64, p),
		colSq: make([]float64, p),
		xMean: make([]float64, p),
		yMean: stat.Mean(y, nil),
	}
	for j := 0; j < p; j++ {
		col := mat.Col(nil, j, x)
		d.xMean[j] = stat.Mean(col, nil)
		floats.AddConst(-d.xMean[j], col)
		d.cols[j] = col
		d.colSq[j] = floats.Dot(col, col)
	}
	d.y = make([]float64, n)
	copy(d.y, y)
	floats.AddConst(-d.yMean, d.y)
	return d, nil
}

func (d *centeredDesign) alphaMax() float64 {
	n := float64(len(d.y))
	best := 0.0
	for _, col := range d.cols {
		if v := math.Abs(floats.Dot(col, d.y)) / n; v > best {
			best = v
		}
	}
	return best
}

func (d *centeredDesign) intercept(w []float64) float64 {
	return d.yMean - floats.Dot(d.xMean, w)
}

func softThreshold(v, lambda float64) float64 {
	switch {
	case v > lambda:
		return v - lambda
	case v < -lambda:
		return v + lambda
	default:
		return 0
	}
}

// descend runs cyclic coordinate descent for one alpha, starting from w and
// its residual resid (both updated in place). It reports whether the largest
// coefficient update fell below tol relative to the largest coefficient.
func (d *centeredDesign) descend(w, resid []float64, alpha float64, maxIter int, tol float64) bool {
	lambda := alpha * float64(len(d.y))
	for iter := 0; iter < maxIter; iter++ {
		maxDelta, maxW := 0.0, 0.0
		for j, col := range d.cols {
			if d.colSq[j] == 0 {
				continue
			}
			old := w[j]
			rho := floats.Dot(col, resid) + d.colSq[j]*old
			w[j] = softThreshold(rho, lambda) / d.colSq[j]
			if delta := w[j] - old; delta != 0 {
				floats.AddScaled(resid, -delta, col)
				maxDelta = math.Max(maxDelta, math.Abs(delta))
			}
			maxW = math.Max(maxW, math.Abs(w[j]))
		}
		if maxW == 0 || maxDelta/maxW < tol {
			return true
		}
	}
	return false
}

func (d *centeredDesign) path(alphas []float64, opts LassoOptions) *LassoPathResult {
	p := len(d.cols)
	w := make([]float64, p)
	resid := make([]float64, len(d.y))
	copy(resid, d.y)

	res := &LassoPathResult{
		Alphas:     alphas,
		Coefs:      make([][]float64, len(alphas)),
		Intercepts: make([]float64, len(alphas)),
		Converged:  true,
	}
	for k, alpha := range alphas {
		if !d.descend(w, resid, alpha, opts.MaxIter, opts.Tol) {
			res.Converged = false
		}
		res.Coefs[k] = append([]float64(nil), w...)
		res.Intercepts[k] = d.intercept(w)
	}
	return res
}

func alphaGrid(alphaMax float64, opts LassoOptions) []float64 {
	alphas := make([]float64, opts.NAlphas)
	if alphaMax <= alphaResolution {
		for k := range alphas {
			alphas[k] = alphaResolution
		}
		return alphas
	}
	if opts.NAlphas == 1 {
		alphas[0] = alphaMax
		return alphas
	}
	for k := range alphas {
		frac := float64(k) / float64(opts.NAlphas-1)
		alphas[k] = alphaMax * math.Pow(opts.Eps, frac)
	}
	return alphas
}

// LassoAlphaGrid returns NAlphas log-spaced regularization levels from the
// smallest alpha that zeroes every coefficient down to Eps times that value.
func LassoAlphaGrid(x mat.Matrix, y []float64, opts LassoOptions) ([]float64, error) {
	d, err := newCenteredDesign(x, y)
	if err != nil {
		return nil, err
	}
	return alphaGrid(d.alphaMax(), opts.withDefaults()), nil
}

// LassoPath fits 1/(2n)*||y - b0 - X*w||^2 + alpha*||w||_1 for every alpha in
// the given order, warm starting each fit from the previous one. A nil alphas
// uses LassoAlphaGrid.
func LassoPath(x mat.Matrix, y []float64, alphas []float64, opts LassoOptions) (*LassoPathResult, error) {
	opts = opts.withDefaults()
	d, err := newCenteredDesign(x, y)
	if err != nil {
		return nil, err
	}
	if alphas == nil {
		alphas = alphaGrid(d.alphaMax(), opts)
	}
	return d.path(alphas, opts), nil
}

// foldBounds splits n rows into k contiguous folds; the first n%k folds get
// one extra row.
func foldBounds(n, k int) [][2]int {
	if k > n {
		k = n
	}
	bounds := make([][2]int, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		bounds[f] = [2]int{start, start + size}
		start += size
	}
	return bounds
}

func selectRows(x mat.Matrix, rows []int) *mat.Dense {
	_, p := x.Dims()
	out := mat.NewDense(len(rows), p, nil)
	for i, r := range rows {
		for j := 0; j < p; j++ {
			out.Set(i, j, x.At(r, j))
		}
	}
	return out
}

// LassoCV chooses alpha by K-fold cross-validation over the full-data grid and
// refits on all rows. Folds are contiguous row blocks.
func LassoCV(x mat.Matrix, y []float64, opts LassoOptions) (*LassoCVResult, error) {
	opts = opts.withDefaults()
	full, err := newCenteredDesign(x, y)
	if err != nil {
		return nil, err
	}
	n, _ := x.Dims()
	if n < 2 {
		return nil, fmt.Errorf("%d rows: %w", n, ErrTooFewSamples)
	}
	alphas := alphaGrid(full.alphaMax(), opts)

	mse := make([]float64, len(alphas))
	folds := foldBounds(n, opts.Folds)
	for _, fold := range folds {
		var train, test []int
		for i := 0; i < n; i++ {
			if i >= fold[0] && i < fold[1] {
				test = append(test, i)
			} else {
				train = append(train, i)
			}
		}
		yTrain := make([]float64, len(train))
		for i, r := range train {
			yTrain[i] = y[r]
		}
		d, err := newCenteredDesign(selectRows(x, train), yTrain)
		if err != nil {
			return nil, fmt.Errorf("fold [%d,%d): %w", fold[0], fold[1], err)
		}
		path := d.path(alphas, opts)

		for k := range alphas {
			sse := 0.0
			for _, r := range test {
				pred := path.Intercepts[k]
				for j, c := range path.Coefs[k] {
					pred += c * x.At(r, j)
				}
				diff := y[r] - pred
				sse += diff * diff
			}
			mse[k] += sse / float64(len(test))
		}
	}
	floats.Scale(1/float64(len(folds)), mse)

	best := floats.MinIdx(mse)
	path := full.path(alphas, opts)
	return &LassoCVResult{
		Alpha:      alphas[best],
		AlphaIndex: best,
		Coef:       path.Coefs[best],
		Intercept:  path.Intercepts[best],
		MeanMSE:    mse,
		Path:       path,
	}, nil
}

// Predict evaluates the refit model on one row of predictors.
func (r *LassoCVResult) Predict(row []float64) float64 {
	return r.Intercept + floats.Dot(r.Coef, row)
}

// nonZero returns the indices of the non-zero coefficients.
func nonZero(coef []float64) []int {
	var idx []int
	for j, c := range coef {
		if c != 0 {
			idx = append(idx, j)
		}
	}
	return idx
}
