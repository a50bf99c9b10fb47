// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Whitener holds the observational mean and the repaired covariance estimate.
// Both are equivariant under a reordering of the variables, so one Whitener
// serves every permutation of the same observational data.
type Whitener struct {
	mu    []float64
	cov   *mat.SymDense
	shift float64
	floor float64
}

// NewWhitener estimates the mean and covariance of xObs and repairs the
// covariance if it is numerically not positive definite.
func NewWhitener(xObs *mat.Dense, opts WhiteningOptions) (*Whitener, error) {
	if err := checkObservational(xObs); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	mu, _ := columnMoments(xObs)
	cov := estimateCovariance(xObs, opts.Shrinkage)
	shift, err := repairCovariance(cov, opts.Repair, opts.EigenFloor)
	if err != nil {
		return nil, err
	}
	return &Whitener{mu: mu, cov: cov, shift: shift, floor: opts.EigenFloor}, nil
}

// Dim returns the number of variables.
func (w *Whitener) Dim() int { return len(w.mu) }

// Shift returns the amount added by the covariance repair (0 if none).
func (w *Whitener) Shift() float64 { return w.shift }

// Whiten reorders the variables by perm, factorizes the reordered covariance
// as L*L^T and solves L*z = x_perm - mu_perm. The absolute values of z are
// returned in the original variable order.
func (w *Whitener) Whiten(xInt []float64, perm Permutation) ([]float64, error) {
	p := w.Dim()
	if len(xInt) != p {
		return nil, fmt.Errorf("interventional has %d variables, want %d: %w", len(xInt), p, ErrDimensionMismatch)
	}
	if err := perm.Validate(p); err != nil {
		return nil, err
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(permuteSym(w.cov, perm)); !ok {
		return nil, ErrNotPositiveDefinite
	}
	L := mat.NewTriDense(p, mat.Lower, nil)
	chol.LTo(L)
	// Every squared pivot of a matrix with smallest eigenvalue >= floor is at
	// least floor; a vanishing pivot means the repair left it singular.
	for k := 0; k < p; k++ {
		if d := L.At(k, k); d*d < w.floor/2 {
			return nil, fmt.Errorf("pivot %d of %d: %w", k, p, ErrNotPositiveDefinite)
		}
	}

	dev := mat.NewVecDense(p, nil)
	for k, idx := range perm {
		dev.SetVec(k, xInt[idx]-w.mu[idx])
	}

	var zt mat.VecDense
	if err := zt.SolveVec(L, dev); err != nil {
		// A Condition error still carries a solution; anything else does not.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("triangular solve: %w", err)
		}
	}

	out := make([]float64, p)
	for k, idx := range perm {
		out[idx] = math.Abs(zt.AtVec(k))
	}
	return out, nil
}

// Whiten is the one-shot form of NewWhitener followed by Whitener.Whiten.
func Whiten(xObs *mat.Dense, xInt []float64, perm Permutation, opts WhiteningOptions) ([]float64, error) {
	w, err := NewWhitener(xObs, opts)
	if err != nil {
		return nil, err
	}
	return w.Whiten(xInt, perm)
}
