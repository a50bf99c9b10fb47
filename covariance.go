// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultShrinkage  = 0.1
	defaultEigenFloor = 1e-6
)

func (o WhiteningOptions) withDefaults() WhiteningOptions {
	if o.Shrinkage <= 0 || o.Shrinkage > 1 {
		o.Shrinkage = defaultShrinkage
	}
	if o.EigenFloor <= 0 {
		o.EigenFloor = defaultEigenFloor
	}
	return o
}

// estimateCovariance returns the sample covariance (n-1 denominator) when there
// are more rows than columns. Otherwise the sample covariance is singular, and
// we shrink the biased empirical covariance towards a scaled identity:
// (1-s)*S + s*(tr(S)/p)*I.
func estimateCovariance(x mat.Matrix, shrinkage float64) *mat.SymDense {
	n, p := x.Dims()
	cov := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(cov, x, nil)
	if n > p {
		return cov
	}

	cov.ScaleSym(float64(n-1)/float64(n), cov)
	target := mat.Trace(cov) / float64(p)
	cov.ScaleSym(1-shrinkage, cov)
	for i := 0; i < p; i++ {
		cov.SetSym(i, i, cov.At(i, i)+shrinkage*target)
	}
	return cov
}

// repairCovariance shifts cov in place when its smallest eigenvalue is below
// floor and returns the shift that was applied (0 if none).
func repairCovariance(cov *mat.SymDense, mode RepairMode, floor float64) (float64, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, false); !ok {
		return 0, ErrEigenFailed
	}
	minEig := floats.Min(eig.Values(nil))
	if minEig >= floor {
		return 0, nil
	}

	shift := math.Abs(minEig) + floor
	p := cov.SymmetricDim()
	for i := 0; i < p; i++ {
		if mode == RepairDiagonal {
			cov.SetSym(i, i, cov.At(i, i)+shift)
			continue
		}
		for j := i; j < p; j++ {
			cov.SetSym(i, j, cov.At(i, j)+shift)
		}
	}
	return shift, nil
}

// permuteSym returns P*cov*P^T, i.e. out[a][b] = cov[perm[a]][perm[b]].
func permuteSym(cov *mat.SymDense, perm Permutation) *mat.SymDense {
	p := len(perm)
	out := mat.NewSymDense(p, nil)
	for a := 0; a < p; a++ {
		for b := a; b < p; b++ {
			out.SetSym(a, b, cov.At(perm[a], perm[b]))
		}
	}
	return out
}
