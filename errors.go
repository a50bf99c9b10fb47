// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import "errors"

// Every message is prefixed with "rcd: ". Callers match with errors.Is; we
// wrap with fmt.Errorf("ctx: %w", ErrX) when extra context is useful.
var (
	// ErrDimensionMismatch is returned when the observational and interventional
	// inputs disagree on the number of variables, or a helper receives a vector
	// of the wrong length.
	ErrDimensionMismatch = errors.New("rcd: dimension mismatch")

	// ErrTooFewSamples is returned when the observational matrix has fewer than
	// two rows, so no sample standard deviation exists.
	ErrTooFewSamples = errors.New("rcd: need at least two observational samples")

	// ErrNotPermutation is returned when a permutation is not a bijection on
	// {0, ..., p-1}.
	ErrNotPermutation = errors.New("rcd: not a permutation")

	// ErrInvalidRange is returned for a threshold range with a non-positive step.
	ErrInvalidRange = errors.New("rcd: invalid threshold range")

	// ErrIndexOutOfRange is returned when a response index is outside [0, p).
	ErrIndexOutOfRange = errors.New("rcd: index out of range")

	// ErrEigenFailed is returned when the symmetric eigendecomposition of the
	// covariance estimate does not converge.
	ErrEigenFailed = errors.New("rcd: eigendecomposition failed")

	// ErrNotPositiveDefinite is returned when the covariance is still not
	// positive definite after repair and the Cholesky factorization fails.
	ErrNotPositiveDefinite = errors.New("rcd: covariance not positive definite")

	// ErrNilInput is returned for nil matrices or empty vectors.
	ErrNilInput = errors.New("rcd: nil or empty input")
)
