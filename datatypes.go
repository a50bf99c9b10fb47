// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ThresholdRange describes the grid Min, Min+Step, ... (< Max) that candidate
// aberrant thresholds are drawn from.
type ThresholdRange struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultThresholdRange is the grid used when no thresholds are supplied.
func DefaultThresholdRange() ThresholdRange {
	return ThresholdRange{Min: 0.1, Max: 5, Step: 0.2}
}

// How the covariance is repaired when its smallest eigenvalue is too small
type RepairMode int

const (
	// Adds |lambda_min| + eps to every entry of the matrix
	RepairUniform RepairMode = iota
	// Adds |lambda_min| + eps to the diagonal only (ridge shift)
	RepairDiagonal
)

// String returns the config name of the repair mode.
func (m RepairMode) String() string {
	switch m {
	case RepairDiagonal:
		return "diagonal"
	default:
		return "uniform"
	}
}

// WhiteningOptions controls covariance estimation inside the whitening step.
type WhiteningOptions struct {
	// Shrinkage coefficient used when n <= p (default 0.1)
	Shrinkage float64

	// Repair strategy for near-singular covariance estimates
	Repair RepairMode

	// Smallest eigenvalue tolerated before repair (default 1e-6)
	EigenFloor float64
}

// Options configures the low-dimensional root cause search.
type Options struct {
	// Explicit thresholds; if empty they are generated from Range
	Thresholds []float64

	// Grid for generated thresholds (zero value means DefaultThresholdRange)
	Range ThresholdRange

	// Number of shuffles per aberrant variable (default 1)
	NShuffles int

	// Random source for the permutation shuffles. If nil, one is built from Seed.
	Rand *rand.Rand

	// RNG seed used when Rand is nil (if 0, time-based seed is used)
	Seed int64

	Whitening WhiteningOptions

	// Progress logging; nil discards
	Logger *slog.Logger
}

// Result holds the output of a low-dimensional root cause search.
type Result struct {
	// Root cause score per variable (length p)
	Scores []float64

	// Squared z-scores of the interventional sample
	ZScores []float64

	// Thresholds that were swept
	Thresholds []float64

	// Number of permutations whitened successfully
	Evaluated int

	// Configurations that contributed nothing (zero runner-up, non-finite
	// margin, or a numerical failure in whitening)
	Skipped int
}

// Permutation is a bijection on variable indices. perm[k] is the original
// index placed at position k.
type Permutation []int

// LassoOptions controls the coordinate descent Lasso and its cross-validation.
type LassoOptions struct {
	// Number of regularization levels on the path (default 100)
	NAlphas int

	// Ratio alpha_min / alpha_max (default 1e-3)
	Eps float64

	// Number of contiguous cross-validation folds (default 5)
	Folds int

	// Coordinate descent sweeps per alpha (default 1000)
	MaxIter int

	// Convergence tolerance on the largest coefficient update (default 1e-4)
	Tol float64
}

// LassoPathResult holds coefficients for every alpha on a path.
type LassoPathResult struct {
	// Descending regularization levels
	Alphas []float64

	// Coefs[k] are the coefficients fitted at Alphas[k]
	Coefs [][]float64

	// Intercepts[k] pairs with Coefs[k]
	Intercepts []float64

	// False if any alpha hit MaxIter before converging
	Converged bool
}

// LassoCVResult is the cross-validated Lasso fit.
type LassoCVResult struct {
	// Selected regularization level
	Alpha float64

	// Index of Alpha in Path.Alphas
	AlphaIndex int

	// Coefficients and intercept refit on all rows at Alpha
	Coef      []float64
	Intercept float64

	// Mean held-out squared error per alpha
	MeanMSE []float64

	// Full-data path the refit was taken from
	Path *LassoPathResult
}

// Subset is a reduced subproblem for one response variable.
type Subset struct {
	// Original index of the response variable
	Response int

	// Original column indices; the response is always last
	Indices []int

	// Reduced observational matrix (n x len(Indices))
	Obs *mat.Dense

	// Reduced interventional vector
	Int []float64

	// False if the Lasso fit stopped at its iteration cap before converging.
	// Always true for subsets read off a precision matrix.
	Converged bool
}

// HighDimOptions configures the high-dimensional orchestrator.
type HighDimOptions struct {
	// Thresholds, shuffles, whitening, randomness and logging of each subproblem
	Options

	// Worker pool size (default runtime.NumCPU())
	Parallelism int

	// Variables with z-score above this are tested as responses (default 1.5)
	CandidateThreshold float64

	// Optional sparse precision / adjacency matrix (p x p). When set, the
	// predictor set of a response is its non-zero neighbours and no regression
	// is fitted.
	Precision mat.Matrix

	// Lasso settings for the reduction step
	Lasso LassoOptions

	// Abort on the first failing subtask instead of skipping it
	FailFast bool
}

// TaskResult is the isolated outcome of one candidate response variable.
type TaskResult struct {
	// Original index of the response variable
	Index int

	// Best margin achieved when the response was the arg-max (0 if never)
	Score float64

	// Number of variables in the reduced subproblem, response included
	SubsetSize int

	// Non-nil if the subtask failed
	Err error
}

// HighDimResult holds the output of the high-dimensional orchestrator.
type HighDimResult struct {
	// Root cause score per variable (length p)
	Scores []float64

	// Reduced subproblem size per variable (0 for non-candidates)
	SubsetSizes []int

	// Squared z-scores of the interventional sample
	ZScores []float64

	// Candidate response variables, ascending
	Candidates []int

	// One entry per candidate, ordered by Index
	Tasks []TaskResult
}
