// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package baseline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	rcd "github.com/d-setiawan/rcd-go"
)

// Number of cross-validation folds when none are configured
const invarianceFolds = 10

// InvarianceScores scores every variable by how badly its interventional
// value is predicted from the variables before it in the causal ordering.
// The first variable has no predecessors and gets its squared z-score; every
// later variable gets the squared residual of a cross-validated Lasso fit on
// the observational data.
func InvarianceScores(xObs *mat.Dense, xInt []float64, order []int, opts rcd.LassoOptions) ([]float64, error) {
	z, err := rcd.ZScores(xObs, xInt)
	if err != nil {
		return nil, err
	}
	p := len(z)
	if err := checkOrdering(order, p); err != nil {
		return nil, err
	}
	if opts.Folds == 0 {
		opts.Folds = invarianceFolds
	}

	scores := make([]float64, p)
	scores[order[0]] = z[order[0]]
	for k := 1; k < p; k++ {
		target := order[k]
		parents := order[:k]

		cv, err := rcd.LassoCV(rcd.SelectColumns(xObs, parents), mat.Col(nil, target, xObs), opts)
		if err != nil {
			return nil, fmt.Errorf("variable %d: %w", target, err)
		}
		row := make([]float64, k)
		for i, j := range parents {
			row[i] = xInt[j]
		}
		r := xInt[target] - cv.Predict(row)
		scores[target] = r * r
	}
	return scores, nil
}

// RankInvariance ranks variables by descending invariance score.
func RankInvariance(xObs *mat.Dense, xInt []float64, est OrderingEstimator, opts rcd.LassoOptions) ([]int, error) {
	order, err := est.CausalOrder(xObs)
	if err != nil {
		return nil, fmt.Errorf("causal order: %w", err)
	}
	scores, err := InvarianceScores(xObs, xInt, order, opts)
	if err != nil {
		return nil, err
	}
	return rcd.Rank(scores), nil
}
