// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

// Package baseline implements comparison methods for root cause ranking that
// rely on a causal ordering of the variables instead of whitening.
package baseline

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrBadOrdering is returned when an ordering is not a permutation of the variables.
var ErrBadOrdering = errors.New("baseline: ordering is not a permutation")

// OrderingEstimator estimates a causal ordering (sources first) from
// observational data.
type OrderingEstimator interface {
	CausalOrder(xObs *mat.Dense) ([]int, error)
}

// OracleOrdering returns a feasible ordering of a known weighted adjacency
// matrix, ignoring the data.
type OracleOrdering struct {
	// B[i][j] != 0 means j -> i
	B mat.Matrix
}

// CausalOrder implements OrderingEstimator.
func (o OracleOrdering) CausalOrder(xObs *mat.Dense) ([]int, error) {
	if o.B == nil {
		return nil, errors.New("baseline: oracle ordering without adjacency")
	}
	if xObs != nil {
		_, p := xObs.Dims()
		if r, _ := o.B.Dims(); r != p {
			return nil, fmt.Errorf("adjacency has %d variables, data %d", r, p)
		}
	}
	return FeasibleOrdering(o.B), nil
}

// FeasibleOrdering peels off variables without remaining parents layer by
// layer. Variables left over when no progress is possible (a cycle) are
// appended in index order.
func FeasibleOrdering(B mat.Matrix) []int {
	p, _ := B.Dims()
	removed := make([]bool, p)
	order := make([]int, 0, p)

	for len(order) < p {
		var layer []int
		for i := 0; i < p; i++ {
			if removed[i] {
				continue
			}
			free := true
			for j := 0; j < p; j++ {
				if !removed[j] && j != i && B.At(i, j) != 0 {
					free = false
					break
				}
			}
			if free {
				layer = append(layer, i)
			}
		}
		if len(layer) == 0 {
			break
		}
		for _, i := range layer {
			removed[i] = true
		}
		order = append(order, layer...)
	}
	for i := 0; i < p; i++ {
		if !removed[i] {
			order = append(order, i)
		}
	}
	return order
}

func checkOrdering(order []int, p int) error {
	if len(order) != p {
		return fmt.Errorf("length %d, want %d: %w", len(order), p, ErrBadOrdering)
	}
	seen := make([]bool, p)
	for _, v := range order {
		if v < 0 || v >= p || seen[v] {
			return fmt.Errorf("entry %d: %w", v, ErrBadOrdering)
		}
		seen[v] = true
	}
	return nil
}

// IsCausalOrdering reports whether no variable in order has a parent placed
// after it, i.e. B permuted by order is lower triangular.
func IsCausalOrdering(order []int, B mat.Matrix) bool {
	p, _ := B.Dims()
	if checkOrdering(order, p) != nil {
		return false
	}
	for a := 0; a < p; a++ {
		for b := a + 1; b < p; b++ {
			if B.At(order[a], order[b]) != 0 {
				return false
			}
		}
	}
	return true
}

// RankByOrdering ranks the aberrant variables (z >= threshold) by their
// position in the causal ordering, followed by the remaining variables by
// descending z-score.
func RankByOrdering(z []float64, threshold float64, order []int) []int {
	var rank, rest []int
	for _, v := range order {
		if v >= 0 && v < len(z) && z[v] >= threshold {
			rank = append(rank, v)
		}
	}
	for i, v := range z {
		if v < threshold {
			rest = append(rest, i)
		}
	}
	sort.SliceStable(rest, func(a, b int) bool { return z[rest[a]] > z[rest[b]] })
	return append(rank, rest...)
}

// RankAtThresholds applies RankByOrdering once per threshold.
func RankAtThresholds(z []float64, order []int, thresholds []float64) [][]int {
	out := make([][]int, len(thresholds))
	for k, t := range thresholds {
		out[k] = RankByOrdering(z, t, order)
	}
	return out
}

// Position returns the 1-based rank of variable v, or 0 if it is absent.
func Position(rank []int, v int) int {
	for k, r := range rank {
		if r == v {
			return k + 1
		}
	}
	return 0
}
