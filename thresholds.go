// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"fmt"
	"math"
)

// AberrantThresholds walks the grid r and keeps a threshold only if some
// variable is still at or above it and it splits the variables differently
// from the previously kept one (counted by z <= tau). Two kept thresholds
// therefore never produce the same set of permutations.
func AberrantThresholds(z []float64, r ThresholdRange) ([]float64, error) {
	if r.Step <= 0 || math.IsNaN(r.Step) {
		return nil, fmt.Errorf("step %v: %w", r.Step, ErrInvalidRange)
	}
	steps := int(math.Ceil((r.Max - r.Min) / r.Step))

	var kept []float64
	prevCount := -1
	for i := 0; i < steps; i++ {
		tau := r.Min + float64(i)*r.Step

		above, atOrBelow := 0, 0
		for _, v := range z {
			if v >= tau {
				above++
			}
			if v <= tau {
				atOrBelow++
			}
		}
		if above == 0 || atOrBelow == prevCount {
			continue
		}
		prevCount = atOrBelow
		kept = append(kept, tau)
	}
	return kept, nil
}
