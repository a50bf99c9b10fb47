// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

// Package simulate generates observational and interventional samples from a
// random linear structural equation model with a single shifted root cause.
package simulate

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidConfig is returned for an SEM configuration that cannot be sampled.
var ErrInvalidConfig = errors.New("simulate: invalid configuration")

// SEMConfig describes a linear SEM x = B*x + e over P variables in index order:
// B[i][j] can only be non-zero for j < i.
type SEMConfig struct {
	// Number of variables
	P int

	// Number of observational samples
	N int

	// Probability of an edge j -> i for every j < i (0 gives independent variables)
	EdgeProb float64

	// Absolute edge weights are drawn uniformly from [WeightLow, WeightHigh]
	// with a random sign
	WeightLow  float64
	WeightHigh float64

	// Standard deviation of every noise term (default 1)
	NoiseStd float64

	// Index of the intervened variable; negative picks one at random
	Root int

	// Mean shift of the root cause's noise in the interventional sample
	Shift float64
}

// SEMData is one simulated data set.
type SEMData struct {
	// Observational samples (N x P)
	Obs *mat.Dense

	// One interventional sample (length P)
	Int []float64

	// Weighted adjacency, B[i][j] is the effect of j on i
	B *mat.Dense

	// Index of the intervened variable
	Root int
}

// DefaultSEMConfig returns a sparse 20-variable model with 200 samples.
func DefaultSEMConfig() SEMConfig {
	return SEMConfig{
		P:          20,
		N:          200,
		EdgeProb:   0.2,
		WeightLow:  0.5,
		WeightHigh: 1.5,
		NoiseStd:   1,
		Root:       -1,
		Shift:      5,
	}
}

func (c SEMConfig) validate() error {
	if c.P <= 0 || c.N <= 0 {
		return fmt.Errorf("P=%d N=%d: %w", c.P, c.N, ErrInvalidConfig)
	}
	if c.EdgeProb < 0 || c.EdgeProb > 1 {
		return fmt.Errorf("edge probability %v: %w", c.EdgeProb, ErrInvalidConfig)
	}
	if c.Root >= c.P {
		return fmt.Errorf("root %d with %d variables: %w", c.Root, c.P, ErrInvalidConfig)
	}
	if c.EdgeProb > 0 && c.WeightHigh < c.WeightLow {
		return fmt.Errorf("weight range [%v, %v]: %w", c.WeightLow, c.WeightHigh, ErrInvalidConfig)
	}
	return nil
}

// LinearSEM draws a random DAG and samples N observational rows plus one
// interventional row whose root cause has its noise shifted by Shift.
func LinearSEM(cfg SEMConfig, rng *rand.Rand) (*SEMData, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.NoiseStd <= 0 {
		cfg.NoiseStd = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}

	p := cfg.P
	B := mat.NewDense(p, p, nil)
	if cfg.EdgeProb > 0 {
		weight := distuv.Uniform{Min: cfg.WeightLow, Max: cfg.WeightHigh, Src: rng}
		for i := 1; i < p; i++ {
			for j := 0; j < i; j++ {
				if rng.Float64() >= cfg.EdgeProb {
					continue
				}
				w := weight.Rand()
				if rng.IntN(2) == 0 {
					w = -w
				}
				B.Set(i, j, w)
			}
		}
	}

	root := cfg.Root
	if root < 0 {
		root = rng.IntN(p)
	}

	noise := distuv.Normal{Mu: 0, Sigma: cfg.NoiseStd, Src: rng}
	obs := mat.NewDense(cfg.N, p, nil)
	row := make([]float64, p)
	for i := 0; i < cfg.N; i++ {
		propagate(B, row, noise, -1, 0)
		obs.SetRow(i, row)
	}

	intv := make([]float64, p)
	propagate(B, intv, noise, root, cfg.Shift)

	return &SEMData{Obs: obs, Int: intv, B: B, Root: root}, nil
}

// propagate fills x in topological (index) order, adding shift to the noise
// of variable target.
func propagate(B *mat.Dense, x []float64, noise distuv.Normal, target int, shift float64) {
	for i := range x {
		v := noise.Rand()
		if i == target {
			v += shift
		}
		for j := 0; j < i; j++ {
			if b := B.At(i, j); b != 0 {
				v += b * x[j]
			}
		}
		x[i] = v
	}
}
