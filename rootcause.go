// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func (o Options) withDefaults() Options {
	if o.NShuffles <= 0 {
		o.NShuffles = 1
	}
	if o.Range == (ThresholdRange{}) {
		o.Range = DefaultThresholdRange()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	o.Whitening = o.Whitening.withDefaults()
	return o
}

// source returns the caller's random source, or a fresh one seeded from Seed.
func (o Options) source() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return newRand(o.Seed)
}

// marginStatistic returns the arg-max of a whitened vector and the relative
// gap (largest - second) / second. ok is false when the gap is undefined:
// fewer than two values, a zero runner-up, or a non-finite result.
func marginStatistic(xt []float64) (argmax int, margin float64, ok bool) {
	if len(xt) < 2 {
		return 0, 0, false
	}
	argmax = floats.MaxIdx(xt)
	second := math.Inf(-1)
	for i, v := range xt {
		if i != argmax && v > second {
			second = v
		}
	}
	if second == 0 {
		return argmax, 0, false
	}
	margin = (xt[argmax] - second) / second
	if math.IsNaN(margin) || math.IsInf(margin, 0) {
		return argmax, 0, false
	}
	return argmax, margin, true
}

// assignFallback gives every zero-scored variable a score proportional to its
// z-score, scaled so that the largest of them is half the smallest positive
// score. It reports whether any variable had a positive score; if none did,
// scores is left untouched.
func assignFallback(scores, z []float64) bool {
	var scored, unscoredZ []float64
	var unscored []int
	for i, s := range scores {
		if s != 0 {
			scored = append(scored, s)
			continue
		}
		unscored = append(unscored, i)
		unscoredZ = append(unscoredZ, z[i])
	}
	if len(scored) == 0 {
		return false
	}
	if len(unscored) == 0 {
		return true
	}

	minScored, _ := stats.Min(scored)
	maxZ, _ := stats.Max(unscoredZ)
	if !(maxZ > 0) || math.IsInf(maxZ, 0) {
		return true
	}
	ceiling := minScored / 2
	for _, i := range unscored {
		scores[i] = z[i] * ceiling / maxZ
	}
	return true
}

// Score runs the permutation-based whitening search for one interventional
// sample. Every threshold yields a set of permutations; each permutation is
// whitened and the arg-max variable is credited with the margin statistic if
// it beats its best so far. Variables never credited receive the z-score
// fallback.
func Score(xObs *mat.Dense, xInt []float64, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	z, err := ZScores(xObs, xInt)
	if err != nil {
		return nil, err
	}
	thresholds := opts.Thresholds
	if len(thresholds) == 0 {
		thresholds, err = AberrantThresholds(z, opts.Range)
		if err != nil {
			return nil, err
		}
	}
	w, err := NewWhitener(xObs, opts.Whitening)
	if err != nil {
		return nil, fmt.Errorf("covariance estimate: %w", err)
	}
	if s := w.Shift(); s > 0 {
		opts.Logger.Debug("covariance repaired", "shift", s, "mode", opts.Whitening.Repair.String())
	}

	rng := opts.source()
	scores := make([]float64, len(z))
	res := &Result{ZScores: z, Thresholds: thresholds}
	var firstErr error

	for _, tau := range thresholds {
		perms := GeneratePermutations(z, tau, opts.NShuffles, rng)
		opts.Logger.Debug("trying permutations", "count", len(perms), "threshold", tau)

		for _, perm := range perms {
			xt, err := w.Whiten(xInt, perm)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				res.Skipped++
				continue
			}
			res.Evaluated++

			idx, m, ok := marginStatistic(xt)
			if !ok {
				res.Skipped++
				continue
			}
			if scores[idx] < m {
				scores[idx] = m
			}
		}
	}
	if res.Evaluated == 0 && firstErr != nil {
		return nil, fmt.Errorf("no permutation could be whitened: %w", firstErr)
	}

	if !assignFallback(scores, z) {
		copy(scores, z)
	}
	res.Scores = scores
	return res, nil
}

// ScoreBatch scores every row of an interventional matrix independently.
// Rows share the random source, so a fixed seed reproduces the whole batch.
func ScoreBatch(xObs, xInt *mat.Dense, opts Options) ([]*Result, error) {
	if xInt == nil {
		return nil, ErrNilInput
	}
	if opts.Rand == nil {
		opts.Rand = newRand(opts.Seed)
	}
	m, _ := xInt.Dims()
	out := make([]*Result, m)
	for i := 0; i < m; i++ {
		res, err := Score(xObs, mat.Row(nil, i, xInt), opts)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = res
	}
	return out, nil
}

// Rank orders variable indices by descending score. Ties keep index order.
func Rank(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}
