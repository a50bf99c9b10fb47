// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Candidate threshold on the z-score used when none is configured
const defaultCandidateThreshold = 1.5

// TaskFunc computes the result for one variable. slot is the position of
// index in the submitted list.
type TaskFunc func(ctx context.Context, slot, index int) TaskResult

// RunTasks runs fn for every index with at most parallelism tasks in flight and
// returns the results in submission order, each tagged with its index.
// Failures stay inside their TaskResult and do not stop sibling tasks, unless
// failFast is set: then the first failure cancels the remaining tasks and is
// returned. Tasks that never started because ctx was cancelled carry ctx.Err().
func RunTasks(ctx context.Context, indices []int, parallelism int, failFast bool, fn TaskFunc) ([]TaskResult, error) {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	results := make([]TaskResult, len(indices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for slot, index := range indices {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[slot] = TaskResult{Index: index, Err: err}
				return nil
			}
			res := fn(gctx, slot, index)
			res.Index = index
			results[slot] = res
			if failFast && res.Err != nil {
				return fmt.Errorf("variable %d: %w", index, res.Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// scoreResponse reduces the problem around one response variable and sweeps
// thresholds and permutations of the subproblem. Only permutations where the
// response itself (last in the subset) is the arg-max count. The sweep stops
// between thresholds once ctx is cancelled.
func scoreResponse(ctx context.Context, response int, xObs *mat.Dense, xInt []float64, opts HighDimOptions, rng *rand.Rand) TaskResult {
	log := opts.Logger.With("response", response)

	var sub *Subset
	var err error
	if opts.Precision != nil {
		sub, err = ReduceByPrecision(response, xObs, xInt, opts.Precision)
	} else {
		sub, err = ReduceDimension(response, xObs, xInt, opts.Lasso)
	}
	if err != nil {
		return TaskResult{Err: err}
	}
	if !sub.Converged {
		log.Debug("lasso stopped before converging", "max_iter", opts.Lasso.MaxIter)
	}
	log.Debug("reduced subproblem", "selected", len(sub.Indices)-1)

	res := TaskResult{SubsetSize: len(sub.Indices)}
	if len(sub.Indices) < 2 {
		return res
	}

	z, err := ZScores(sub.Obs, sub.Int)
	if err != nil {
		res.Err = err
		return res
	}
	thresholds := opts.Thresholds
	if len(thresholds) == 0 {
		if thresholds, err = AberrantThresholds(z, opts.Range); err != nil {
			res.Err = err
			return res
		}
	}
	w, err := NewWhitener(sub.Obs, opts.Whitening)
	if err != nil {
		res.Err = fmt.Errorf("covariance estimate: %w", err)
		return res
	}

	last := len(sub.Indices) - 1
	evaluated := 0
	var firstErr error
	for _, tau := range thresholds {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		perms := GeneratePermutations(z, tau, opts.NShuffles, rng)
		log.Debug("trying permutations", "count", len(perms), "threshold", tau)

		for _, perm := range perms {
			xt, err := w.Whiten(sub.Int, perm)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			evaluated++
			if idx, m, ok := marginStatistic(xt); ok && idx == last && m > res.Score {
				res.Score = m
			}
		}
	}
	if evaluated == 0 && firstErr != nil {
		res.Err = firstErr
	}
	return res
}

// ScoreHighDim scores every variable whose z-score exceeds the candidate
// threshold on its own reduced subproblem, in parallel, and reassembles the
// scores by variable index. Failed subtasks score 0 and are listed by
// HighDimResult.Failed unless FailFast is set.
func ScoreHighDim(ctx context.Context, xObs *mat.Dense, xInt []float64, opts HighDimOptions) (*HighDimResult, error) {
	opts.Options = opts.Options.withDefaults()
	if opts.CandidateThreshold == 0 {
		opts.CandidateThreshold = defaultCandidateThreshold
	}

	z, err := ZScores(xObs, xInt)
	if err != nil {
		return nil, err
	}
	var candidates []int
	for i, v := range z {
		if v > opts.CandidateThreshold {
			candidates = append(candidates, i)
		}
	}

	// One seed per task, drawn up front so no RNG is shared across goroutines
	master := opts.source()
	seeds := make([]int64, len(candidates))
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	opts.Logger.Debug("scoring candidate responses",
		"candidates", len(candidates), "variables", len(z), "parallelism", opts.Parallelism)

	tasks, err := RunTasks(ctx, candidates, opts.Parallelism, opts.FailFast,
		func(ctx context.Context, slot, index int) TaskResult {
			return scoreResponse(ctx, index, xObs, xInt, opts, rand.New(rand.NewSource(seeds[slot])))
		})
	if err != nil {
		return nil, err
	}

	p := len(z)
	res := &HighDimResult{
		Scores:      make([]float64, p),
		SubsetSizes: make([]int, p),
		ZScores:     z,
		Candidates:  candidates,
		Tasks:       tasks,
	}
	for _, t := range tasks {
		if t.Err != nil {
			opts.Logger.Warn("subtask failed", "response", t.Index, "err", t.Err)
		}
		res.Scores[t.Index] = t.Score
		res.SubsetSizes[t.Index] = t.SubsetSize
	}

	if !assignFallback(res.Scores, z) {
		for _, c := range candidates {
			res.Scores[c] = z[c]
		}
	}
	return res, nil
}

// Failed returns the subtasks that ended with an error.
func (r *HighDimResult) Failed() []TaskResult {
	var out []TaskResult
	for _, t := range r.Tasks {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}
