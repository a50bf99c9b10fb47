// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMarginStatistic(t *testing.T) {
	tests := []struct {
		name   string
		xt     []float64
		argmax int
		margin float64
		ok     bool
	}{
		{"clear winner", []float64{1, 3, 2}, 1, 0.5, true},
		{"tie picks first", []float64{2, 2, 1}, 0, 0, true},
		{"zero runner-up", []float64{0, 5, 0}, 1, 0, false},
		{"single value", []float64{4}, 0, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx, m, ok := marginStatistic(tc.xt)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.argmax, idx)
				assert.InDelta(t, tc.margin, m, 1e-12)
			}
		})
	}
}

func TestAssignFallback(t *testing.T) {
	scores := []float64{0, 4, 0, 2}
	z := []float64{1, 9, 3, 8}
	require.True(t, assignFallback(scores, z))
	// smallest positive score is 2, so the largest fallback is 1
	assert.InDeltaSlice(t, []float64{1.0 / 3, 4, 1, 2}, scores, 1e-12)

	zeros := []float64{0, 0}
	assert.False(t, assignFallback(zeros, []float64{1, 2}))
	assert.Equal(t, []float64{0, 0}, zeros)

	full := []float64{1, 2}
	assert.True(t, assignFallback(full, []float64{5, 5}))
	assert.Equal(t, []float64{1, 2}, full)
}

func TestScoreFindsShiftedVariable(t *testing.T) {
	xObs := gaussianObs(rand.New(rand.NewSource(10)), 100, 5)
	xInt := shiftedSample(xObs, []float64{0.5, 0.5, 10, 0.5, 0.5})

	res, err := Score(xObs, xInt, Options{Seed: 1})
	require.NoError(t, err)
	require.Len(t, res.Scores, 5)
	assert.Equal(t, 2, Rank(res.Scores)[0])
	assert.Positive(t, res.Evaluated)
	require.Len(t, res.Thresholds, 2)

	for j, s := range res.Scores {
		if j != 2 {
			assert.Less(t, s, res.Scores[2])
		}
	}
}

func TestScoreOnlyTargetDeviates(t *testing.T) {
	// Every normal variable sits at its mean, so every whitened runner-up is 0
	// and the z-score fallback decides the ranking.
	xObs := gaussianObs(rand.New(rand.NewSource(11)), 100, 5)
	xInt := shiftedSample(xObs, []float64{0, 0, 10, 0, 0})

	res, err := Score(xObs, xInt, Options{Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Evaluated)
	assert.Equal(t, 1, res.Skipped)
	assert.InDeltaSlice(t, res.ZScores, res.Scores, 1e-12)
	assert.Equal(t, 2, Rank(res.Scores)[0])
}

func TestScoreNoDeviation(t *testing.T) {
	xObs := gaussianObs(rand.New(rand.NewSource(12)), 30, 4)
	xInt := shiftedSample(xObs, make([]float64, 4))

	res, err := Score(xObs, xInt, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Thresholds)
	assert.Zero(t, res.Evaluated)
	assert.InDeltaSlice(t, make([]float64, 4), res.Scores, 1e-12)
}

func TestScoreReproducibleWithSeed(t *testing.T) {
	xObs := gaussianObs(rand.New(rand.NewSource(13)), 60, 6)
	xInt := shiftedSample(xObs, []float64{1, -2, 0.4, 6, 1.5, -0.7})
	opts := Options{Seed: 99, NShuffles: 3}

	a, err := Score(xObs, xInt, opts)
	require.NoError(t, err)
	b, err := Score(xObs, xInt, opts)
	require.NoError(t, err)
	assert.Equal(t, a.Scores, b.Scores)
}

func TestScoreExplicitThresholds(t *testing.T) {
	xObs := gaussianObs(rand.New(rand.NewSource(14)), 60, 4)
	xInt := shiftedSample(xObs, []float64{3, 0.2, 5, 0.1})

	res, err := Score(xObs, xInt, Options{Thresholds: []float64{1}, NShuffles: 2, Seed: 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, res.Thresholds)
	// two aberrant variables, two shuffles each
	assert.Equal(t, 4, res.Evaluated)
}

func TestScoreErrors(t *testing.T) {
	xObs := gaussianObs(rand.New(rand.NewSource(15)), 10, 3)

	_, err := Score(xObs, []float64{1, 2}, Options{})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Score(xObs, []float64{5, 0, 0}, Options{Range: ThresholdRange{Min: 0, Max: 1, Step: -1}})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestScoreSingularCovariance(t *testing.T) {
	xObs := duplicatedObs(17, 40, 10)
	offsets := make([]float64, 10)
	offsets[0], offsets[1], offsets[6] = 4, 4, 6
	xInt := shiftedSample(xObs, offsets)

	res, err := Score(xObs, xInt, Options{Seed: 3, Whitening: WhiteningOptions{Repair: RepairUniform}})
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
	assert.Nil(t, res)
}

func TestScoreBatch(t *testing.T) {
	xObs := gaussianObs(rand.New(rand.NewSource(16)), 80, 4)
	rows := mat.NewDense(2, 4, nil)
	rows.SetRow(0, shiftedSample(xObs, []float64{8, 0.3, 0.3, 0.3}))
	rows.SetRow(1, shiftedSample(xObs, []float64{0.3, 0.3, 0.3, 8}))

	res, err := ScoreBatch(xObs, rows, Options{Seed: 2})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, 0, Rank(res[0].Scores)[0])
	assert.Equal(t, 3, Rank(res[1].Scores)[0])

	_, err = ScoreBatch(xObs, nil, Options{})
	assert.ErrorIs(t, err, ErrNilInput)
}

func TestRank(t *testing.T) {
	assert.Equal(t, []int{2, 0, 3, 1}, Rank([]float64{3, 1, 7, 3}))
	assert.Empty(t, Rank(nil))
}
