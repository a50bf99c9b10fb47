// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	rcd "github.com/d-setiawan/rcd-go"
)

var (
	scoreObsPath     string
	scoreIntPath     string
	scoreOutPath     string
	scoreFormat      string
	scoreRow         int
	scoreAllRows     bool
	scoreShuffles    int
	scoreSeed        int64
	scoreHighDim     string
	scoreParallelism int
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score every variable of an interventional sample",
	Long: `Score every variable of an interventional sample as a root cause candidate.

Both files are CSV or XLSX with a header row of variable names; the column
order must match. The high-dimensional path (Lasso reduction per candidate)
is used automatically when the observational data has no more rows than
variables, or when forced with --highdim=always.

Examples:
  rcd score --obs healthy.csv --int patient.csv
  rcd score --obs obs.xlsx --int int.xlsx --all-rows --format=json
  rcd score --obs obs.csv --int int.csv --highdim=always --parallelism=8`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreObsPath, "obs", "", "Observational data (CSV or XLSX)")
	scoreCmd.Flags().StringVar(&scoreIntPath, "int", "", "Interventional data (CSV or XLSX)")
	scoreCmd.Flags().StringVarP(&scoreOutPath, "out", "o", "", "Output file (default stdout)")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "", "Output format: table, csv, json, yaml")
	scoreCmd.Flags().IntVar(&scoreRow, "row", 0, "Interventional row to score")
	scoreCmd.Flags().BoolVar(&scoreAllRows, "all-rows", false, "Score every interventional row")
	scoreCmd.Flags().IntVar(&scoreShuffles, "shuffles", 0, "Shuffles per aberrant variable")
	scoreCmd.Flags().Int64Var(&scoreSeed, "seed", 0, "Random seed (0 is time based)")
	scoreCmd.Flags().StringVar(&scoreHighDim, "highdim", "", "High-dimensional path: auto, always, never")
	scoreCmd.Flags().IntVar(&scoreParallelism, "parallelism", 0, "Concurrent subproblems on the high-dimensional path")
	_ = scoreCmd.MarkFlagRequired("obs")
	_ = scoreCmd.MarkFlagRequired("int")
	rootCmd.AddCommand(scoreCmd)
}

// applyScoreFlags copies the flags the user set over the loaded config.
func applyScoreFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = scoreFormat
	}
	if flags.Changed("shuffles") {
		cfg.Shuffles = scoreShuffles
	}
	if flags.Changed("seed") {
		cfg.Seed = scoreSeed
	}
	if flags.Changed("highdim") {
		cfg.HighDim.Mode = scoreHighDim
	}
	if flags.Changed("parallelism") {
		cfg.HighDim.Parallelism = scoreParallelism
	}
	return cfg.Validate()
}

func runScore(cmd *cobra.Command, args []string) error {
	if err := applyScoreFlags(cmd); err != nil {
		return err
	}
	runID := uuid.New().String()
	log := logger.With("run", runID)

	// 1. Load both data sets
	obs, err := rcd.LoadDataset(scoreObsPath)
	if err != nil {
		return err
	}
	intv, err := rcd.LoadDataset(scoreIntPath)
	if err != nil {
		return err
	}
	if !slices.Equal(obs.VarNames, intv.VarNames) {
		return fmt.Errorf("variables differ between %s and %s", scoreObsPath, scoreIntPath)
	}
	n, p := obs.X.Dims()
	log.Info("loaded data", "samples", n, "variables", p)

	// 2. Choose the interventional rows
	m, _ := intv.X.Dims()
	rows := []int{scoreRow}
	if scoreAllRows {
		rows = make([]int, m)
		for i := range rows {
			rows[i] = i
		}
	} else if scoreRow < 0 || scoreRow >= m {
		return fmt.Errorf("row %d out of range, %s has %d rows", scoreRow, scoreIntPath, m)
	}

	// 3. Score every row with one shared random source
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	highDim := cfg.UseHighDim(n, p)
	reports := make([]*Report, 0, len(rows))
	for _, row := range rows {
		x := mat.Row(nil, row, intv.X)
		var r *Report
		if highDim {
			r, err = scoreHighDimRow(cmd, obs, x, rng, runID, row)
		} else {
			r, err = scoreLowDimRow(obs, x, rng, runID, row)
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		log.Info("scored row", "row", row, "method", r.Method, "top", r.Summary.Top)
		reports = append(reports, r)
	}

	// 4. Write the report
	var w io.Writer = cmd.OutOrStdout()
	if scoreOutPath != "" {
		f, err := os.Create(scoreOutPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := writeReports(w, reports, cfg.Output.Format); err != nil {
		return err
	}
	if scoreOutPath != "" {
		log.Info("report written", "path", scoreOutPath)
	}
	return nil
}

func scoreLowDimRow(obs *rcd.Dataset, x []float64, rng *rand.Rand, runID string, row int) (*Report, error) {
	opts := cfg.ToOptions(logger)
	opts.Rand = rng
	res, err := rcd.Score(obs.X, x, opts)
	if err != nil {
		return nil, err
	}
	r := newReport(runID, row, "lowdim", obs.VarNames, res.Scores, res.ZScores, nil)
	r.Evaluated = res.Evaluated
	return r, nil
}

func scoreHighDimRow(cmd *cobra.Command, obs *rcd.Dataset, x []float64, rng *rand.Rand, runID string, row int) (*Report, error) {
	opts := cfg.ToHighDimOptions(logger)
	opts.Rand = rng
	res, err := rcd.ScoreHighDim(cmd.Context(), obs.X, x, opts)
	if err != nil {
		return nil, err
	}
	r := newReport(runID, row, "highdim", obs.VarNames, res.Scores, res.ZScores, res.SubsetSizes)
	for _, t := range res.Failed() {
		r.Failed = append(r.Failed, t.Index)
	}
	return r, nil
}
