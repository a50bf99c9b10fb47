// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/montanaflynn/stats"
	"gopkg.in/yaml.v3"

	rcd "github.com/d-setiawan/rcd-go"
)

// VariableScore is one line of a report.
type VariableScore struct {
	Name       string  `json:"name" yaml:"name"`
	Score      float64 `json:"score" yaml:"score"`
	ZScore     float64 `json:"zscore" yaml:"zscore"`
	Rank       int     `json:"rank" yaml:"rank"`
	SubsetSize int     `json:"subset_size,omitempty" yaml:"subset_size,omitempty"`
}

// Summary describes the score distribution of one report.
type Summary struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Max    float64 `json:"max" yaml:"max"`
	Top    string  `json:"top" yaml:"top"`
}

// Report holds the ranked scores of one interventional row.
type Report struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	Row       int             `json:"row" yaml:"row"`
	Method    string          `json:"method" yaml:"method"`
	Evaluated int             `json:"evaluated,omitempty" yaml:"evaluated,omitempty"`
	Failed    []int           `json:"failed,omitempty" yaml:"failed,omitempty"`
	Summary   Summary         `json:"summary" yaml:"summary"`
	Variables []VariableScore `json:"variables" yaml:"variables"`

	names  []string
	scores []float64
	z      []float64
}

// newReport orders the variables by rank. subsetSizes may be nil.
func newReport(runID string, row int, method string, names []string, scores, z []float64, subsetSizes []int) *Report {
	r := &Report{
		RunID:  runID,
		Row:    row,
		Method: method,
		names:  names,
		scores: scores,
		z:      z,
	}
	for pos, idx := range rcd.Rank(scores) {
		v := VariableScore{Name: names[idx], Score: scores[idx], ZScore: z[idx], Rank: pos + 1}
		if subsetSizes != nil {
			v.SubsetSize = subsetSizes[idx]
		}
		r.Variables = append(r.Variables, v)
	}

	r.Summary.Mean, _ = stats.Mean(scores)
	r.Summary.Median, _ = stats.Median(scores)
	r.Summary.Max, _ = stats.Max(scores)
	if len(r.Variables) > 0 {
		r.Summary.Top = r.Variables[0].Name
	}
	return r
}

// writeReports renders reports as table, csv, json or yaml.
func writeReports(w io.Writer, reports []*Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case "csv":
		return writeReportsCSV(w, reports)
	case "table":
		for _, r := range reports {
			fmt.Fprintf(w, "run %s  row %d  method %s\n", r.RunID, r.Row, r.Method)
			rcd.PrintScores(w, r.names, r.scores, r.z)
			fmt.Fprintf(w, "\nmean %.4f  median %.4f  max %.4f  top %s\n\n",
				r.Summary.Mean, r.Summary.Median, r.Summary.Max, r.Summary.Top)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeReportsCSV writes a single table, keyed by the interventional row.
func writeReportsCSV(w io.Writer, reports []*Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{"Row"}, rcd.ScoreHeader...)); err != nil {
		return err
	}
	for _, r := range reports {
		records, err := rcd.ScoreRecords(r.names, r.scores, r.z)
		if err != nil {
			return fmt.Errorf("row %d: %w", r.Row, err)
		}
		row := strconv.Itoa(r.Row)
		for _, rec := range records {
			if err := writer.Write(append([]string{row}, rec...)); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
