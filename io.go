// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package rcd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"
)

// Dataset is a numeric table: rows are samples, columns are variables.
type Dataset struct {
	X        *mat.Dense
	VarNames []string
}

// LoadDataset reads a CSV or XLSX file with a header row of variable names.
// For XLSX the first sheet is used.
func LoadDataset(path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

// LoadCSV loads a CSV file into a Dataset.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err) // +2 for header + 1-based
		}
		records = append(records, record)
	}
	return parseRecords(path, header, records)
}

// LoadXLSX loads the first sheet of an Excel workbook into a Dataset.
func LoadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty header in %s", path)
	}
	return parseRecords(path, rows[0], rows[1:])
}

func parseRecords(path string, header []string, records [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("empty header in %s", path)
	}
	K := len(header)

	var data []float64
	rows := 0
	for i, record := range records {
		// Skip completely empty lines
		if len(record) == 0 || (len(record) == 1 && record[0] == "") {
			continue
		}
		if len(record) != K {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+2, K, len(record))
		}
		for j, s := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("parse float at row %d col %d (%q): %w", i+2, j+1, s, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if rows == 0 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	names := make([]string, K)
	for j, h := range header {
		names[j] = strings.TrimSpace(h)
	}
	return &Dataset{X: mat.NewDense(rows, K, data), VarNames: names}, nil
}

// WriteCSV writes a Dataset back out with its header.
func (d *Dataset) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(d.VarNames); err != nil {
		return err
	}
	r, c := d.X.Dims()
	record := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			record[j] = strconv.FormatFloat(d.X.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ScoreHeader names the columns of the records built by ScoreRecords.
var ScoreHeader = []string{"Variable", "Score", "ZScore", "Rank"}

// ScoreRecords formats one record per variable, in column order, with the
// rank of each variable (1 = most likely root cause).
func ScoreRecords(names []string, scores, z []float64) ([][]string, error) {
	if len(names) != len(scores) || len(z) != len(scores) {
		return nil, ErrDimensionMismatch
	}
	rank := make([]int, len(scores))
	for pos, idx := range Rank(scores) {
		rank[idx] = pos + 1
	}

	records := make([][]string, len(names))
	for i, name := range names {
		records[i] = []string{
			name,
			fmt.Sprintf("%f", scores[i]),
			fmt.Sprintf("%f", z[i]),
			fmt.Sprintf("%d", rank[i]),
		}
	}
	return records, nil
}

// WriteScoresCSV writes ScoreHeader followed by ScoreRecords.
func WriteScoresCSV(w io.Writer, names []string, scores, z []float64) error {
	records, err := ScoreRecords(names, scores, z)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(ScoreHeader); err != nil {
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

// PrintScores writes a ranked score table, most likely root cause first.
func PrintScores(w io.Writer, names []string, scores, z []float64) {
	fmt.Fprintf(w, "\n=== Root Cause Scores ===\n")
	fmt.Fprintf(w, "%-6s%-20s%14s%14s\n", "rank", "variable", "score", "zscore")
	for pos, idx := range Rank(scores) {
		fmt.Fprintf(w, "%-6d%-20s%14.6f%14.6f\n", pos+1, names[idx], scores[idx], z[idx])
	}
}
