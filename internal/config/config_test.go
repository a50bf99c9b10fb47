// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rcd "github.com/d-setiawan/rcd-go"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts := cfg.ToOptions(nil)
	assert.Equal(t, rcd.DefaultThresholdRange(), opts.Range)
	assert.Nil(t, opts.Thresholds)
	assert.Equal(t, 1, opts.NShuffles)
	assert.Equal(t, rcd.RepairUniform, opts.Whitening.Repair)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	d := Default()
	assert.Equal(t, d.Shuffles, cfg.Shuffles)
	assert.Equal(t, d.Whitening, cfg.Whitening)
	assert.Equal(t, d.HighDim, cfg.HighDim)
	assert.Equal(t, d.Lasso, cfg.Lasso)
	assert.Equal(t, d.Output, cfg.Output)
	assert.Empty(t, cfg.Thresholds.Values)
	assert.Equal(t, d.Thresholds.Step, cfg.Thresholds.Step)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "rcd.yaml")
	body := `
shuffles: 4
seed: 17
whitening:
  repair: diagonal
highdim:
  mode: always
  parallelism: 3
lasso:
  folds: 10
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("RCD_SEED", "23")
	t.Setenv("RCD_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Shuffles)
	assert.EqualValues(t, 23, cfg.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.UseHighDim(100, 5))
	// untouched keys keep their defaults
	assert.Equal(t, 1.5, cfg.HighDim.CandidateThreshold)

	hd := cfg.ToHighDimOptions(nil)
	assert.Equal(t, 3, hd.Parallelism)
	assert.Equal(t, 10, hd.Lasso.Folds)
	assert.Equal(t, rcd.RepairDiagonal, hd.Whitening.Repair)
	assert.Equal(t, 4, hd.NShuffles)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RCD_SHUFFLES=6\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RCD_SHUFFLES") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Shuffles)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shuffles: 0\n"), 0o644))

	_, err := Load(path)
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "shuffles", cerr.Field)

	t.Setenv("RCD_HIGHDIM_CANDIDATE_THRESHOLD", "0")
	_, err = Load("")
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "highdim.candidate_threshold", cerr.Field)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"thresholds.step", func(c *Config) { c.Thresholds.Step = 0 }},
		{"thresholds.max", func(c *Config) { c.Thresholds.Max = c.Thresholds.Min }},
		{"whitening.shrinkage", func(c *Config) { c.Whitening.Shrinkage = 2 }},
		// zero would be silently replaced by the library default
		{"whitening.shrinkage", func(c *Config) { c.Whitening.Shrinkage = 0 }},
		{"whitening.eigen_floor", func(c *Config) { c.Whitening.EigenFloor = 0 }},
		{"whitening.repair", func(c *Config) { c.Whitening.Repair = "ridge" }},
		{"highdim.mode", func(c *Config) { c.HighDim.Mode = "sometimes" }},
		{"highdim.parallelism", func(c *Config) { c.HighDim.Parallelism = -1 }},
		{"highdim.candidate_threshold", func(c *Config) { c.HighDim.CandidateThreshold = 0 }},
		{"lasso.folds", func(c *Config) { c.Lasso.Folds = 1 }},
		{"output.format", func(c *Config) { c.Output.Format = "xml" }},
	}
	for _, tc := range tests {
		t.Run(tc.field, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tc.field, cerr.Field)
		})
	}

	// explicit thresholds make the grid irrelevant
	cfg := Default()
	cfg.Thresholds.Values = []float64{1, 2}
	cfg.Thresholds.Step = 0
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, []float64{1, 2}, cfg.ToOptions(nil).Thresholds)
}

func TestUseHighDim(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.UseHighDim(10, 10))
	assert.False(t, cfg.UseHighDim(11, 10))
	cfg.HighDim.Mode = "never"
	assert.False(t, cfg.UseHighDim(5, 100))
}
