// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

// Package config loads run settings for the rcd command from a YAML file,
// a .env file and RCD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	rcd "github.com/d-setiawan/rcd-go"
)

// Config is the complete run configuration.
type Config struct {
	Thresholds ThresholdConfig `mapstructure:"thresholds" yaml:"thresholds"`
	Shuffles   int             `mapstructure:"shuffles" yaml:"shuffles"`
	Seed       int64           `mapstructure:"seed" yaml:"seed"`
	Whitening  WhiteningConfig `mapstructure:"whitening" yaml:"whitening"`
	HighDim    HighDimConfig   `mapstructure:"highdim" yaml:"highdim"`
	Lasso      LassoConfig     `mapstructure:"lasso" yaml:"lasso"`
	Logging    LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Output     OutputConfig    `mapstructure:"output" yaml:"output"`
}

// ThresholdConfig is either an explicit list of thresholds or a grid.
type ThresholdConfig struct {
	Values []float64 `mapstructure:"values" yaml:"values,omitempty"`
	Min    float64   `mapstructure:"min" yaml:"min"`
	Max    float64   `mapstructure:"max" yaml:"max"`
	Step   float64   `mapstructure:"step" yaml:"step"`
}

type WhiteningConfig struct {
	Shrinkage  float64 `mapstructure:"shrinkage" yaml:"shrinkage"`
	Repair     string  `mapstructure:"repair" yaml:"repair"` // "uniform" or "diagonal"
	EigenFloor float64 `mapstructure:"eigen_floor" yaml:"eigen_floor"`
}

type HighDimConfig struct {
	// "auto" switches to the high-dimensional path when n <= p
	Mode               string  `mapstructure:"mode" yaml:"mode"`
	Parallelism        int     `mapstructure:"parallelism" yaml:"parallelism"`
	CandidateThreshold float64 `mapstructure:"candidate_threshold" yaml:"candidate_threshold"`
	FailFast           bool    `mapstructure:"fail_fast" yaml:"fail_fast"`
}

type LassoConfig struct {
	NAlphas int     `mapstructure:"n_alphas" yaml:"n_alphas"`
	Eps     float64 `mapstructure:"eps" yaml:"eps"`
	Folds   int     `mapstructure:"folds" yaml:"folds"`
	MaxIter int     `mapstructure:"max_iter" yaml:"max_iter"`
	Tol     float64 `mapstructure:"tol" yaml:"tol"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // table, csv, json or yaml
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	r := rcd.DefaultThresholdRange()
	return &Config{
		Thresholds: ThresholdConfig{Min: r.Min, Max: r.Max, Step: r.Step},
		Shuffles:   1,
		Whitening: WhiteningConfig{
			Shrinkage:  0.1,
			Repair:     rcd.RepairUniform.String(),
			EigenFloor: 1e-6,
		},
		HighDim: HighDimConfig{
			Mode:               "auto",
			CandidateThreshold: 1.5,
		},
		Lasso: LassoConfig{
			NAlphas: 100,
			Eps:     1e-3,
			Folds:   5,
			MaxIter: 1000,
			Tol:     1e-4,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Output:  OutputConfig{Format: "table"},
	}
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then RCD_* environment variables such as RCD_SHUFFLES or
// RCD_HIGHDIM_PARALLELISM. Later sources win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix("RCD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Every key needs a default for AutomaticEnv to pick it up on Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("thresholds.values", d.Thresholds.Values)
	v.SetDefault("thresholds.min", d.Thresholds.Min)
	v.SetDefault("thresholds.max", d.Thresholds.Max)
	v.SetDefault("thresholds.step", d.Thresholds.Step)
	v.SetDefault("shuffles", d.Shuffles)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("whitening.shrinkage", d.Whitening.Shrinkage)
	v.SetDefault("whitening.repair", d.Whitening.Repair)
	v.SetDefault("whitening.eigen_floor", d.Whitening.EigenFloor)
	v.SetDefault("highdim.mode", d.HighDim.Mode)
	v.SetDefault("highdim.parallelism", d.HighDim.Parallelism)
	v.SetDefault("highdim.candidate_threshold", d.HighDim.CandidateThreshold)
	v.SetDefault("highdim.fail_fast", d.HighDim.FailFast)
	v.SetDefault("lasso.n_alphas", d.Lasso.NAlphas)
	v.SetDefault("lasso.eps", d.Lasso.Eps)
	v.SetDefault("lasso.folds", d.Lasso.Folds)
	v.SetDefault("lasso.max_iter", d.Lasso.MaxIter)
	v.SetDefault("lasso.tol", d.Lasso.Tol)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("output.format", d.Output.Format)
}

// Validate checks every field for a usable value.
func (c *Config) Validate() error {
	if len(c.Thresholds.Values) == 0 {
		if c.Thresholds.Step <= 0 {
			return &ConfigError{Field: "thresholds.step", Message: "must be positive"}
		}
		if c.Thresholds.Max <= c.Thresholds.Min {
			return &ConfigError{Field: "thresholds.max", Message: "must exceed thresholds.min"}
		}
	}
	if c.Shuffles < 1 {
		return &ConfigError{Field: "shuffles", Message: "must be at least 1"}
	}
	if c.Whitening.Shrinkage <= 0 || c.Whitening.Shrinkage > 1 {
		return &ConfigError{Field: "whitening.shrinkage", Message: "must be in (0, 1]"}
	}
	if c.Whitening.EigenFloor <= 0 {
		return &ConfigError{Field: "whitening.eigen_floor", Message: "must be positive"}
	}
	if _, err := c.repairMode(); err != nil {
		return err
	}
	switch c.HighDim.Mode {
	case "auto", "always", "never":
	default:
		return &ConfigError{Field: "highdim.mode", Message: "must be auto, always or never"}
	}
	if c.HighDim.Parallelism < 0 {
		return &ConfigError{Field: "highdim.parallelism", Message: "must not be negative"}
	}
	if c.HighDim.CandidateThreshold <= 0 {
		return &ConfigError{Field: "highdim.candidate_threshold", Message: "must be positive"}
	}
	if c.Lasso.Folds != 0 && c.Lasso.Folds < 2 {
		return &ConfigError{Field: "lasso.folds", Message: "must be at least 2"}
	}
	switch c.Output.Format {
	case "table", "csv", "json", "yaml":
	default:
		return &ConfigError{Field: "output.format", Message: "must be table, csv, json or yaml"}
	}
	return nil
}

func (c *Config) repairMode() (rcd.RepairMode, error) {
	switch strings.ToLower(c.Whitening.Repair) {
	case "", "uniform":
		return rcd.RepairUniform, nil
	case "diagonal":
		return rcd.RepairDiagonal, nil
	default:
		return 0, &ConfigError{Field: "whitening.repair", Message: "must be uniform or diagonal"}
	}
}

// UseHighDim reports whether a data set with n samples and p variables
// should go through the high-dimensional path.
func (c *Config) UseHighDim(n, p int) bool {
	switch c.HighDim.Mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return n <= p
	}
}

// ToOptions builds the low-dimensional search options.
func (c *Config) ToOptions(logger *slog.Logger) rcd.Options {
	repair, _ := c.repairMode()
	var thresholds []float64
	if len(c.Thresholds.Values) > 0 {
		thresholds = c.Thresholds.Values
	}
	return rcd.Options{
		Thresholds: thresholds,
		Range:      rcd.ThresholdRange{Min: c.Thresholds.Min, Max: c.Thresholds.Max, Step: c.Thresholds.Step},
		NShuffles:  c.Shuffles,
		Seed:       c.Seed,
		Whitening: rcd.WhiteningOptions{
			Shrinkage:  c.Whitening.Shrinkage,
			Repair:     repair,
			EigenFloor: c.Whitening.EigenFloor,
		},
		Logger: logger,
	}
}

// ToHighDimOptions builds the high-dimensional orchestrator options.
func (c *Config) ToHighDimOptions(logger *slog.Logger) rcd.HighDimOptions {
	return rcd.HighDimOptions{
		Options:            c.ToOptions(logger),
		Parallelism:        c.HighDim.Parallelism,
		CandidateThreshold: c.HighDim.CandidateThreshold,
		FailFast:           c.HighDim.FailFast,
		Lasso: rcd.LassoOptions{
			NAlphas: c.Lasso.NAlphas,
			Eps:     c.Lasso.Eps,
			Folds:   c.Lasso.Folds,
			MaxIter: c.Lasso.MaxIter,
			Tol:     c.Lasso.Tol,
		},
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
