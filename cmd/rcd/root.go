// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 19th 2026
// Project: Permutation-based Whitening for Root Cause Discovery
// Class: 02-613 at Caregie Mellon University

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/d-setiawan/rcd-go/internal/config"
	"github.com/d-setiawan/rcd-go/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// Set by loadConfig before any subcommand runs
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rcd",
	Short: "Root cause discovery by permutation-based whitening",
	Long: `rcd compares an interventional sample against observational data and
scores every variable by how likely it is to be the root cause of the shift.

Settings come from --config (YAML), a .env file and RCD_* environment
variables, in that order of increasing priority; flags override all of them.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, quiet")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	cfg = c
	logger = logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	return nil
}
