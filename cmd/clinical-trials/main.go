// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the clinical-trials CLI.
// Subcommands search the ClinicalTrials.gov registry, classify interventional
// trials, derive phase-date rows, and export the results as CSV or JSON.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/clinical-trials/internal/logging"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Populated by PersistentPreRunE before any subcommand runs.
var (
	cfg    types.Config
	logger *logrus.Logger
	runID  string
)

// rootCmd is the base command for the clinical-trials CLI.
var rootCmd = &cobra.Command{
	Use:   "clinical-trials",
	Short: "Retrieve, classify, and export ClinicalTrials.gov studies",
	Long: `clinical-trials retrieves study records from the ClinicalTrials.gov v2 API,
normalizes them, and exports flat CSV or JSON files with summary reports.

The interventional subcommands keep only interventional studies and add
intervention category and phase flags. The phases subcommands break trials
down by phase and derive approximate Phase 1 / Phase 3 windows per product.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := decodeConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = c

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.Logging.Level = logrus.DebugLevel.String()
		}
		runID = uuid.NewString()
		logger = logging.New(cfg.Logging)
		logger.AddHook(runIDHook{id: runID})
		logger.WithField("command", cmd.CommandPath()).Debug("starting run")
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./clinical-trials.yaml or ~/.config/clinical-trials/clinical-trials.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringP("output-dir", "o", "", "output directory for exported files (default ./data)")
	rootCmd.PersistentFlags().StringP("format", "f", "", "export format: csv, json, or both (default csv)")

	_ = viper.BindPFlag("export.output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	_ = viper.BindPFlag("export.format", rootCmd.PersistentFlags().Lookup("format"))
}

func initConfig() {
	// A missing .env file is normal.
	_ = godotenv.Load()

	setDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("clinical-trials")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "clinical-trials"))
		}
	}

	viper.SetEnvPrefix("CLINICAL_TRIALS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// runIDHook tags every log entry with the run identifier.
type runIDHook struct {
	id string
}

func (h runIDHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h runIDHook) Fire(e *logrus.Entry) error {
	e.Data["run_id"] = h.id
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
