// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the requirements-engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/requirements-engine/internal/logging"
	"github.com/pdiddy/requirements-engine/internal/pipeline"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the requirements-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "requirements-engine",
	Short: "Turn plain-English API descriptions into structured requirements",
	Long: `requirements-engine reads a plain-English description of a backend API and
produces structured project requirements (entities, fields, relationships,
framework, database, auth) plus a planned API topology (build order,
endpoints, directory layout, complexity metrics).

Use extract for requirements only, plan for requirements and topology, batch
for a directory of descriptions, serve for the HTTP surface, and history to
browse earlier runs.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./requirements-engine.yaml or ~/.config/requirements-engine/requirements-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("history-dir", "", "directory containing the run history database")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("history.dir", rootCmd.PersistentFlags().Lookup("history-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("requirements-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "requirements-engine"))
		}
	}

	viper.SetEnvPrefix("REQUIREMENTS_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults(d types.Config) {
	viper.SetDefault("extraction.workers", d.Extraction.Workers)
	viper.SetDefault("extraction.entity_threshold", d.Extraction.EntityThreshold)
	viper.SetDefault("extraction.entity_templates", d.Extraction.EntityTemplates)
	viper.SetDefault("extraction.vocabulary_file", d.Extraction.VocabularyFile)
	viper.SetDefault("plan.auth_routes", d.Plan.AuthRoutes)
	viper.SetDefault("plan.utility_routes", d.Plan.UtilityRoutes)
	viper.SetDefault("history.dir", d.History.Dir)
	viper.SetDefault("serve.addr", d.Serve.Addr)
	viper.SetDefault("batch.pattern", d.Batch.Pattern)
	viper.SetDefault("batch.output_dir", d.Batch.OutputDir)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

// loadConfig reads the merged flag, environment and file settings.
func loadConfig() types.Config {
	return types.Config{
		Extraction: types.ExtractionConfig{
			Workers:         viper.GetInt("extraction.workers"),
			EntityThreshold: viper.GetInt("extraction.entity_threshold"),
			EntityTemplates: viper.GetBool("extraction.entity_templates"),
			VocabularyFile:  viper.GetString("extraction.vocabulary_file"),
		},
		Plan: types.PlanConfig{
			AuthRoutes:    viper.GetBool("plan.auth_routes"),
			UtilityRoutes: viper.GetBool("plan.utility_routes"),
		},
		History: types.HistoryConfig{Dir: viper.GetString("history.dir")},
		Serve:   types.ServeConfig{Addr: viper.GetString("serve.addr")},
		Batch: types.BatchConfig{
			Pattern:   viper.GetString("batch.pattern"),
			OutputDir: viper.GetString("batch.output_dir"),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
}

// newPipeline builds the logger and pipeline shared by every subcommand.
func newPipeline(cfg types.Config) (*pipeline.Pipeline, *zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}
	return p, logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
