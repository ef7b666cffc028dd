package main

import (
	"os"

	"codeatlas/internal/analysis"
	"codeatlas/internal/config"
	"codeatlas/internal/logging"
	"codeatlas/internal/storage"
	"codeatlas/internal/version"

	"github.com/spf13/cobra"
)

var (
	// repoFlag is the tree to analyze; defaults to the working directory.
	repoFlag string
	// logLevelFlag overrides the configured log level.
	logLevelFlag string
	// logFormatFlag overrides the configured log format.
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "codeatlas",
	Short: "Code Atlas - codebase structure analysis",
	Long: `Code Atlas scans a web-app-shaped codebase and derives a browsable model
of its structure: files and their exports, the import dependency graph,
API routes, pages, modules, and external service usage. The model is served
over HTTP for the dashboard and queryable from this CLI.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("Code Atlas version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Repository root to analyze (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: human, json")
}

// resolveRepoRoot determines the tree to analyze. Precedence: --repo flag,
// CODEATLAS_REPO env var, working directory.
func resolveRepoRoot() (string, error) {
	if repoFlag != "" {
		return repoFlag, nil
	}
	if env := os.Getenv("CODEATLAS_REPO"); env != "" {
		return env, nil
	}
	return os.Getwd()
}

// buildLogger creates the process logger from config plus flag overrides.
func buildLogger(cfg *config.Config) *logging.Logger {
	format := cfg.Logging.Format
	if logFormatFlag != "" {
		format = logFormatFlag
	}
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	return logging.New(logging.Config{
		Format: logging.Format(format),
		Level:  logging.ParseLevel(level),
	})
}

// buildStore wires config, persistence, and the analysis store for one repo,
// restoring any persisted snapshot.
func buildStore(repoRoot string) (*analysis.Store, *config.Config, *logging.Logger, error) {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger := buildLogger(cfg)
	store := analysis.NewStore(cfg, storage.NewFileStore(repoRoot, logger), logger)
	if err := store.LoadPersisted(); err != nil {
		logger.Warn("could not restore persisted snapshot", logging.Fields{
			"error": err.Error(),
		})
	}
	return store, cfg, logger, nil
}

// buildEngine wires a store plus its query engine.
func buildEngine(repoRoot string) (*analysis.Engine, *analysis.Store, *config.Config, *logging.Logger, error) {
	store, cfg, logger, err := buildStore(repoRoot)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	engine, err := analysis.NewEngine(store, &cfg.Graph, logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return engine, store, cfg, logger, nil
}
