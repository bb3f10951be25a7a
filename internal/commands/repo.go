package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/expenso-dev/expenso/internal/config"
	"github.com/expenso-dev/expenso/internal/ingest"
	"github.com/expenso-dev/expenso/internal/logger"
)

// globalLogLevel is the --log-level flag, set before any subcommand runs.
var globalLogLevel string

// addRepoFlag registers the --repo flag shared by commands that work on a repo.
func addRepoFlag(cmd *cobra.Command, repoDir *string) {
	cmd.Flags().StringVar(repoDir, "repo", "", "repository directory (default $EXPENSO_REPO or .)")
}

func resolveRepo(repoDir string) (string, error) {
	if repoDir == "" {
		repoDir = config.RepoFromEnv(".")
	}
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// repo bundles what a command needs to work on one expenso repo.
type repo struct {
	root string
	cfg  *config.Config
	in   *ingest.Ingester
	log  zerolog.Logger
}

func openRepo(repoDir string) (*repo, error) {
	root, err := resolveRepo(repoDir)
	if err != nil {
		return nil, err
	}
	cfg, err := ingest.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if globalLogLevel != "" {
		level = globalLogLevel
	}
	log := logger.New(logger.ParseLevel(level))

	in, err := ingest.OpenConfig(root, cfg, &log)
	if err != nil {
		return nil, err
	}
	return &repo{root: root, cfg: cfg, in: in, log: log}, nil
}
