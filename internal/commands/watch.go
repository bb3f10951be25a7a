package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/expenso-dev/expenso/internal/importer"
	"github.com/expenso-dev/expenso/internal/logger"
	"github.com/expenso-dev/expenso/internal/watch"
)

func newWatchCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import files as they are dropped into import/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, r)
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func runWatch(ctx context.Context, r *repo) error {
	dir := filepath.Join(r.root, importer.ImportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Files already waiting are imported before watching starts.
	results, err := r.in.Scan(false)
	if err != nil {
		return err
	}
	for _, res := range results {
		printResult(res, false)
	}

	w := &watch.Watcher{
		Dir:    dir,
		Accept: r.in.Registry.Supports,
		Log:    &r.log,
		Handle: func(ctx context.Context, path string) error {
			res, err := r.in.Process(path, false)
			if err != nil {
				return err
			}
			log := logger.FromContext(ctx)
			log.Info().Int("imported", len(res.Imported)).Str("commit", res.Commit).Msg("watched file imported")
			printResult(res, false)
			return nil
		},
	}
	return w.Run(ctx)
}
