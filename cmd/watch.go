package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpascale43/minipack/internal/build"
	"github.com/cpascale43/minipack/internal/config"
	"github.com/cpascale43/minipack/internal/logging"
	"github.com/cpascale43/minipack/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Rebuild the bundle on source changes",
	Long: `Build once, then watch the source tree and rebuild whenever a module
changes. Changes arriving during a build collapse into a single rebuild.

Examples:
  minipack watch                  # Watch with the configured paths
  minipack watch --strict-cycles  # Treat new import cycles as build failures`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addBundleFlags(watchCmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	pipeline := build.NewPipeline(cfg, logger)
	rebuilder := build.NewRebuilder(pipeline, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fw, err := startWatching(cfg, logger, rebuilder)
	if err != nil {
		return err
	}
	defer func() { _ = fw.Stop() }()
	if err := fw.Start(ctx); err != nil {
		return err
	}

	// First build before any change arrives
	rebuilder.Trigger()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %v for changes (Ctrl+C to stop)\n", cfg.Watch.Paths)
	err = rebuilder.Run(ctx)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// startWatching builds a file watcher wired to trigger rebuilds
func startWatching(cfg *config.Config, logger logging.Logger, rebuilder *build.Rebuilder) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, logger)
	if err != nil {
		return nil, err
	}

	fw.AddFilter(watcher.ExtensionFilter(cfg.Resolve.Extensions))
	fw.AddFilter(watcher.IgnoreFilter(cfg.Watch.Ignore))
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		rebuilder.Trigger()
		return nil
	})

	for _, path := range cfg.Watch.Paths {
		if err := fw.AddRecursive(path); err != nil {
			_ = fw.Stop()
			return nil, fmt.Errorf("watching %s: %w", path, err)
		}
	}
	return fw, nil
}
