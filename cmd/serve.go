package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cpascale43/minipack/internal/build"
	"github.com/cpascale43/minipack/internal/config"
	"github.com/cpascale43/minipack/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the development server with live reload",
	Long: `Serve the bundle over HTTP, watch the source tree, and push a reload
to connected browsers whenever a rebuild succeeds.

Examples:
  minipack serve                  # Serve on localhost:8080
  minipack serve --port 3000      # Serve on a different port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addBundleFlags(serveCmd.Flags())
	addServerFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	pipeline := build.NewPipeline(cfg, logger)
	rebuilder := build.NewRebuilder(pipeline, logger)
	devServer := server.NewDevServer(cfg, logger)
	pipeline.AddCallback(devServer.OnBuild)

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

	rebuilder.Trigger()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", devServer.Addr())

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return devServer.Start(groupCtx)
	})
	group.Go(func() error {
		return rebuilder.Run(groupCtx)
	})

	err = group.Wait()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
