package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpascale43/minipack/internal/build"
	"github.com/cpascale43/minipack/internal/config"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Bundle the entry module into a single script",
	Long: `Build the module graph from the configured entry, order it so every
dependency precedes its importers, and write the linked bundle.

Examples:
  minipack build                      # Bundle src/index.js into dist/bundle.js
  minipack build --entry app/main.js  # Bundle a different entry
  minipack build --strict-cycles      # Fail instead of tolerating import cycles`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	addBundleFlags(buildCmd.Flags())
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	pipeline := build.NewPipeline(cfg, newLogger())
	result := pipeline.Build(cmd.Context())
	if result.Error != nil {
		return result.Error
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Bundled %d modules into %s (%d bytes) in %s\n",
		len(result.Order), result.OutputPath, result.Bundle.Size, result.Duration.Round(100*time.Microsecond))
	return nil
}
