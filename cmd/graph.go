package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cpascale43/minipack/internal/config"
	"github.com/cpascale43/minipack/internal/graph"
	"github.com/cpascale43/minipack/internal/resolver"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:     "graph",
	Aliases: []string{"g"},
	Short:   "Inspect the module graph without bundling",
	Long: `Build the module graph from the configured entry and print it in
linear (dependency-first) order, including any import cycles found.

Examples:
  minipack graph                  # Print the graph as text
  minipack graph --format json    # Machine-readable output`,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addBundleFlags(graphCmd.Flags())
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "text", "output format (text, json)")
}

// graphReport is the JSON shape of the graph command's output
type graphReport struct {
	Entry   string              `json:"entry"`
	Order   []string            `json:"order"`
	Imports map[string][]string `json:"imports"`
	Cycles  [][]string          `json:"cycles,omitempty"`
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	g, err := buildGraph(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	report := graphReport{
		Entry:   relPath(cfg, g.Entry()),
		Order:   make([]string, 0, g.Count()),
		Imports: make(map[string][]string, g.Count()),
		Cycles:  relCycles(cfg, g.DetectCycles()),
	}
	for _, path := range g.Linearize() {
		report.Order = append(report.Order, relPath(cfg, path))
		deps := g.Dependencies(path)
		rels := make([]string, 0, len(deps))
		for _, dep := range deps {
			rels = append(rels, relPath(cfg, dep))
		}
		report.Imports[relPath(cfg, path)] = rels
	}

	switch graphFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text":
		printGraphText(cmd.OutOrStdout(), report)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", graphFormat)
	}
}

func buildGraph(ctx context.Context, cfg *config.Config) (*graph.ModuleGraph, error) {
	res := resolver.NewFileResolver(cfg.Resolve.Root, cfg.Resolve.Extensions)
	builder := graph.NewBuilder(res, newLogger())
	return builder.Build(ctx, cfg.Entry)
}

func printGraphText(w io.Writer, report graphReport) {
	fmt.Fprintf(w, "Entry: %s\n\n", report.Entry)
	fmt.Fprintln(w, "Linear order (dependencies first):")
	for i, path := range report.Order {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, path)
		for _, dep := range report.Imports[path] {
			fmt.Fprintf(w, "      imports %s\n", dep)
		}
	}

	if len(report.Cycles) > 0 {
		fmt.Fprintln(w, "\nImport cycles:")
		for _, cycle := range report.Cycles {
			fmt.Fprintf(w, "  %v\n", cycle)
		}
	}
}

// relPath shortens an absolute module identity for display
func relPath(cfg *config.Config, path string) string {
	root, err := filepath.Abs(cfg.Resolve.Root)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !filepath.IsAbs(rel) && rel != ".." && !filepath.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(rel)
	}
	return path
}

func relCycles(cfg *config.Config, cycles [][]string) [][]string {
	out := make([][]string, 0, len(cycles))
	for _, cycle := range cycles {
		rels := make([]string, 0, len(cycle))
		for _, path := range cycle {
			rels = append(rels, relPath(cfg, path))
		}
		out = append(out, rels)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
