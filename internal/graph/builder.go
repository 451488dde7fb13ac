package graph

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpascale43/minipack/internal/errors"
	"github.com/cpascale43/minipack/internal/logging"
	"github.com/cpascale43/minipack/internal/parser"
	"github.com/cpascale43/minipack/internal/resolver"
	"github.com/cpascale43/minipack/internal/types"
)

// Builder constructs a ModuleGraph reachable from an entry point using
// depth-first traversal. Already-visited modules are linked by edge only,
// which bounds work on diamonds and terminates on cycles.
type Builder struct {
	resolver resolver.Resolver
	logger   logging.Logger
	readFile func(string) ([]byte, error)
}

// NewBuilder creates a graph builder with the given resolver capability.
func NewBuilder(res resolver.Resolver, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Builder{
		resolver: res,
		logger:   logger.WithComponent("graph"),
		readFile: os.ReadFile,
	}
}

// Build discovers all modules reachable from entry and returns the graph.
// It performs no writes; on any resolution or syntax error the partial
// graph is discarded.
func (b *Builder) Build(ctx context.Context, entry string) (*ModuleGraph, error) {
	entryPath, err := b.resolveEntry(entry)
	if err != nil {
		return nil, errors.NewEntryError(entry, err)
	}

	g := NewModuleGraph(entryPath)
	if err := b.visit(ctx, g, entryPath); err != nil {
		return nil, err
	}

	b.logger.Debug(ctx, "graph built", "entry", entryPath, "modules", g.Count())
	return g, nil
}

// resolveEntry resolves the configured entry path, which is relative to the
// working directory rather than to any importing module.
func (b *Builder) resolveEntry(entry string) (string, error) {
	spec := entry
	if !filepath.IsAbs(spec) && !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		spec = "./" + spec
	}
	return b.resolver.Resolve(spec, ".")
}

// visit parses one newly discovered module, resolves its imports in
// declaration order, and recurses into unseen targets.
func (b *Builder) visit(ctx context.Context, g *ModuleGraph, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source, err := b.readFile(path)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeReadFailed, "reading module "+path, err)
	}

	imports, exports, err := parser.Parse(path, string(source))
	if err != nil {
		return err
	}

	module := &types.ModuleInfo{
		Path:    path,
		Source:  string(source),
		Imports: imports,
		Exports: exports,
		Index:   g.Count(),
	}
	if info, err := os.Stat(path); err == nil {
		module.LastMod = info.ModTime()
	}
	g.Add(module)

	for i := range module.Imports {
		record := &module.Imports[i]

		resolved, err := b.resolver.Resolve(record.Specifier, filepath.Dir(path))
		if err != nil {
			return errors.NewResolutionError(path, record.Specifier, err).WithLine(record.Line)
		}
		record.Resolved = resolved
		g.AddEdge(path, resolved)

		if !g.Has(resolved) {
			if err := b.visit(ctx, g, resolved); err != nil {
				return err
			}
		}
	}

	return nil
}
