// Package linker turns a linearized module graph into a single executable
// script. Each module body becomes a factory in a shared registry keyed by
// module id; import declarations are rewritten to registry lookups and
// export declarations to registrations, so modules link only through the
// registry and never through ambient globals.
package linker

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cpascale43/minipack/internal/errors"
	"github.com/cpascale43/minipack/internal/graph"
	"github.com/cpascale43/minipack/internal/logging"
	"github.com/cpascale43/minipack/internal/parser"
	"github.com/cpascale43/minipack/internal/types"
)

// Bundle is the emitted artifact plus its build metadata.
type Bundle struct {
	// Output is the complete script text
	Output []byte
	// Size is len(Output) in bytes
	Size int64
	// Duration is the time spent transforming and concatenating
	Duration time.Duration
	// Modules lists module identities in emission (linear) order
	Modules []string
	// IDs maps each source identity to its id inside the bundle
	IDs map[string]string
}

// Emitter produces Bundles. BaseDir anchors the stable module ids embedded
// in the output: ids are slash-separated paths relative to BaseDir, so two
// builds of the same tree emit identical bytes.
type Emitter struct {
	baseDir string
	logger  logging.Logger
}

// NewEmitter creates an emitter anchored at baseDir.
func NewEmitter(baseDir string, logger logging.Logger) *Emitter {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Emitter{
		baseDir: baseDir,
		logger:  logger.WithComponent("linker"),
	}
}

// Emit transforms every module in linear order and concatenates them into
// one script. The entry module is required last, after all factories are
// registered.
func (e *Emitter) Emit(ctx context.Context, g *graph.ModuleGraph, order []string) (*Bundle, error) {
	start := time.Now()

	ids := make(map[string]string, len(order))
	for _, path := range order {
		ids[path] = e.moduleID(path)
	}

	var out strings.Builder
	out.WriteString("(function () {\n")
	out.WriteString(runtime)
	out.WriteString("\n")

	for _, path := range order {
		module, ok := g.Get(path)
		if !ok {
			return nil, errors.NewInternalError("linear order names unknown module "+path, nil)
		}

		body := e.transform(module, ids)

		fmt.Fprintf(&out, "__register__(%q, function (module, exports, require) {\n", ids[path])
		out.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			out.WriteString("\n")
		}
		out.WriteString("});\n\n")
	}

	fmt.Fprintf(&out, "__require__(%q);\n", ids[g.Entry()])
	out.WriteString("})();\n")

	bundle := &Bundle{
		Output:   []byte(out.String()),
		Size:     int64(out.Len()),
		Duration: time.Since(start),
		Modules:  append([]string(nil), order...),
		IDs:      ids,
	}

	e.logger.Debug(ctx, "bundle emitted",
		"modules", len(order),
		"size_bytes", bundle.Size,
		"duration", bundle.Duration.String(),
	)

	return bundle, nil
}

// moduleID derives the stable in-bundle id for a module identity.
func (e *Emitter) moduleID(path string) string {
	if e.baseDir != "" {
		if rel, err := filepath.Rel(e.baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

// Rewrite patterns with capture groups for the transformed output.
var (
	exportDefaultRewriteRe = regexp.MustCompile(`^(\s*)export\s+default\s+(.*)$`)
	exportDeclRewriteRe    = regexp.MustCompile(`^(\s*)export\s+((?:function|class|const|let|var)\s+.*)$`)
)

// transform rewrites one module body into factory form: imports become
// require calls against the registry, export declarations become plain
// declarations registered on the module's exports object.
func (e *Emitter) transform(module *types.ModuleInfo, ids map[string]string) string {
	importByLine := make(map[int]*types.ImportRecord, len(module.Imports))
	for i := range module.Imports {
		importByLine[module.Imports[i].Line] = &module.Imports[i]
	}

	lines := strings.Split(module.Source, "\n")
	rewritten := make([]string, 0, len(lines)+len(module.Exports)+1)

	esModule := false
	var declExports []string

	for i, line := range lines {
		if record, ok := importByLine[i+1]; ok {
			rewritten = append(rewritten, rewriteImport(record, ids))
			continue
		}

		switch {
		case exportDefaultRewriteRe.MatchString(line):
			esModule = true
			rewritten = append(rewritten, exportDefaultRewriteRe.ReplaceAllString(line, `${1}exports['default'] = ${2}`))

		case parser.ExportDeclRe.MatchString(line):
			esModule = true
			name := parser.ExportDeclRe.FindStringSubmatch(line)[1]
			declExports = append(declExports, name)
			rewritten = append(rewritten, exportDeclRewriteRe.ReplaceAllString(line, `${1}${2}`))

		default:
			rewritten = append(rewritten, line)
		}
	}

	// Registrations for declaration exports go at the end of the factory
	// body, after the declarations they reference exist.
	for _, name := range declExports {
		rewritten = append(rewritten, fmt.Sprintf("exports.%s = %s;", name, name))
	}

	body := strings.Join(rewritten, "\n")
	if esModule {
		body = "exports.__esModule = true;\n" + body
	}
	return body
}

// rewriteImport renders the registry lookup replacing one import
// declaration. The rewritten statement sits on the declaration's original
// line.
func rewriteImport(record *types.ImportRecord, ids map[string]string) string {
	id := ids[record.Resolved]

	switch {
	case len(record.Names) > 0:
		parts := make([]string, len(record.Names))
		for i, name := range record.Names {
			parts[i] = fmt.Sprintf("var %s = __require__(%q).%s;", name, id, name)
		}
		return strings.Join(parts, " ")

	case record.Binding != "":
		return fmt.Sprintf("var %s = __interop__(__require__(%q));", record.Binding, id)

	default:
		return fmt.Sprintf("__require__(%q);", id)
	}
}
