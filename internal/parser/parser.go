// Package parser extracts import and export declarations from module source
// text. The grammar is deliberately small: ES-style default/named/bare
// imports and exports, plus the CommonJS require/module.exports forms. A
// line that starts a declaration but does not match the grammar is a syntax
// error naming the module and the offending fragment.
package parser

import (
	"regexp"
	"strings"

	"github.com/cpascale43/minipack/internal/errors"
	"github.com/cpascale43/minipack/internal/types"
)

// Declaration patterns, shared with the linker's rewriting pass.
var (
	// import game from './game';
	ImportDefaultRe = regexp.MustCompile(`^\s*import\s+([A-Za-z_$][A-Za-z0-9_$]*)\s+from\s+['"]([^'"]+)['"]\s*;?\s*$`)
	// import { click, reset } from './game';
	ImportNamedRe = regexp.MustCompile(`^\s*import\s*\{([^}]*)\}\s*from\s+['"]([^'"]+)['"]\s*;?\s*$`)
	// import './setup';
	ImportBareRe = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]\s*;?\s*$`)
	// const game = require('./game');
	RequireRe = regexp.MustCompile(`^\s*(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*require\(\s*['"]([^'"]+)['"]\s*\)\s*;?\s*$`)
	// export default counter;
	ExportDefaultRe = regexp.MustCompile(`^\s*export\s+default\s+\S`)
	// export function click() { / export const count = 0;
	ExportDeclRe = regexp.MustCompile(`^\s*export\s+(?:function|class|const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	// module.exports = counter;
	ModuleExportsRe = regexp.MustCompile(`^\s*module\.exports\s*=\s*\S`)
	// exports.click = click;
	ExportsNamedRe = regexp.MustCompile(`^\s*exports\.([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*\S`)
)

var (
	importKeywordRe = regexp.MustCompile(`^\s*import\b`)
	exportKeywordRe = regexp.MustCompile(`^\s*export\b`)
	commentRe       = regexp.MustCompile(`^\s*//`)
)

// DefaultExport is the reserved export name for default and module.exports
// bindings.
const DefaultExport = "default"

// Parse scans source line by line and returns the module's import records
// and exported binding names, both in source order.
func Parse(path, source string) ([]types.ImportRecord, []string, error) {
	var imports []types.ImportRecord
	var exports []string

	for i, line := range strings.Split(source, "\n") {
		lineNo := i + 1

		if commentRe.MatchString(line) {
			continue
		}

		switch {
		case ImportDefaultRe.MatchString(line):
			m := ImportDefaultRe.FindStringSubmatch(line)
			imports = append(imports, types.ImportRecord{
				Specifier: m[2],
				Binding:   m[1],
				Line:      lineNo,
			})

		case ImportNamedRe.MatchString(line):
			m := ImportNamedRe.FindStringSubmatch(line)
			names, ok := splitNames(m[1])
			if !ok {
				return nil, nil, errors.NewSyntaxError(path, strings.TrimSpace(line)).WithLine(lineNo)
			}
			imports = append(imports, types.ImportRecord{
				Specifier: m[2],
				Names:     names,
				Line:      lineNo,
			})

		case ImportBareRe.MatchString(line):
			m := ImportBareRe.FindStringSubmatch(line)
			imports = append(imports, types.ImportRecord{
				Specifier: m[1],
				Line:      lineNo,
			})

		case RequireRe.MatchString(line):
			m := RequireRe.FindStringSubmatch(line)
			imports = append(imports, types.ImportRecord{
				Specifier: m[2],
				Binding:   m[1],
				Line:      lineNo,
			})

		case ExportDefaultRe.MatchString(line):
			exports = append(exports, DefaultExport)

		case ExportDeclRe.MatchString(line):
			m := ExportDeclRe.FindStringSubmatch(line)
			exports = append(exports, m[1])

		case ModuleExportsRe.MatchString(line):
			exports = append(exports, DefaultExport)

		case ExportsNamedRe.MatchString(line):
			m := ExportsNamedRe.FindStringSubmatch(line)
			exports = append(exports, m[1])

		case importKeywordRe.MatchString(line) || exportKeywordRe.MatchString(line):
			// The line opens a declaration but matches none of the
			// accepted forms.
			return nil, nil, errors.NewSyntaxError(path, strings.TrimSpace(line)).WithLine(lineNo)
		}
	}

	return imports, exports, nil
}

// splitNames parses the binding list of a named import. Returns false when
// the list is empty or contains an invalid identifier.
func splitNames(list string) ([]string, bool) {
	parts := strings.Split(list, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if !identRe.MatchString(name) {
			return nil, false
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, false
	}
	return names, true
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
