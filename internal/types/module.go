// Package types provides common type definitions shared by the graph
// builder, linker, and build pipeline. Keeping them here avoids circular
// dependencies between packages.
package types

import "time"

// ModuleInfo describes one discovered source module. A module is identified
// by its resolved absolute file path and is immutable once parsed; the
// module graph owns all ModuleInfo values.
type ModuleInfo struct {
	// Path is the resolved absolute file path, the module's identity
	Path string
	// Source is the raw source text as read from disk
	Source string
	// Imports lists import declarations in source order
	Imports []ImportRecord
	// Exports lists exported binding names in source order; the default
	// export is recorded as "default"
	Exports []string
	// Index is the first-discovery ordinal assigned during traversal
	Index int
	// LastMod tracks the source file's modification time
	LastMod time.Time
}

// ImportRecord describes a single import declaration.
type ImportRecord struct {
	// Specifier is the dependency specifier as written (e.g. "./game")
	Specifier string
	// Binding is the local name bound to the imported default export;
	// empty for side-effect imports ("import './setup'")
	Binding string
	// Names lists named bindings for "import { a, b } from ..." forms
	Names []string
	// Resolved is the absolute path the specifier resolved to, filled in
	// by the graph builder
	Resolved string
	// Line is the 1-based source line of the declaration
	Line int
}
