// Package resolver turns dependency specifiers into concrete module
// identities (absolute file paths). The graph builder depends only on the
// Resolver capability, so tests can substitute an in-memory resolver.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps a dependency specifier plus the importing module's directory
// to a concrete module identity.
type Resolver interface {
	Resolve(specifier, fromDir string) (string, error)
}

// FileResolver resolves specifiers against the local filesystem.
//
// Relative specifiers ("./game", "../lib/util") resolve against the
// importing module's directory. Bare specifiers ("game") resolve against
// Root. When a specifier has no extension, Extensions are probed in order,
// then <specifier>/index<ext>.
type FileResolver struct {
	Root       string
	Extensions []string
}

// NewFileResolver creates a resolver rooted at root.
func NewFileResolver(root string, extensions []string) *FileResolver {
	if len(extensions) == 0 {
		extensions = []string{".js"}
	}
	return &FileResolver{Root: root, Extensions: extensions}
}

// Resolve implements Resolver.
func (r *FileResolver) Resolve(specifier, fromDir string) (string, error) {
	if specifier == "" {
		return "", fmt.Errorf("empty specifier")
	}

	var base string
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		base = filepath.Join(fromDir, specifier)
	} else if filepath.IsAbs(specifier) {
		base = specifier
	} else {
		base = filepath.Join(r.Root, specifier)
	}

	for _, candidate := range r.candidates(base) {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", err
		}
		return abs, nil
	}

	return "", fmt.Errorf("no file for specifier %q (looked under %s)", specifier, base)
}

// candidates returns probe paths in priority order: the path as written,
// then with each extension appended, then as a directory with index files.
func (r *FileResolver) candidates(base string) []string {
	paths := make([]string, 0, 2*len(r.Extensions)+1)
	paths = append(paths, base)

	if filepath.Ext(base) == "" {
		for _, ext := range r.Extensions {
			paths = append(paths, base+ext)
		}
	}

	for _, ext := range r.Extensions {
		paths = append(paths, filepath.Join(base, "index"+ext))
	}

	return paths
}
