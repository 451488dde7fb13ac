// Package graph builds and orders the module dependency graph. The graph is
// build-local: a Builder produces one from an entry point, the linearizer
// orders it, and it is discarded after the bundle is emitted.
package graph

import (
	"sort"
	"sync"

	"github.com/cpascale43/minipack/internal/types"
)

// ModuleGraph maps module identities to modules plus the directed import
// edges between them (importer -> imported). Every edge target is a key in
// the module map; the builder fails with a resolution error before a
// dangling edge can be added.
type ModuleGraph struct {
	mutex   sync.RWMutex
	modules map[string]*types.ModuleInfo
	edges   map[string][]string
	order   []string // first-discovery order
	entry   string
}

// NewModuleGraph creates an empty graph seeded with the entry identity.
func NewModuleGraph(entry string) *ModuleGraph {
	return &ModuleGraph{
		modules: make(map[string]*types.ModuleInfo),
		edges:   make(map[string][]string),
		entry:   entry,
	}
}

// Entry returns the entry module identity.
func (g *ModuleGraph) Entry() string {
	return g.entry
}

// Add registers a newly discovered module. The module's Index must match
// its discovery position.
func (g *ModuleGraph) Add(module *types.ModuleInfo) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, exists := g.modules[module.Path]; exists {
		return
	}

	g.modules[module.Path] = module
	g.order = append(g.order, module.Path)
}

// AddEdge records an import edge in declaration order.
func (g *ModuleGraph) AddEdge(importer, imported string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.edges[importer] = append(g.edges[importer], imported)
}

// Get retrieves a module by identity.
func (g *ModuleGraph) Get(path string) (*types.ModuleInfo, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	module, exists := g.modules[path]
	return module, exists
}

// Has reports whether a module has been discovered.
func (g *ModuleGraph) Has(path string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, exists := g.modules[path]
	return exists
}

// Dependencies returns the import edges of a module in declaration order.
func (g *ModuleGraph) Dependencies(path string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	deps := make([]string, len(g.edges[path]))
	copy(deps, g.edges[path])
	return deps
}

// DiscoveryOrder returns module identities in first-discovery order.
func (g *ModuleGraph) DiscoveryOrder() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	order := make([]string, len(g.order))
	copy(order, g.order)
	return order
}

// Modules returns all modules in first-discovery order.
func (g *ModuleGraph) Modules() []*types.ModuleInfo {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	modules := make([]*types.ModuleInfo, 0, len(g.order))
	for _, path := range g.order {
		modules = append(modules, g.modules[path])
	}
	return modules
}

// Count returns the number of discovered modules.
func (g *ModuleGraph) Count() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return len(g.modules)
}

// sortByDiscovery orders paths by their discovery index, in place.
func (g *ModuleGraph) sortByDiscovery(paths []string) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	sort.Slice(paths, func(i, j int) bool {
		return g.modules[paths[i]].Index < g.modules[paths[j]].Index
	})
}

// hasSelfEdge reports whether a module imports itself.
func (g *ModuleGraph) hasSelfEdge(path string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	for _, dep := range g.edges[path] {
		if dep == path {
			return true
		}
	}
	return false
}
