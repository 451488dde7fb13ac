package graph

import (
	"github.com/cpascale43/minipack/internal/errors"
)

// The linearizer runs Tarjan's strongly connected components algorithm over
// the graph, following import edges in declaration order from the entry.
// Tarjan completes a component only after every component reachable from it
// is complete, so appending components as they pop places dependencies
// before importers on all acyclic edges. Members of a cyclic component are
// emitted in first-discovery order; that tie-break is a deliberate policy
// choice (real bundlers tolerate circular imports the same way) and the
// strict variant below turns it into a hard failure instead.

// Linearize produces the Linear Order under the tolerant cycle policy:
// every module appears exactly once, dependencies precede importers on all
// acyclic edges, and members of a cycle keep their first-discovery order.
// The result is deterministic for a given graph.
func (g *ModuleGraph) Linearize() []string {
	var order []string
	for _, group := range g.components() {
		order = append(order, group...)
	}
	return order
}

// LinearizeStrict produces the Linear Order under the fail-fast cycle
// policy: any circular import aborts with a Cycle error naming the
// participating module identities.
func (g *ModuleGraph) LinearizeStrict() ([]string, error) {
	order := make([]string, 0, g.Count())
	for _, group := range g.components() {
		if len(group) > 1 || g.hasSelfEdge(group[0]) {
			return nil, errors.NewCycleError(group)
		}
		order = append(order, group[0])
	}
	return order, nil
}

// DetectCycles returns every cyclic module group, members in
// first-discovery order.
func (g *ModuleGraph) DetectCycles() [][]string {
	var cycles [][]string
	for _, group := range g.components() {
		if len(group) > 1 || g.hasSelfEdge(group[0]) {
			cycles = append(cycles, group)
		}
	}
	return cycles
}

type sccState struct {
	g       *ModuleGraph
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	next    int
	groups  [][]string
}

// components returns the strongly connected components reachable from the
// entry, in dependency-first order, each component's members sorted by
// discovery index.
func (g *ModuleGraph) components() [][]string {
	s := &sccState{
		g:       g,
		index:   make(map[string]int, g.Count()),
		lowlink: make(map[string]int, g.Count()),
		onStack: make(map[string]bool, g.Count()),
	}

	if g.Has(g.entry) {
		s.strongConnect(g.entry)
	}

	return s.groups
}

func (s *sccState) strongConnect(v string) {
	s.index[v] = s.next
	s.lowlink[v] = s.next
	s.next++
	s.stack = append(s.stack, v)
	s.onStack[v] = true

	for _, w := range s.g.Dependencies(v) {
		if _, seen := s.index[w]; !seen {
			s.strongConnect(w)
			if s.lowlink[w] < s.lowlink[v] {
				s.lowlink[v] = s.lowlink[w]
			}
		} else if s.onStack[w] {
			if s.index[w] < s.lowlink[v] {
				s.lowlink[v] = s.index[w]
			}
		}
	}

	if s.lowlink[v] == s.index[v] {
		var group []string
		for {
			w := s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
			s.onStack[w] = false
			group = append(group, w)
			if w == v {
				break
			}
		}
		s.g.sortByDiscovery(group)
		s.groups = append(s.groups, group)
	}
}
