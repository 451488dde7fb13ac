package graph

import (
	"path/filepath"
	"testing"

	"github.com/cpascale43/minipack/internal/errors"
	"github.com/cpascale43/minipack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeGraph assembles a graph directly from an adjacency list. Discovery
// order follows the order of the nodes slice.
func makeGraph(nodes []string, edges map[string][]string) *ModuleGraph {
	g := NewModuleGraph(nodes[0])
	for i, path := range nodes {
		g.Add(&types.ModuleInfo{Path: path, Index: i})
	}
	for importer, deps := range edges {
		for _, dep := range deps {
			g.AddEdge(importer, dep)
		}
	}
	return g
}

func TestLinearizeEntryAfterDependency(t *testing.T) {
	// entry main imports game; game must be emitted first
	g := makeGraph([]string{"main", "game"}, map[string][]string{
		"main": {"game"},
	})

	assert.Equal(t, []string{"game", "main"}, g.Linearize())
}

func TestLinearizeChain(t *testing.T) {
	g := makeGraph([]string{"a", "b", "c"}, map[string][]string{
		"a": {"b"},
		"b": {"c"},
	})

	assert.Equal(t, []string{"c", "b", "a"}, g.Linearize())
}

func TestLinearizeDiamondAppearsOnce(t *testing.T) {
	g := makeGraph([]string{"main", "a", "shared", "b"}, map[string][]string{
		"main": {"a", "b"},
		"a":    {"shared"},
		"b":    {"shared"},
	})

	order := g.Linearize()
	require.Len(t, order, 4)

	seen := make(map[string]int)
	for _, path := range order {
		seen[path]++
	}
	assert.Equal(t, 1, seen["shared"], "diamond dependency appears exactly once")

	pos := positions(order)
	assert.Less(t, pos["shared"], pos["a"])
	assert.Less(t, pos["shared"], pos["b"])
	assert.Less(t, pos["a"], pos["main"])
	assert.Less(t, pos["b"], pos["main"])
}

func TestLinearizeCycleFirstDiscoveryOrder(t *testing.T) {
	// a imports b, b imports a; entry a discovered first
	g := makeGraph([]string{"a", "b"}, map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})

	order := g.Linearize()
	assert.Equal(t, []string{"a", "b"}, order,
		"cycle members keep first-discovery order")
}

func TestLinearizeCycleBelowEntry(t *testing.T) {
	// main imports a, a and b form a cycle; cycle group emitted before main
	g := makeGraph([]string{"main", "a", "b"}, map[string][]string{
		"main": {"a"},
		"a":    {"b"},
		"b":    {"a"},
	})

	assert.Equal(t, []string{"a", "b", "main"}, g.Linearize())
}

func TestLinearizeStrictAcyclic(t *testing.T) {
	g := makeGraph([]string{"main", "game"}, map[string][]string{
		"main": {"game"},
	})

	order, err := g.LinearizeStrict()
	require.NoError(t, err)
	assert.Equal(t, []string{"game", "main"}, order)
}

func TestLinearizeStrictRejectsCycle(t *testing.T) {
	g := makeGraph([]string{"a", "b"}, map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})

	_, err := g.LinearizeStrict()
	require.Error(t, err)
	assert.True(t, errors.IsCycleError(err))

	var be *errors.BundleError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, []string{"a", "b"}, be.Members, "cycle error names both participants")
}

func TestLinearizeStrictRejectsSelfImport(t *testing.T) {
	g := makeGraph([]string{"a"}, map[string][]string{
		"a": {"a"},
	})

	_, err := g.LinearizeStrict()
	require.Error(t, err)
	assert.True(t, errors.IsCycleError(err))
}

func TestLinearizeToleratesSelfImport(t *testing.T) {
	g := makeGraph([]string{"a"}, map[string][]string{
		"a": {"a"},
	})

	assert.Equal(t, []string{"a"}, g.Linearize())
}

func TestLinearizeDeterministic(t *testing.T) {
	g := makeGraph([]string{"main", "a", "b", "c"}, map[string][]string{
		"main": {"a", "b"},
		"a":    {"c"},
		"b":    {"c", "a"},
	})

	first := g.Linearize()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, g.Linearize())
	}
}

func TestDetectCycles(t *testing.T) {
	g := makeGraph([]string{"main", "a", "b", "c"}, map[string][]string{
		"main": {"a", "c"},
		"a":    {"b"},
		"b":    {"a"},
	})

	cycles := g.DetectCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "b"}, cycles[0])
}

func TestDetectCyclesNone(t *testing.T) {
	g := makeGraph([]string{"main", "a"}, map[string][]string{
		"main": {"a"},
	})

	assert.Empty(t, g.DetectCycles())
}

func TestLinearizeScenarioEndToEnd(t *testing.T) {
	// Mirrors the click-counter layout: src/index.js imports src/game.js
	root := writeModules(t, map[string]string{
		"index.js": "import { click } from './game';\nclick();\n",
		"game.js":  "export function click() {}\n",
	})

	g, err := buildGraph(t, root, "index.js")
	require.NoError(t, err)

	order := g.Linearize()
	assert.Equal(t, []string{
		filepath.Join(root, "game.js"),
		filepath.Join(root, "index.js"),
	}, order)
}

func positions(order []string) map[string]int {
	pos := make(map[string]int, len(order))
	for i, path := range order {
		pos[path] = i
	}
	return pos
}
