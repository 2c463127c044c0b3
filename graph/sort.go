package graph

import (
	"errors"
	"fmt"
	"iter"
	"sort"
)

// ErrCyclic is returned by Sort when the graph contains a cycle and no
// topological order exists.
var ErrCyclic = errors.New("graph contains cycles, cannot topologically sort")

// Sort returns a topological order of the graph using Kahn's algorithm.
// Ties among simultaneously-ready nodes break lexically by id, which
// makes the output deterministic. Returns ErrCyclic if any node remains
// unsorted once the ready queue drains.
func Sort[T any](g *Graph[T]) ([]string, error) {
	return SortFunc(g, func(a, b string) bool { return a < b })
}

// SortFunc is Sort with a caller-supplied ordering for simultaneously-
// ready nodes: whenever more than one node has no remaining unsorted
// dependencies, the one for which less ranks first is emitted first.
func SortFunc[T any](g *Graph[T], less func(a, b string) bool) ([]string, error) {
	inDegree := make(map[string]int, g.NodeCount())
	for id, node := range g.nodes {
		inDegree[id] = len(node.deps)
	}

	var ready []string
	for _, id := range g.IDs() {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, g.NodeCount())
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)

		for _, dependent := range g.Dependents(current) {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != g.NodeCount() {
		return nil, fmt.Errorf("%w (%d of %d nodes sorted)", ErrCyclic, len(order), g.NodeCount())
	}
	return order, nil
}

// SortDFS returns a topological order computed with a depth-first
// post-order walk: a node is emitted only after all of its dependencies.
// It performs no cycle detection; on cyclic input the result is not a
// valid ordering. Callers must pre-check with HasCycles when the input
// may be cyclic.
func SortDFS[T any](g *Graph[T]) []string {
	visited := make(map[string]bool, g.NodeCount())
	order := make([]string, 0, g.NodeCount())

	var visit func(id string)
	visit = func(id string) {
		visited[id] = true
		for _, dep := range g.Dependencies(id) {
			if !visited[dep] {
				visit(dep)
			}
		}
		order = append(order, id)
	}

	for _, id := range g.IDs() {
		if !visited[id] {
			visit(id)
		}
	}
	return order
}

// ReverseSort returns the Kahn ordering reversed, i.e. dependents first.
func ReverseSort[T any](g *Graph[T]) ([]string, error) {
	order, err := Sort(g)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// Levels groups nodes into execution levels: level 0 holds every node
// with no dependencies, level N every node whose dependencies all sit in
// earlier levels. Each level is sorted by id. If a cycle prevents
// progress the levels computed so far are returned; no error is raised.
func Levels[T any](g *Graph[T]) [][]string {
	inDegree := make(map[string]int, g.NodeCount())
	for id, node := range g.nodes {
		inDegree[id] = len(node.deps)
	}
	remaining := g.NodeCount()

	var levels [][]string
	for remaining > 0 {
		var level []string
		for _, id := range g.IDs() {
			if degree, ok := inDegree[id]; ok && degree == 0 {
				level = append(level, id)
			}
		}
		if len(level) == 0 {
			// Cycle: no node is ready but unvisited nodes remain.
			break
		}
		for _, id := range level {
			delete(inDegree, id)
			remaining--
			for _, dependent := range g.Dependents(id) {
				if _, ok := inDegree[dependent]; ok {
					inDegree[dependent]--
				}
			}
		}
		levels = append(levels, level)
	}
	return levels
}

// IsValidOrder reports whether the proposed ordering is a valid
// topological order of the graph: every node's dependencies must appear
// in the ordering, and earlier than the node itself. Nodes absent from
// the graph are ignored.
func IsValidOrder[T any](g *Graph[T], order []string) bool {
	positions := make(map[string]int, len(order))
	for i, id := range order {
		positions[id] = i
	}
	for _, id := range order {
		node, ok := g.nodes[id]
		if !ok {
			continue
		}
		for dep := range node.deps {
			depPos, ok := positions[dep]
			if !ok || depPos >= positions[id] {
				return false
			}
		}
	}
	return true
}

// Orderings returns a lazy sequence over every valid topological
// ordering of the graph, produced by backtracking over the nodes whose
// dependencies are already placed. The cost is exponential in the worst
// case; this is a debugging and test aid, not a scheduling primitive.
// Callers bound the cost by terminating iteration early.
func Orderings[T any](g *Graph[T]) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		placed := make(map[string]bool, g.NodeCount())
		current := make([]string, 0, g.NodeCount())

		var expand func() bool
		expand = func() bool {
			if len(current) == g.NodeCount() {
				ordering := make([]string, len(current))
				copy(ordering, current)
				return yield(ordering)
			}
			for _, id := range g.IDs() {
				if placed[id] {
					continue
				}
				ok := true
				for dep := range g.nodes[id].deps {
					if !placed[dep] {
						ok = false
						break
					}
				}
				if !ok {
					continue
				}
				placed[id] = true
				current = append(current, id)
				proceed := expand()
				current = current[:len(current)-1]
				placed[id] = false
				if !proceed {
					return false
				}
			}
			return true
		}
		expand()
	}
}

// AllOrderings collects up to max orderings from Orderings. A max of
// zero or less collects everything, which is only safe on small graphs.
func AllOrderings[T any](g *Graph[T], max int) [][]string {
	var orderings [][]string
	for ordering := range Orderings(g) {
		orderings = append(orderings, ordering)
		if max > 0 && len(orderings) >= max {
			break
		}
	}
	return orderings
}
