package graph

// Cycle is a closed walk through the graph's dependency edges. The first
// and last entries name the same node, so a two-node cycle is recorded
// as ["a", "b", "a"].
type Cycle []string

// DetectCycles runs a depth-first search from every unvisited node,
// walking dependency edges (from a task toward its prerequisites), and
// returns every cycle encountered. Cycles may overlap; no deduplication
// is performed. An empty or acyclic graph yields a nil result.
func DetectCycles[T any](g *Graph[T]) []Cycle {
	var cycles []Cycle
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var visit func(id string)
	visit = func(id string) {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, dep := range g.Dependencies(id) {
			if !visited[dep] {
				visit(dep)
			} else if onStack[dep] {
				// Record the sub-path from the first occurrence of dep
				// through the current node, closed with the repeat.
				start := 0
				for i, node := range path {
					if node == dep {
						start = i
						break
					}
				}
				cycle := make(Cycle, 0, len(path)-start+1)
				cycle = append(cycle, path[start:]...)
				cycle = append(cycle, dep)
				cycles = append(cycles, cycle)
			}
		}

		path = path[:len(path)-1]
		onStack[id] = false
	}

	for _, id := range g.IDs() {
		if !visited[id] {
			visit(id)
		}
	}
	return cycles
}

// HasCycles reports whether the graph contains at least one cycle.
func HasCycles[T any](g *Graph[T]) bool {
	return len(DetectCycles(g)) > 0
}

// StronglyConnectedComponents runs Tarjan's algorithm over the
// dependency adjacency and returns the components with more than one
// member. Singleton components (non-cyclic nodes) are excluded.
func StronglyConnectedComponents[T any](g *Graph[T]) [][]string {
	var components [][]string

	index := 0
	indices := make(map[string]int)
	lowLinks := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string

	var connect func(id string)
	connect = func(id string) {
		indices[id] = index
		lowLinks[id] = index
		index++
		stack = append(stack, id)
		onStack[id] = true

		for _, dep := range g.Dependencies(id) {
			if _, seen := indices[dep]; !seen {
				connect(dep)
				if lowLinks[dep] < lowLinks[id] {
					lowLinks[id] = lowLinks[dep]
				}
			} else if onStack[dep] {
				if indices[dep] < lowLinks[id] {
					lowLinks[id] = indices[dep]
				}
			}
		}

		if lowLinks[id] == indices[id] {
			var component []string
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				component = append(component, top)
				if top == id {
					break
				}
			}
			if len(component) > 1 {
				components = append(components, component)
			}
		}
	}

	for _, id := range g.IDs() {
		if _, seen := indices[id]; !seen {
			connect(id)
		}
	}
	return components
}

// ShortestCycle performs a breadth-first search from start, following
// dependency edges, and returns the shortest path that leads back to
// start. The second return value is false when no such cycle exists or
// the start node is absent.
func ShortestCycle[T any](g *Graph[T], start string) ([]string, bool) {
	if !g.HasNode(start) {
		return nil, false
	}

	type entry struct {
		id   string
		path []string
	}
	queue := []entry{{id: start, path: []string{start}}}
	shortest := map[string]int{start: 1}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dep := range g.Dependencies(current.id) {
			if dep == start {
				cycle := make([]string, len(current.path), len(current.path)+1)
				copy(cycle, current.path)
				return append(cycle, start), true
			}
			next := len(current.path) + 1
			if seen, ok := shortest[dep]; ok && seen <= next {
				continue
			}
			shortest[dep] = next
			path := make([]string, len(current.path), next)
			copy(path, current.path)
			queue = append(queue, entry{id: dep, path: append(path, dep)})
		}
	}
	return nil, false
}

// CycleStats summarizes a list of detected cycles. Lengths are measured
// in edges, i.e. one less than the number of entries in the closed walk.
type CycleStats struct {
	Count         int     `json:"count"`
	MinLength     int     `json:"min_length"`
	MaxLength     int     `json:"max_length"`
	AverageLength float64 `json:"average_length"`
	NodesInvolved int     `json:"nodes_involved"`
}

// Statistics computes summary statistics for a cycle list. An empty or
// nil list yields zeroed statistics.
func Statistics(cycles []Cycle) CycleStats {
	if len(cycles) == 0 {
		return CycleStats{}
	}

	stats := CycleStats{Count: len(cycles)}
	nodes := make(map[string]struct{})
	total := 0
	for i, cycle := range cycles {
		length := len(cycle) - 1
		total += length
		if i == 0 || length < stats.MinLength {
			stats.MinLength = length
		}
		if length > stats.MaxLength {
			stats.MaxLength = length
		}
		for _, id := range cycle {
			nodes[id] = struct{}{}
		}
	}
	stats.AverageLength = float64(total) / float64(len(cycles))
	stats.NodesInvolved = len(nodes)
	return stats
}
