package taskgraph

// IsDAG reports whether the graph contains no directed cycle.
// Hard and soft edges both count toward cycle detection.
func (g *Graph) IsDAG() bool {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(g.nodes))

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range g.succs[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for _, id := range g.order {
		if state[id] == unvisited {
			if dfs(id) {
				return false
			}
		}
	}
	return true
}

// TopologicalOrder returns a linear extension of the dependency relation:
// for every edge u → v, u appears before v. Independent nodes are broken by
// insertion order (Kahn's algorithm with an insertion-ordered queue), so the
// result is deterministic for a fixed graph.
// Fails with ErrCycleDetected if the graph is not a DAG.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, id := range g.order {
		inDegree[id] = len(g.preds[id])
	}

	queue := make([]string, 0, len(g.order))
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, next := range g.succs[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Any node left with a positive in-degree sits on a cycle.
	if len(order) != len(g.nodes) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// CriticalPath returns the topological traversal backing critical-path
// queries. Fails with ErrCycleDetected if the graph is not a DAG.
func (g *Graph) CriticalPath() ([]string, error) {
	return g.TopologicalOrder()
}
